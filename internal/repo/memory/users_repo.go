package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/planhub/internal/domain/user"
)

// UsersRepo is a process-local staff directory for dev mode.
type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{users: make(map[string]user.User)}
}

func (r *UsersRepo) Seed(users ...user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range users {
		r.users[u.ID] = u
	}
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(_ context.Context, limit, offset int) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	all := make([]user.User, 0, len(r.users))

	for _, u := range r.users {
		all = append(all, u)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}

		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return []user.User{}, nil
	}

	all = all[offset:]

	if len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}
