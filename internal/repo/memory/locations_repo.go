package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/planhub/internal/domain/location"
)

type booking struct {
	locationID string
	start      time.Time
	end        time.Time
}

// LocationsRepo is the in-memory room directory used in dev mode and in
// handler tests, mirroring the availability semantics of the postgres repo.
type LocationsRepo struct {
	mu       sync.RWMutex
	items    map[string]location.Location
	bookings []booking
}

func NewLocationsRepo() *LocationsRepo {
	return &LocationsRepo{
		items: make(map[string]location.Location),
	}
}

func (r *LocationsRepo) Seed(locs ...location.Location) {
	r.mu.Lock()

	for _, loc := range locs {
		r.items[loc.ID] = loc
	}

	r.mu.Unlock()
}

// Book records a persisted reservation so availability reflects it.
func (r *LocationsRepo) Book(locationID string, start, end time.Time) {
	r.mu.Lock()
	r.bookings = append(r.bookings, booking{locationID: locationID, start: start, end: end})
	r.mu.Unlock()
}

func (r *LocationsRepo) GetByID(_ context.Context, id string) (location.Location, error) {
	r.mu.RLock()
	loc, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return location.Location{}, location.ErrNotFound
	}

	return loc, nil
}

func (r *LocationsRepo) GetAvailable(_ context.Context, start, end time.Time, filter location.AvailabilityFilter) ([]location.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	output := make([]location.Location, 0, len(r.items))

	for _, loc := range r.items {
		if filter.Building != nil && loc.Building != *filter.Building {
			continue
		}

		if filter.MinCapacity != nil && loc.Capacity < *filter.MinCapacity {
			continue
		}

		if r.booked(loc.ID, start, end) {
			continue
		}

		output = append(output, loc)
	}

	sort.Slice(output, func(i, j int) bool {
		if output[i].Building != output[j].Building {
			return output[i].Building < output[j].Building
		}
		return output[i].RoomNumber < output[j].RoomNumber
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(output) {
			return []location.Location{}, nil
		}
		output = output[filter.Offset:]
	}

	if filter.Limit > 0 && len(output) > filter.Limit {
		output = output[:filter.Limit]
	}

	return output, nil
}

func (r *LocationsRepo) booked(locationID string, start, end time.Time) bool {
	for _, b := range r.bookings {
		// half-open overlap, same rule the conflict detector applies
		if b.locationID == locationID && b.start.Before(end) && start.Before(b.end) {
			return true
		}
	}

	return false
}
