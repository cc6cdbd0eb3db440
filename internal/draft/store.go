package draft

import "context"

// Well-known draft keys. ClearAll removes exactly this set.
const (
	KeyMainEvent         = "mainEvent"
	KeySubEvents         = "subEvents"
	KeyInternalResources = "internalResources"
	KeyExternalResources = "externalResources"
	KeyTasks             = "tasks"
	KeyDirectors         = "directors"
)

func WellKnownKeys() []string {
	return []string{
		KeyMainEvent,
		KeySubEvents,
		KeyInternalResources,
		KeyExternalResources,
		KeyTasks,
		KeyDirectors,
	}
}

// Store holds the partially built event data for one wizard session. Values
// are opaque JSON-serializable records, the store performs no validation.
//
// Get decodes the stored value into out and reports whether it did. A
// missing or corrupt key leaves out untouched and returns false, so callers
// pre-fill out with their fallback and never have to handle a store error
// on the read path. A cleared or half-populated draft is equivalent to no
// draft.
//
// A Store is constructed once per wizard session and injected, never a
// process-wide singleton.
type Store interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
}
