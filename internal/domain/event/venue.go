package event

import (
	"errors"
	"strings"
)

type VenueKind string

const (
	VenueInternal VenueKind = "internal"
	VenueExternal VenueKind = "external"
	VenueOnline   VenueKind = "online"
)

func (k VenueKind) IsValid() bool {
	switch k {
	case VenueInternal, VenueExternal, VenueOnline:
		return true
	default:
		return false
	}
}

var (
	ErrVenueKindUnknown = errors.New("unknown venue kind")
	ErrVenueMixed       = errors.New("venue carries data for more than one kind")
	ErrVenueIncomplete  = errors.New("venue is missing data for its kind")
)

// Venue is a tagged union with exactly one variant populated, matching Kind.
// Build one with NewInternalVenue/NewExternalVenue/NewOnlineVenue so the
// invariant holds from construction; anything decoded from the outside goes
// through Validate before use.
type Venue struct {
	Kind     VenueKind      `json:"kind"`
	Internal *InternalVenue `json:"internal,omitempty"`
	External *ExternalVenue `json:"external,omitempty"`
	Online   *OnlineVenue   `json:"online,omitempty"`
}

type InternalVenue struct {
	LocationID string `json:"locationId"`
	Capacity   int    `json:"capacity,omitempty"`
	Building   string `json:"building,omitempty"`
	RoomNumber string `json:"roomNumber,omitempty"`
}

type ExternalVenue struct {
	// LocationID is filled in once the external location has been created
	// remotely; until then the venue is referenced by name.
	LocationID string `json:"locationId,omitempty"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
}

type OnlineVenue struct {
	MeetingLink string `json:"meetingLink,omitempty"`
}

func NewInternalVenue(locationID string, capacity int, building, roomNumber string) Venue {
	return Venue{
		Kind: VenueInternal,
		Internal: &InternalVenue{
			LocationID: locationID,
			Capacity:   capacity,
			Building:   building,
			RoomNumber: roomNumber,
		},
	}
}

func NewExternalVenue(name, address string) Venue {
	return Venue{
		Kind:     VenueExternal,
		External: &ExternalVenue{Name: name, Address: address},
	}
}

func NewOnlineVenue(meetingLink string) Venue {
	return Venue{
		Kind:   VenueOnline,
		Online: &OnlineVenue{MeetingLink: meetingLink},
	}
}

// IsZero reports whether no venue has been chosen at all.
func (v Venue) IsZero() bool {
	return v.Kind == "" && v.Internal == nil && v.External == nil && v.Online == nil
}

func (v Venue) Validate() error {
	if !v.Kind.IsValid() {
		return ErrVenueKindUnknown
	}

	populated := 0

	if v.Internal != nil {
		populated++
	}
	if v.External != nil {
		populated++
	}
	if v.Online != nil {
		populated++
	}

	if populated > 1 {
		return ErrVenueMixed
	}

	switch v.Kind {
	case VenueInternal:
		if v.Internal == nil || strings.TrimSpace(v.Internal.LocationID) == "" {
			return ErrVenueIncomplete
		}
	case VenueExternal:
		if v.External == nil || strings.TrimSpace(v.External.Name) == "" {
			return ErrVenueIncomplete
		}
	case VenueOnline:
		// the meeting link can arrive later, an empty Online payload is fine
		if v.Internal != nil || v.External != nil {
			return ErrVenueMixed
		}
	}

	return nil
}

// LocationID returns the internal room id when this venue is an internal
// one. Only internal rooms are a contended resource for conflict checks.
func (v Venue) LocationID() (string, bool) {
	if v.Kind != VenueInternal || v.Internal == nil {
		return "", false
	}

	return v.Internal.LocationID, v.Internal.LocationID != ""
}

// Label is a short human readable description used in conflict messages.
func (v Venue) Label() string {
	switch v.Kind {
	case VenueInternal:
		if v.Internal == nil {
			return "internal room"
		}
		if v.Internal.Building != "" && v.Internal.RoomNumber != "" {
			return v.Internal.Building + " " + v.Internal.RoomNumber
		}
		return "room " + v.Internal.LocationID
	case VenueExternal:
		if v.External == nil {
			return "external venue"
		}
		return v.External.Name
	case VenueOnline:
		return "online"
	default:
		return "unassigned"
	}
}
