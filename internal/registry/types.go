package registry

import (
	"strings"
	"time"
)

// Domain represents the device category inferred from a device identifier.
// It determines which backend primitives apply to the device.
type Domain string

// Domain constants. This is a closed set; anything unrecognised maps to
// DomainOther.
const (
	DomainLight       Domain = "light"
	DomainSwitch      Domain = "switch"
	DomainCover       Domain = "cover"
	DomainClimate     Domain = "climate"
	DomainMediaPlayer Domain = "media_player"
	DomainScript      Domain = "script"
	DomainScene       Domain = "scene"
	DomainOther       Domain = "other"
)

// AllDomains returns all valid domain values.
func AllDomains() []Domain {
	return []Domain{
		DomainLight, DomainSwitch, DomainCover, DomainClimate,
		DomainMediaPlayer, DomainScript, DomainScene, DomainOther,
	}
}

// DomainFromID derives a device's domain from the structure of its backend
// identifier: the token before the first "." separator.
//
// Examples:
//   - "light.office_1" → DomainLight
//   - "cover.garage"   → DomainCover
//   - "weird-id"       → DomainOther (no separator)
func DomainFromID(id string) Domain {
	head, _, found := strings.Cut(id, ".")
	if !found || head == "" {
		return DomainOther
	}
	switch Domain(head) {
	case DomainLight, DomainSwitch, DomainCover, DomainClimate,
		DomainMediaPlayer, DomainScript, DomainScene:
		return Domain(head)
	default:
		return DomainOther
	}
}

// DeviceRecord is one backend-controllable device as seen at the time of a
// registry refresh. Records are immutable: a refresh builds brand-new records
// rather than mutating existing ones.
type DeviceRecord struct {
	// ID is the stable backend identifier, unique within a snapshot.
	ID string `json:"id"`

	// Domain is derived from the ID structure (see DomainFromID).
	Domain Domain `json:"domain"`

	// DisplayName is the human-readable name as reported by the backend.
	DisplayName string `json:"display_name"`

	// Aliases are normalised name variants used for fuzzy matching.
	Aliases []string `json:"aliases"`

	// LastSeen is when the most recent refresh observed this record.
	LastSeen time.Time `json:"last_seen"`
}

// HasAlias reports whether the normalised form s is an exact alias of the
// record. s must already be normalised (see Normalize).
func (d *DeviceRecord) HasAlias(s string) bool {
	for _, a := range d.Aliases {
		if a == s {
			return true
		}
	}
	return false
}

// Snapshot is an immutable, point-in-time view of the device registry.
//
// A new snapshot fully replaces the previous one; readers holding a snapshot
// reference always observe one complete, consistent device set. Devices are
// ordered by ID so iteration — and therefore resolution — is deterministic.
type Snapshot struct {
	// Generation increases by one with each successful refresh.
	Generation uint64 `json:"generation"`

	// Devices is sorted ascending by ID. Do not mutate.
	Devices []DeviceRecord `json:"devices"`

	// BuiltAt is when the snapshot was constructed.
	BuiltAt time.Time `json:"built_at"`
}

// Get returns the record with the given ID, or nil if absent.
func (s *Snapshot) Get(id string) *DeviceRecord {
	for i := range s.Devices {
		if s.Devices[i].ID == id {
			return &s.Devices[i]
		}
	}
	return nil
}

// Len returns the number of devices in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Devices)
}
