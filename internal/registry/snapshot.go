package registry

import (
	"sort"
	"time"

	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// BuildSnapshot constructs a complete, immutable snapshot from a backend
// device listing.
//
// For each listed device it derives the domain from the ID structure and the
// alias set from the display name. Devices with an empty ID are dropped; on
// duplicate IDs the first listing wins, so snapshot IDs stay unique. Devices
// are sorted by ID to keep downstream resolution deterministic.
//
// Parameters:
//   - listed: raw device listing from the transport
//   - generation: the generation counter for the new snapshot
//   - now: observation timestamp recorded as LastSeen on every record
func BuildSnapshot(listed []transport.Device, generation uint64, now time.Time) *Snapshot {
	records := make([]DeviceRecord, 0, len(listed))
	seen := make(map[string]struct{}, len(listed))

	for _, d := range listed {
		if d.ID == "" {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}

		name := d.Name
		if name == "" {
			name = d.ID
		}

		records = append(records, DeviceRecord{
			ID:          d.ID,
			Domain:      DomainFromID(d.ID),
			DisplayName: name,
			Aliases:     BuildAliases(name),
			LastSeen:    now,
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return &Snapshot{
		Generation: generation,
		Devices:    records,
		BuiltAt:    now,
	}
}
