// Package registry provides the device registry for Voxhaus Core.
//
// The registry is the catalogue of every device the backend exposes,
// rebuilt from scratch on each refresh and published as an immutable
// snapshot. Resolution and dispatch read from the snapshot; they never
// talk to the backend for device identity.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                         Device Registry                          │
//	│                                                                  │
//	│  ┌────────────────┐    ┌────────────────┐    ┌────────────────┐  │
//	│  │     Store      │    │    Snapshot    │    │    Aliases     │  │
//	│  │   (store.go)   │───▶│ (snapshot.go)  │───▶│ (aliases.go)   │  │
//	│  │                │    │                │    │                │  │
//	│  │ • Atomic swap  │    │ • Immutable    │    │ • Normalize    │  │
//	│  │ • Singleflight │    │ • ID-sorted    │    │ • Plural forms │  │
//	│  │ • Interval run │    │ • Domain split │    │ • Tokenise     │  │
//	│  └────────────────┘    └────────────────┘    └────────────────┘  │
//	│          │                                                       │
//	└──────────│───────────────────────────────────────────────────────┘
//	           │
//	           ▼
//	┌──────────────────────┐
//	│  Backend Transport   │
//	│  ListDevices(ctx)    │
//	└──────────────────────┘
//
// # Key Types
//
//   - DeviceRecord: One device with its domain, display name, and aliases
//   - Snapshot: A generation-stamped, immutable view of all devices
//   - Store: Holds the current snapshot and serialises refreshes
//   - Domain: Functional family derived from the device ID (light, cover, etc.)
//
// # Usage
//
//	store := registry.NewStore(backend, cfg.Registry.GetRefreshTimeout())
//	store.SetLogger(log)
//
//	// Populate on startup, then keep fresh in the background.
//	if _, err := store.Refresh(ctx); err != nil {
//	    return err
//	}
//	go store.Run(ctx, cfg.Registry.GetRefreshInterval())
//
//	// Readers grab one snapshot and use it end to end.
//	snap := store.Current()
//	rec, ok := snap.Get("light.office_lamp")
//
// # Concurrency
//
// The current snapshot is a single atomic pointer. A refresh builds the
// replacement off to the side and swaps it in when complete, so readers
// either see the old snapshot or the new one, never a mixture. Concurrent
// refresh requests collapse into one backend listing via singleflight.
package registry
