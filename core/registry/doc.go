// Package registry tracks the set of currently connected channels and the most
// recent pointer position of each one.
//
// The Registry is the single source of truth for connection presence. Other
// components read snapshots through ConnectedIDs and Channels and mutate
// pointer state only through RecordPointer and Accept. All mutations are
// serialized by one mutex; disconnect subscribers run after the entry has been
// removed, so a subscriber observing the notification always sees
// IsConnected(id) == false.
//
// Basic usage:
//
//	reg := registry.New(registry.WithLogger(log))
//	reg.Subscribe(func(id domain.ConnectionID) { log.Info("gone", "id", id) })
//
//	if err := reg.Connect(ch); errors.Is(err, domain.ErrDuplicateConnection) {
//		// stale entry was evicted and replaced
//	}
//	prev, had, err := reg.RecordPointer(ch.ID(), domain.Point{X: 10, Y: 20})
//
// Snapshot order follows connection order: the oldest live connection comes first.
package registry
