// Package session keeps Fox and Geese sessions in memory and, optionally, in
// a storage backend.
//
// Manager is safe for concurrent use. Lookups are case-insensitive and IDs
// default to random UUIDs. When a SessionPersistence is configured the
// manager saves on create and on access, and Get falls back to storage for
// sessions that are not in memory.
//
// Two backends are provided:
//
//	fp, _ := session.NewFilePersistence("sessions")     // one JSON file per session
//	rp := session.NewRedisPersistence(client, 24*time.Hour) // session:<id> keys
//
//	manager := session.NewManagerWithPersistence(fp)
//	sess, err := manager.Create(ctx, "", nil)
//
// A persisted record holds the current position, the starting position and
// the undo stack, so a reloaded session can still reset and undo.
package session
