// Package stash is the composition root for the crash-recovery backup
// subsystem of the Stanza editor.
//
// It connects the domain layer (identity hashing, the store contract, the
// dirty-state tracker and the startup restorer) with the persistence
// adapters (flat files by default, BadgerDB optionally).
//
// Philosophy:
//
// An editor must never lose work the user could still see on screen. Stash
// keeps a durable, content-addressable snapshot of every dirty document,
// written on a debounce so typing stays cheap, and replays those snapshots
// as dirty documents on the next launch after an abnormal exit. Saving or
// deliberately closing a document removes its snapshot; a clean workspace
// shutdown removes them all.
//
// Usage:
//
//	sess, err := stash.Open(workspaceRoot, host,
//		stash.WithLogger(logger),
//	)
//	if err != nil { ... }
//	if err := sess.Start(ctx); err != nil { ... }
//
//	// On startup, after the window is ready:
//	restored, _ := sess.Restore(ctx)
//
//	// As the host opens and closes documents:
//	sess.Track(doc)
//	sess.Untrack(doc)
//
//	// On clean shutdown:
//	_ = sess.CloseClean(ctx)
package stash
