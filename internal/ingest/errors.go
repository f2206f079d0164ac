package ingest

import "github.com/rotisserie/eris"

// ErrClearFailed indicates the pre-insert deletion of a slot's existing
// documents failed. Fatal for the slot: nothing is written after it, so old
// and new records never mix.
var ErrClearFailed = eris.New("ingest: clear slot failed")

// ErrSlotLocked indicates another process holds the advisory lock for the
// slot. Only possible when a lock directory is configured.
var ErrSlotLocked = eris.New("ingest: slot locked by another process")
