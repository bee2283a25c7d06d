// Package eventlog persists alarm trigger records.
//
// The FileRepository appends CBOR-encoded records to a file so the trigger
// log survives panel restarts. The panel service seeds the state machine's
// in-memory log from the newest records on startup.
package eventlog
