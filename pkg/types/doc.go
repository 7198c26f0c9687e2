// Package types defines the shared entities of the report submission
// pipeline: the Report and its captured Attachments as handed in by the
// caller, and the closed JSON Value variant used for the opaque device,
// app, network and memory context snapshots. These are the canonical
// in-memory representations, separate from the wire payload shapes in
// internal/payload.
package types
