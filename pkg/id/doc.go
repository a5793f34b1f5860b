// Package id provides a 128-bit, lexicographically sortable record identifier.
//
// # Format
//
// The ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence].
// Byte-wise comparison preserves chronological order, and IDs generated within
// the same millisecond remain strictly increasing by sequence. Records routed
// to a message broker use the raw bytes as the message key, so partition-local
// ordering matches emission order and replayed records slot back in place.
//
// # Monotonicity
//
// The Generator ensures per-process monotonicity:
//   - If the system clock regresses, it pins to the last seen millisecond and
//     increments the sequence to avoid going backwards.
//   - If the sequence would overflow within a millisecond, it waits for the
//     next millisecond before emitting the next ID.
//
// Usage
//
//	g := id.NewGenerator()
//	newID := g.Next()
//	b := newID.Bytes()   // 16-byte representation, broker message key
//	s := newID.String()  // hex string, carried in the verbose format
package id
