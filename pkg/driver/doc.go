// Package driver implements the typed value marshaling and statement
// lifecycle core of the oraq client: connections, prepared statements,
// bind parameter tables, bulk-fetch buffers, and the bidirectional
// conversions between Oracle's metadata-driven wire values and Go
// values.
//
// The native call layer is consumed through the pkg/dpi boundary and is
// never reimplemented here. Statements walk a strict
// prepare/bind/execute/fetch/close lifecycle; operations illegal for a
// statement's kind fail with typed errors rather than reaching the
// native layer. Fetched rows live in per-column batch buffers that are
// reused across round trips; Row detaches deep copies so no caller ever
// holds a reference into a reused buffer.
//
// NUMBER columns with an unknown or fractional shape are carried as
// exact decimal text and converted on demand, never through an
// intermediate binary double. Keep it that way: the text representation
// is what makes large and high-precision values round-trip exactly.
package driver
