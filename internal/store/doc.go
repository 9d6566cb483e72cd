// Package store holds the authoritative in-memory application state: words,
// their questions, categories, review records, the enrichment queue and user
// settings. Every mutation is a single synchronous step behind one mutex, so
// concurrently completing enrichment tasks never observe torn state. The
// store is explicitly constructed and injected; persistence is layered on
// top via versioned snapshots (see snapshot.go and platform/sqlite).
package store
