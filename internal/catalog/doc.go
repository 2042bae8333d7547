// Package catalog records every decoded acquisition chunk in SQLite.
//
// Each run row names the dataset it was merged into, the request that
// produced it, how many traces survived decoding and the blake3 digest of the
// raw capture. The watcher uses the digest to skip captures it has already
// ingested, and the history command lists recent runs.
//
// Schema changes bump schemaVersion in schema.go; users delete catalog.db to
// adopt the new schema.
package catalog
