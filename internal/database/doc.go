// Package database is the SQLite-backed catalog store.
//
// It owns the schema for items, tags and their associations, runs
// parameterized read queries on behalf of the catalog engine, and provides
// the ingestion write path used by the importer. Two drivers are supported:
// the cgo github.com/mattn/go-sqlite3 driver ("sqlite3", default) and the
// pure Go modernc.org/sqlite driver ("sqlite").
//
// Failures surface as *ConnectionError when no usable connection exists and
// as *QueryError when a statement fails.
package database
