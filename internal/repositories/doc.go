// Package repositories implements SQLite persistence for libcat's local state.
//
// The catalog itself lives on the server; the local database only keeps what
// the client needs between runs:
//   - [SessionRepository] : the signed-in user's bearer token
//   - [ViewStateRepository] : filter, sort, page size and page per collection
//   - [SnapshotRepository] : the last fetched item set per collection, read by offline listing
//
// Schemas are created by the embedded migrations in the shared package.
package repositories
