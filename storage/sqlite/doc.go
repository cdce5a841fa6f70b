// Package sqlite implements storage.MessageRepository on SQLite.
//
// Channel and summary messages live in the messages table; direct messages live
// in direct_messages with their sender and receiver. The schema is created by
// embedded migrations applied on open and tracked in schema_migrations.
//
// The pure-Go modernc.org/sqlite driver is used so the binary needs no cgo.
package sqlite
