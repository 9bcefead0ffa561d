// Package history persists matches across runs and reconciles fresh scrapes
// against that history.
//
// The history file is a plain JSON list of match records, hand-editable and
// tolerant of partial damage: an unreadable file loads as empty history, and
// an unreadable individual record is dropped while the rest proceed. Saving
// rewrites the whole set atomically; a failed save is surfaced, never hidden.
//
// Reconciliation keeps published UIDs stable: a fresh match that matches a
// historical record by canonical key inherits the historical UID while every
// mutable field (scores, state, stage) comes from the fresh data, and
// historical matches missing from the fresh scrape are retained so completed
// results never vanish from the feed.
package history
