// Package match provides the core match model for LoL Esports schedules.
//
// Each match carries a content-derived stable UID used as its published calendar
// identifier, plus a separately derived canonical key that decides whether two
// records (live or persisted) refer to the same real-world match. The UID is
// what calendar clients see; the canonical key is what the reconciler merges on.
package match
