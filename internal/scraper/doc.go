// Package scraper extracts match records from the LoL Esports schedule page.
//
// Two strategies run in order: the structured Apollo SSR payload embedded in
// the page (richest data: team codes, scores, match ids) and, when that
// yields nothing, best-effort HTML heuristics built around <time> elements
// and league links. Missing fields are expected and normal; records without
// a usable start time are skipped silently.
package scraper
