// Package notifier posts match announcements after a scrape run.
//
// Announcements are batch output of the regenerator, not a live update
// channel: the announce command runs after reconciliation and posts whatever
// the diff found. The DryRun notifier prints instead of posting.
package notifier
