package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pfrederiksen/lolesports-ical/internal/match"
)

// Store persists the match history at a single file path.
type Store struct {
	path string
	log  *logrus.Entry
}

// NewStore creates a store for the given history file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		log:  logrus.WithField("component", "history"),
	}
}

// Path returns the history file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted history and returns the best record per canonical
// key. Load never fails: a missing or unreadable file yields empty history,
// and individual records that fail to parse are dropped.
func (s *Store) Load() map[match.Key]Record {
	records := make(map[match.Key]Record)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("history unreadable, starting empty")
		}
		return records
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.WithError(err).Warn("history corrupted, starting empty")
		return records
	}

	dropped := 0
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			dropped++
			continue
		}
		key := rec.Key()
		if existing, ok := records[key]; ok {
			// First-seen wins on equal rank.
			if rank(rec) <= rank(existing) {
				continue
			}
		}
		records[key] = rec
	}

	if dropped > 0 {
		s.log.WithField("dropped", dropped).Warn("skipped malformed history records")
	}
	return records
}

// Save rewrites the full history file, sorted by start-time string for
// readability. The write goes through a temp file and rename so a failed run
// never leaves a truncated history behind. Save failures propagate: losing
// write capability must be visible to the operator.
func (s *Store) Save(records map[match.Key]Record) error {
	list := make([]Record, 0, len(records))
	for _, rec := range records {
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartUTC != list[j].StartUTC {
			return list[i].StartUTC < list[j].StartUTC
		}
		return list[i].UID < list[j].UID
	})

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing history file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// SaveMatches serializes every match and rewrites the history file.
func (s *Store) SaveMatches(matches []match.Match) error {
	records := make(map[match.Key]Record, len(matches))
	for _, m := range matches {
		records[m.Key()] = FromMatch(m)
	}
	return s.Save(records)
}
