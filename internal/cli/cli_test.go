package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitLeagues(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"lec", []string{"lec"}},
		{"lec,lck", []string{"lec", "lck"}},
		{" lec , lck ,", []string{"lec", "lck"}},
		{",,,", nil},
		{"", nil},
	}

	for _, tt := range tests {
		if got := splitLeagues(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitLeagues(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestWriteFileAtomicCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "feed.ics")

	if err := writeFileAtomic(path, []byte("BEGIN:VCALENDAR\r\n")); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "BEGIN:VCALENDAR\r\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestWriteFileAtomicReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.ics")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := writeFileAtomic(path, []byte("new")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("expected replacement, got %q", data)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory in test environment")
	}

	got, err := expandHome("~/.local/share/lolesports-ical/history.json")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, ".local/share/lolesports-ical/history.json")
	if got != want {
		t.Errorf("expandHome = %q, want %q", got, want)
	}

	plain, err := expandHome("/tmp/history.json")
	if err != nil || plain != "/tmp/history.json" {
		t.Errorf("absolute path should pass through, got %q, %v", plain, err)
	}
}
