package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	tests := map[string]struct {
		setup       func(path string)
		ignoreSaved bool
		key         string
		want        string
		wantOK      bool
	}{
		"missing file is empty": {
			setup:  func(path string) {},
			key:    "github_credential",
			wantOK: false,
		},
		"existing value is loaded": {
			setup: func(path string) {
				os.WriteFile(path, []byte(`{"github_credential":"octocat:ghp_x"}`), 0o600)
			},
			key:    "github_credential",
			want:   "octocat:ghp_x",
			wantOK: true,
		},
		"corrupt file is empty": {
			setup: func(path string) {
				os.WriteFile(path, []byte(`{not json`), 0o600)
			},
			key:    "github_credential",
			wantOK: false,
		},
		"ignore saved skips loading": {
			setup: func(path string) {
				os.WriteFile(path, []byte(`{"gitlab_token":"glpat"}`), 0o600)
			},
			ignoreSaved: true,
			key:         "gitlab_token",
			wantOK:      false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			tc.setup(path)

			s := Open(path, tc.ignoreSaved)
			got, ok := s.ReadString(tc.key)
			if ok != tc.wantOK {
				t.Fatalf("ReadString(%q) ok = %v, want %v", tc.key, ok, tc.wantOK)
			}
			if got != tc.want {
				t.Errorf("ReadString(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestWriteIsDurable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	s := Open(path, false)

	if err := s.Write("gitlab_token", "glpat-123"); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := s.Write("settings", map[string]int{"n": 1}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading persisted file: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("persisted file is not JSON: %v", err)
	}
	if string(doc["gitlab_token"]) != `"glpat-123"` {
		t.Errorf("gitlab_token = %s, want %q", doc["gitlab_token"], "glpat-123")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != filePerm {
		t.Errorf("file mode = %v, want %v", info.Mode().Perm(), os.FileMode(filePerm))
	}

	reopened := Open(path, false)
	if got, _ := reopened.ReadString("gitlab_token"); got != "glpat-123" {
		t.Errorf("reopened ReadString() = %q, want %q", got, "glpat-123")
	}
	if raw, ok := reopened.Read("settings"); !ok || string(raw) != `{"n":1}` {
		t.Errorf("reopened Read(settings) = %s, %v", raw, ok)
	}
}

func TestIgnoreSavedStillWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	os.WriteFile(path, []byte(`{"old":"value"}`), 0o600)

	s := Open(path, true)
	if err := s.Write("new", "value"); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	reopened := Open(path, false)
	if _, ok := reopened.Read("old"); ok {
		t.Error("expected old key to be replaced when saved state was ignored")
	}
	if _, ok := reopened.Read("new"); !ok {
		t.Error("expected new key to be persisted")
	}
}

func TestReadStringNonString(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	os.WriteFile(path, []byte(`{"n":42}`), 0o600)

	s := Open(path, false)
	if _, ok := s.ReadString("n"); ok {
		t.Error("ReadString() on a number should report false")
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	s := Open(path, false)

	if err := s.Delete("ghost"); err != nil {
		t.Fatalf("Delete() of missing key error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("deleting a missing key should not create the file")
	}

	s.Write("a", "1")
	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok := Open(path, false).Read("a"); ok {
		t.Error("expected key to be deleted on disk")
	}
}

func TestPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if got := Open(path, false).Path(); got != path {
		t.Errorf("Path() = %q, want %q", got, path)
	}
}
