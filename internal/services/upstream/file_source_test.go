package upstream

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleFile = `{
	"permanence": [{"permanencia":100},{"permanencia":360},{"permanencia":null}],
	"severityAndPermanence": [
		{"gravidade":"Baixa","permanencia":90},
		{"gravidade":"Alta","permanencia":"abc"}
	]
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	writeFile(t, path, sampleFile)

	s := NewFileSource(path)
	defer func() { _ = s.Close() }()

	perm, err := s.FetchPermanence(context.Background())
	if err != nil {
		t.Fatalf("FetchPermanence() error = %v", err)
	}
	if len(perm.Records) != 3 || perm.Degraded != 1 {
		t.Errorf("permanence = %d records, %d degraded", len(perm.Records), perm.Degraded)
	}

	sev, err := s.FetchSeverity(context.Background())
	if err != nil {
		t.Fatalf("FetchSeverity() error = %v", err)
	}
	if len(sev.Records) != 2 || sev.Degraded != 1 {
		t.Errorf("severity = %d records, %d degraded", len(sev.Records), sev.Degraded)
	}
	if sev.Records[0].Category != "Baixa" || sev.Records[0].DurationMinutes != 90 {
		t.Errorf("first severity record = %+v", sev.Records[0])
	}
}

func TestFileSource_MissingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	writeFile(t, path, `{"permanence":[{"permanencia":1}]}`)

	s := NewFileSource(path)
	sev, err := s.FetchSeverity(context.Background())
	if err != nil {
		t.Fatalf("FetchSeverity() error = %v", err)
	}
	if len(sev.Records) != 0 {
		t.Errorf("got %d records, want 0", len(sev.Records))
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		create  bool
	}{
		{name: "missing file", create: false},
		{name: "invalid json", content: `{not json`, create: true},
		{name: "section not an array", content: `{"permanence":{"permanencia":1}}`, create: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "case"+string(rune('a'+i))+".json")
			if tt.create {
				writeFile(t, path, tt.content)
			}
			if _, err := NewFileSource(path).FetchPermanence(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFileSource_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	writeFile(t, path, sampleFile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileSource(path).FetchPermanence(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestFileSource_WatchSignalsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	writeFile(t, path, sampleFile)

	s := NewFileSource(path)
	if err := s.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	// Unrelated files in the same directory are ignored.
	writeFile(t, filepath.Join(dir, "other.json"), "{}")
	select {
	case <-s.Changes():
		t.Fatal("unexpected change signal for unrelated file")
	case <-time.After(3 * debounceInterval):
	}

	writeFile(t, path, `{"permanence":[]}`)
	select {
	case <-s.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}
}

func TestFileSource_WatchMissingDir(t *testing.T) {
	s := NewFileSource(filepath.Join(t.TempDir(), "nope", "records.json"))
	if err := s.Watch(); err == nil {
		t.Error("expected error watching a missing directory")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFileSource_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	writeFile(t, path, sampleFile)

	s := NewFileSource(path)
	if err := s.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
