package projection_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wgergely/repository-manager/internal/content"
	"github.com/wgergely/repository-manager/internal/projection"
)

func TestApplyAndCheckFileManaged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.md")
	p, err := projection.ApplyFileManaged("cursor", path, "hello world")
	if err != nil {
		t.Fatalf("ApplyFileManaged: %v", err)
	}
	status, err := projection.Check(p, content.FormatMarkdown)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != projection.StatusHealthy {
		t.Errorf("expected Healthy, got %v", status)
	}

	if err := os.WriteFile(path, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	status, err = projection.Check(p, content.FormatMarkdown)
	if err != nil {
		t.Fatalf("Check after tamper: %v", err)
	}
	if status != projection.StatusDrifted {
		t.Errorf("expected Drifted after external edit, got %v", status)
	}

	if err := projection.RemoveFileManaged(path); err != nil {
		t.Fatalf("RemoveFileManaged: %v", err)
	}
	status, err = projection.Check(p, content.FormatMarkdown)
	if err != nil {
		t.Fatalf("Check after remove: %v", err)
	}
	if status != projection.StatusMissing {
		t.Errorf("expected Missing after removal, got %v", status)
	}
}

func TestApplyTextBlockScenarioA(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cursorrules")
	if err := os.WriteFile(path, []byte("USER-PRE\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	marker := "11111111-2222-3333-4444-555555555555"

	p, err := projection.ApplyTextBlock("cursor", path, marker, content.FormatMarkdown, "[REQUIRED] r1: Use snake_case")
	if err != nil {
		t.Fatalf("ApplyTextBlock: %v", err)
	}

	if err := appendToFile(path, "\nUSER-POST\n"); err != nil {
		t.Fatal(err)
	}

	status, err := projection.Check(p, content.FormatMarkdown)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != projection.StatusHealthy {
		t.Errorf("expected Healthy with untouched block plus appended user content, got %v", status)
	}

	p2, err := projection.ApplyTextBlock("cursor", path, marker, content.FormatMarkdown, "[REQUIRED] r1: Use kebab-case")
	if err != nil {
		t.Fatalf("ApplyTextBlock update: %v", err)
	}
	final, _ := os.ReadFile(path)
	s := string(final)
	if !strings.Contains(s, "USER-PRE") || !strings.Contains(s, "USER-POST") {
		t.Errorf("expected user content preserved, got %q", s)
	}
	if !strings.Contains(s, "kebab-case") || strings.Contains(s, "snake_case") {
		t.Errorf("expected block content updated, got %q", s)
	}
	if p2.Checksum == p.Checksum {
		t.Errorf("expected checksum to change after content update")
	}
}

func TestApplyAndRemoveJSONKeyScenarioB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	initial := `{"editor.fontSize": 14, "user.custom": true}`
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := projection.ApplyJSONKey("vscode", path, "repo.managed.instructions", "<rendered>")
	if err != nil {
		t.Fatalf("ApplyJSONKey: %v", err)
	}
	status, err := projection.Check(p, content.FormatJSON)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != projection.StatusHealthy {
		t.Errorf("expected Healthy, got %v", status)
	}

	if err := projection.RemoveJSONKey(path, "repo.managed.instructions"); err != nil {
		t.Fatalf("RemoveJSONKey: %v", err)
	}
	data, _ := os.ReadFile(path)
	s := string(data)
	if !strings.Contains(s, "editor.fontSize") || !strings.Contains(s, "user.custom") {
		t.Errorf("expected other keys preserved, got %q", s)
	}
	if strings.Contains(s, "repo") {
		t.Errorf("expected managed key removed, got %q", s)
	}
}

func appendToFile(path, suffix string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(suffix)
	return err
}
