package preset_test

import (
	"testing"

	"github.com/wgergely/repository-manager/internal/preset"
	"github.com/wgergely/repository-manager/internal/projection"
)

func TestNoopProviderIsAlwaysHealthy(t *testing.T) {
	p := preset.NewNoop("venv")
	if p.ID() != "venv" {
		t.Fatalf("expected id venv, got %q", p.ID())
	}
	report, err := p.Check(preset.Context{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.Status != projection.StatusHealthy {
		t.Errorf("expected Healthy, got %v", report.Status)
	}
	result, err := p.Apply(preset.Context{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !result.Success {
		t.Errorf("expected successful apply")
	}
}
