package boundary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if b.Financial == nil || b.Financial.MaxActionValue != 1_000 {
		t.Fatalf("expected default financial limits, got %+v", b.Financial)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boundaries.yaml")
	content := "financial:\n  max_action_value: 250\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Financial.MaxActionValue != 250 {
		t.Errorf("max_action_value = %v, want file override 250", b.Financial.MaxActionValue)
	}
	// Sections the file does not mention keep their defaults.
	if b.Trading == nil || b.Trading.MaxTradeValue != 500 {
		t.Errorf("expected default trading limits preserved, got %+v", b.Trading)
	}
}

func TestLoadInvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("financial: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error for invalid YAML")
	}
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.yaml")
	if err := os.WriteFile(path, []byte(DefaultConfigYAML()), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("generated template failed to load: %v", err)
	}
	def := Default()
	if b.Financial.MaxActionValue != def.Financial.MaxActionValue {
		t.Errorf("template financial differs from defaults: %v vs %v",
			b.Financial.MaxActionValue, def.Financial.MaxActionValue)
	}
	if b.Development.AlwaysReview != def.Development.AlwaysReview {
		t.Error("template development.always_review differs from defaults")
	}
}
