package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogGoals(t *testing.T) {
	out, err := run(t, "catalog", "goals")
	if err != nil {
		t.Fatalf("catalog goals: %v", err)
	}
	for _, want := range []string{"frontend", "Frontend Developer", "cybersecurity", "custom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCatalogTemplates(t *testing.T) {
	out, err := run(t, "catalog", "templates", "frontend")
	if err != nil {
		t.Fatalf("catalog templates: %v", err)
	}
	if !strings.Contains(out, "1. HTML") {
		t.Errorf("expected HTML as first entry:\n%s", out)
	}

	if _, err := run(t, "catalog", "templates", "astronaut"); err == nil {
		t.Error("unknown goal should fail")
	}
}

func TestCatalogKnowledge(t *testing.T) {
	out, err := run(t, "catalog", "knowledge", "data-analyst")
	if err != nil {
		t.Fatalf("catalog knowledge: %v", err)
	}
	if !strings.Contains(out, "- SQL") {
		t.Errorf("expected SQL option:\n%s", out)
	}

	out, err = run(t, "catalog", "knowledge", "custom")
	if err != nil {
		t.Fatalf("catalog knowledge custom: %v", err)
	}
	if !strings.Contains(out, "No predefined options") {
		t.Errorf("custom goal should have no options:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "skilltrack ") {
		t.Errorf("version = %q", out)
	}
}
