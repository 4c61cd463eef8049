package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, sub := range []string{"serve", "reconcile", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != Version {
		t.Errorf("version = %q, want %q", out, Version)
	}
}

func TestReconcileOnEmptyMemoryStore(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_KEY", "test")
	t.Setenv("CONFIG_FILE", "")

	out, err := executeCommand("reconcile")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	var report map[string]int
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if report["danglingRefs"] != 0 || report["relinked"] != 0 || report["orphans"] != 0 {
		t.Errorf("unexpected report %v", report)
	}
}

func TestServeRequiresConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_KEY", "")
	t.Setenv("CONFIG_FILE", "")

	if _, err := executeCommand("serve"); err == nil {
		t.Fatal("expected serve to fail without JWT_KEY")
	}
}
