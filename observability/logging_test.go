package observability

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("prod", &buf)
	l.Debug().Msg("hidden")
	l.Info().Str("city", "Pune").Msg("listed")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "listed" || entry["city"] != "Pune" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLoggerDevIsConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("dev", &buf)
	l.Debug().Msg("visible")
	if !bytes.Contains(buf.Bytes(), []byte("visible")) {
		t.Errorf("output = %q, want debug line", buf.String())
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Error("dev output should not be JSON")
	}
}
