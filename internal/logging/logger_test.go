package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decode(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("not a JSON line: %q: %v", line, err)
	}
	return entry
}

func TestZerologAdapter_FieldsByType(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	log.Debug("lcs computed",
		String("strategy", "wavefront"),
		Int("length", 5),
		Int64("cells", 7*7),
		Duration("fill", 1500*time.Microsecond),
		Field{Key: "ranks", Value: []int{0, 1}})

	entry := decode(t, buf.Bytes())
	want := map[string]any{
		"level":    "debug",
		"message":  "lcs computed",
		"strategy": "wavefront",
		"length":   float64(5),
		"cells":    float64(49),
		"fill":     1.5, // zerolog writes durations in milliseconds
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v (%T), want %v", k, entry[k], entry[k], v)
		}
	}
	if ranks, ok := entry["ranks"].([]any); !ok || len(ranks) != 2 {
		t.Errorf("ranks = %v, want a two-element list", entry["ranks"])
	}
}

func TestZerologAdapter_ErrorCarriesCause(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologAdapter(zerolog.New(&buf))

	log.Error("request failed", errors.New("rank 1 unavailable"), String("request_id", "r-1"))

	entry := decode(t, buf.Bytes())
	if entry["level"] != "error" || entry["error"] != "rank 1 unavailable" || entry["request_id"] != "r-1" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestZerologAdapter_InfoSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	log.Debug("request", String("route", "/v1/lcs"))
	if buf.Len() != 0 {
		t.Fatalf("debug entry written at info level: %q", buf.String())
	}
	log.Info("server listening", String("addr", "127.0.0.1:8080"))
	if !strings.Contains(buf.String(), `"addr":"127.0.0.1:8080"`) {
		t.Errorf("info entry missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"Error", zerolog.ErrorLevel, false},
		{"chatty", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "info", "json", false)
		if err != nil {
			t.Fatal(err)
		}
		logger.Info().Int("rank", 2).Msg("rank finished")
		entry := decode(t, buf.Bytes())
		if entry["rank"] != float64(2) || entry["time"] == nil {
			t.Errorf("unexpected entry %v", entry)
		}
	})

	t.Run("text without colour", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "debug", "text", false)
		if err != nil {
			t.Fatal(err)
		}
		logger.Debug().Str("peer", "10.0.0.2:7000").Msg("connected downstream rank")
		out := buf.String()
		if !strings.Contains(out, "connected downstream rank") || !strings.Contains(out, "peer=10.0.0.2:7000") {
			t.Errorf("console line = %q", out)
		}
		if strings.Contains(out, "\x1b[") {
			t.Errorf("colour codes in uncoloured output: %q", out)
		}
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(&buf, "warn", "json", false)
		if err != nil {
			t.Fatal(err)
		}
		logger.Info().Msg("hidden")
		if buf.Len() != 0 {
			t.Errorf("info written at warn level: %q", buf.String())
		}
	})

	t.Run("bad level", func(t *testing.T) {
		if _, err := New(&bytes.Buffer{}, "chatty", "json", false); err == nil {
			t.Error("expected an error for an unknown level")
		}
	})
}
