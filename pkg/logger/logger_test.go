package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_JSONWithServiceAndComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "registry-api"})

	l := Component("auth")
	l.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "registry-api" || entry["component"] != "auth" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_OnlyFirstCallWins(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})

	l := Get()
	l.Info().Msg("x")
	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output on the first writer only")
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}
