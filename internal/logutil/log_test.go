package logutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	var buf bytes.Buffer
	logger := setup(&buf, "warn", false)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info messages should be filtered out")
	}
	if !strings.Contains(buf.String(), `"message":"visible"`) {
		t.Fatalf("warn message missing from %v", buf.String())
	}

	setup(&buf, "nonsense", false)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("unknown levels should fall back to info, got %v", zerolog.GlobalLevel())
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf).With().Str("component", "test").Logger())
	log := GetOrDefault(ctx)
	log.Error().Msg("hello")
	if !strings.Contains(buf.String(), `"component":"test"`) {
		t.Fatalf("logger from context should be used, got %v", buf.String())
	}
}
