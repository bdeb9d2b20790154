package logctx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFromContext_Fallback(t *testing.T) {
	for _, ctx := range []context.Context{nil, context.Background()} {
		logger := FromContext(ctx)

		var buf bytes.Buffer
		logger.Output(&buf).Info().Msg("test")
		if buf.Len() == 0 {
			t.Error("expected fallback logger to produce output")
		}
	}
}

func TestWithLogger_Roundtrip(t *testing.T) {
	var buf bytes.Buffer
	custom := zerolog.New(&buf).With().Str("custom", "field").Logger()

	ctx := WithLogger(context.Background(), custom)
	FromContext(ctx).Info().Msg("test")

	if out := buf.String(); !strings.Contains(out, `"custom":"field"`) {
		t.Errorf("expected custom field in output, got: %s", out)
	}
}

func TestWithLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(nil, zerolog.New(&buf))
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}

	FromContext(ctx).Info().Msg("test")
	if buf.Len() == 0 {
		t.Error("expected logger to produce output")
	}
}

func TestWithStr(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))

	ctx = WithStr(ctx, "bucket", "my-bucket")
	ctx = WithStr(ctx, "profile", "prod")
	FromContext(ctx).Info().Msg("test")

	out := buf.String()
	if !strings.Contains(out, `"bucket":"my-bucket"`) {
		t.Errorf("expected bucket field, got: %s", out)
	}
	if !strings.Contains(out, `"profile":"prod"`) {
		t.Errorf("expected profile field, got: %s", out)
	}
}
