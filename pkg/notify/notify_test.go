package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/petrijr/sigflow/pkg/api"
)

func TestConsoleChannelWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	ch := NewConsoleChannel(&buf)

	if err := ch.Send(context.Background(), api.NewSignal("alert", "disk full")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got := buf.String()
	if got != "[alert] disk full\n" {
		t.Fatalf("unexpected console output: %q", got)
	}
}

func TestLogChannelEmitsStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ch := NewLogChannel(logger)

	sig := api.NewSignal("alert", "disk full")
	if err := ch.Send(context.Background(), sig); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "notification") || !strings.Contains(out, "signal_type=alert") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if !strings.Contains(out, sig.Meta.TraceID) {
		t.Fatalf("expected the trace ID in the log output: %q", out)
	}
}

func TestToolPassesInputThrough(t *testing.T) {
	var buf bytes.Buffer
	fn := Tool("notified", NewConsoleChannel(&buf))

	out, err := fn("payload")
	if err != nil {
		t.Fatalf("tool failed: %v", err)
	}
	if out != "payload" {
		t.Fatalf("tool must pass the payload through, got %v", out)
	}
	if !strings.Contains(buf.String(), "[notified] payload") {
		t.Fatalf("channel not invoked: %q", buf.String())
	}
}

type failingChannel struct{}

func (failingChannel) Send(ctx context.Context, sig api.Signal) error {
	return errors.New("downstream unreachable")
}

func TestToolPropagatesSendErrors(t *testing.T) {
	fn := Tool("notified", failingChannel{})

	_, err := fn("payload")
	if err == nil || err.Error() != "downstream unreachable" {
		t.Fatalf("expected the channel error, got %v", err)
	}
}
