// Package notify provides simple notification channels: external collaborators
// that pipeline tools use to surface signals to a console or a structured log.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/petrijr/sigflow/pkg/api"
	"github.com/petrijr/sigflow/pkg/tools"
)

// Channel delivers a signal to some destination outside the pipeline.
type Channel interface {
	Send(ctx context.Context, sig api.Signal) error
}

// ConsoleChannel writes one line per signal to an io.Writer.
type ConsoleChannel struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleChannel creates a ConsoleChannel. A nil writer means os.Stdout.
func NewConsoleChannel(out io.Writer) *ConsoleChannel {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleChannel{out: out}
}

func (c *ConsoleChannel) Send(ctx context.Context, sig api.Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[%s] %v\n", sig.Type, sig.Data)
	return err
}

// LogChannel writes signals to a slog.Logger.
type LogChannel struct {
	Logger *slog.Logger
}

// NewLogChannel creates a LogChannel. A nil logger means slog.Default().
func NewLogChannel(logger *slog.Logger) *LogChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogChannel{Logger: logger}
}

func (c *LogChannel) Send(ctx context.Context, sig api.Signal) error {
	c.Logger.InfoContext(ctx, "notification",
		slog.String("signal_type", sig.Type),
		slog.Any("data", sig.Data),
		slog.String("trace_id", sig.Meta.TraceID),
	)
	return nil
}

// Tool wraps a channel as a registry tool: it sends the payload on the
// channel and passes it through unchanged, so downstream handlers still see
// the data. Register it under a name like "notify" or "log":
//
//	reg.MustRegister("notify", notify.Tool("notify", channel))
func Tool(sigType string, ch Channel) tools.Fn {
	return func(input any) (any, error) {
		sig := api.NewSignal(sigType, input)
		if err := ch.Send(context.Background(), sig); err != nil {
			return nil, err
		}
		return input, nil
	}
}
