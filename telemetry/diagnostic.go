package telemetry

import (
	"context"
	"fmt"
	"io"
)

// DiagnosticWriter emits the ";"-prefixed diagnostic lines the CLI contract
// (§6) requires on standard output, while also logging the same message
// through Logger so structured log sinks see it.
type DiagnosticWriter struct {
	Out    io.Writer
	Logger Logger
}

// NewDiagnosticWriter constructs a DiagnosticWriter over w, logging through l.
func NewDiagnosticWriter(w io.Writer, l Logger) *DiagnosticWriter {
	if l == nil {
		l = NewNoopLogger()
	}
	return &DiagnosticWriter{Out: w, Logger: l}
}

// Printf writes a single ";"-prefixed diagnostic line and logs it at info
// level. The format string must not itself contain a trailing newline.
func (d *DiagnosticWriter) Printf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if d.Out != nil {
		fmt.Fprintf(d.Out, ";%s\n", msg)
	}
	d.Logger.Info(ctx, msg)
}
