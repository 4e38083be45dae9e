package logging

import (
	"context"
	"log/slog"
	"time"
)

// Span represents a logical unit of work within a request, such as a media
// upload or a multi-document write sequence.
type Span struct {
	logger *slog.Logger
	start  time.Time
}

// StartSpan derives a child logger annotated with the span name and returns
// the enriched context together with the span handle.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx).With(slog.String("span", name))
	ctx = WithLogger(ctx, logger)

	return ctx, &Span{logger: logger, start: time.Now()}
}

// End finalizes the span and emits a completion log entry.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Debug("span completed", slog.Duration("duration", time.Since(s.start)))
}
