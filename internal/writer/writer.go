// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Writer delivers changes verbatim to every sink.
// It holds no published state; deciding what changed is the poller's job.
type Writer struct {
	sinks []Sink
	log   *zap.Logger
}

func New(log *zap.Logger, sinks ...Sink) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		sinks: sinks,
		log:   log.With(zap.String("component", "writer")),
	}
}

// Open registers items on every sink. The first sink is the primary one and
// its registration failure fails Open; the others are mirrors and only warn.
func (w *Writer) Open(items []Item) error {
	if len(w.sinks) == 0 {
		return errors.New("writer: no sinks configured")
	}

	if err := w.sinks[0].Register(items, w.handleChange); err != nil {
		return fmt.Errorf("writer: primary sink register failed: %w", err)
	}

	for i, s := range w.sinks[1:] {
		if err := s.Register(items, w.handleChange); err != nil {
			w.log.Warn("mirror sink register failed, continuing without initial values",
				zap.Int("sink", i+1),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Write delivers changes to all sinks. A failing sink does not stop delivery
// to the others.
func (w *Writer) Write(changes ...Change) error {
	var errs []string

	for i, s := range w.sinks {
		for _, c := range changes {
			if err := s.Set(c.Path, c.Value); err != nil {
				errs = append(errs, fmt.Sprintf("sink=%d path=%s err=%v", i, c.Path, err))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (w *Writer) Close() error {
	var last error
	for i, s := range w.sinks {
		if err := s.Close(); err != nil {
			w.log.Debug("sink close failed", zap.Int("sink", i), zap.Error(err))
			last = err
		}
	}
	return last
}

// handleChange accepts every external write.
func (w *Writer) handleChange(path string, value any) bool {
	w.log.Debug("value updated externally",
		zap.String("path", path),
		zap.Any("value", value),
	)
	return true
}
