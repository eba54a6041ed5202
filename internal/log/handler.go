package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// mirrorSuspended counts active suspensions of the stderr mirror. Interactive
// table commands suspend it while they own the terminal; nested suspensions
// stack so an inner resume does not re-enable the mirror under an outer TUI.
var mirrorSuspended atomic.Int64

// EnableErrorMirroring releases one suspension of the error mirror.
func EnableErrorMirroring() {
	for {
		n := mirrorSuspended.Load()
		if n <= 0 {
			return
		}
		if mirrorSuspended.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// DisableErrorMirroring suspends mirroring of error records to the secondary
// handler. Call EnableErrorMirroring to release the suspension.
func DisableErrorMirroring() {
	mirrorSuspended.Add(1)
}

func errorMirroringEnabled() bool {
	return mirrorSuspended.Load() == 0
}

// NewDualHandler fans records out to a primary handler and mirrors error
// level records to an optional secondary handler, typically stderr.
func NewDualHandler(primary slog.Handler, secondary slog.Handler) slog.Handler {
	return &dualHandler{primary: primary, secondary: secondary}
}

type dualHandler struct {
	primary   slog.Handler
	secondary slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.primary != nil && h.primary.Enabled(ctx, level) {
		return true
	}
	return h.shouldMirror(level) && h.secondary.Enabled(ctx, level)
}

func (h *dualHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.primary != nil && h.primary.Enabled(ctx, record.Level) {
		if err := h.primary.Handle(ctx, record); err != nil {
			return err
		}
	}

	if !h.shouldMirror(record.Level) || !h.secondary.Enabled(ctx, record.Level) {
		return nil
	}
	return h.secondary.Handle(ctx, record.Clone())
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &dualHandler{}
	if h.primary != nil {
		next.primary = h.primary.WithAttrs(attrs)
	}
	if h.secondary != nil {
		next.secondary = h.secondary.WithAttrs(attrs)
	}
	return next
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	next := &dualHandler{}
	if h.primary != nil {
		next.primary = h.primary.WithGroup(name)
	}
	if h.secondary != nil {
		next.secondary = h.secondary.WithGroup(name)
	}
	return next
}

func (h *dualHandler) shouldMirror(level slog.Level) bool {
	return h.secondary != nil && level >= slog.LevelError && errorMirroringEnabled()
}
