package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxValueLen is the longest string value passed through unchanged.
	DefaultMaxValueLen = 200

	// DefaultMaxElements is the number of slice elements shown.
	DefaultMaxElements = 4
)

// CompactHandler wraps an slog.Handler to shorten oversized values.
// It intercepts log records and truncates long strings and numeric slices
// before passing them to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Callers can log raw tensors without formatting them first
type CompactHandler struct {
	// handler is the underlying slog handler that receives compacted records.
	handler slog.Handler

	// maxLen is the longest string kept as is.
	maxLen int

	// maxElems is the number of slice elements kept.
	maxElems int
}

// NewCompactHandler creates a new CompactHandler wrapping the given handler.
// If handler is nil, the returned CompactHandler will use slog.Default().Handler().
func NewCompactHandler(handler slog.Handler) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CompactHandler{
		handler:  handler,
		maxLen:   DefaultMaxValueLen,
		maxElems: DefaultMaxElements,
	}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle compacts the record's attributes and passes it to the underlying handler.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	compacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		compacted.AddAttrs(h.compactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, compacted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are compacted before being added.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	compacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		compacted[i] = h.compactAttr(a)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(compacted), maxLen: h.maxLen, maxElems: h.maxElems}
}

// WithGroup returns a new handler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen, maxElems: h.maxElems}
}

// compactAttr compacts a single attribute, recursively handling groups.
func (h *CompactHandler) compactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		compacted := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			compacted[i] = h.compactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(compacted...)}
	case slog.KindString:
		return slog.String(a.Key, h.truncate(a.Value.String()))
	case slog.KindAny:
		if s, ok := h.previewSlice(a.Value.Any()); ok {
			return slog.String(a.Key, s)
		}
	}
	return a
}

// truncate shortens s to at most maxLen bytes without splitting a UTF-8
// sequence and appends the original length.
func (h *CompactHandler) truncate(s string) string {
	if len(s) <= h.maxLen {
		return s
	}
	cut := h.maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "... (" + strconv.Itoa(len(s)) + " bytes)"
}

// previewSlice renders numeric slices longer than maxElems.
func (h *CompactHandler) previewSlice(v any) (string, bool) {
	switch s := v.(type) {
	case []float64:
		return preview(s, h.maxElems, func(f float64) string {
			return strconv.FormatFloat(f, 'g', 4, 64)
		})
	case []float32:
		return preview(s, h.maxElems, func(f float32) string {
			return strconv.FormatFloat(float64(f), 'g', 4, 32)
		})
	case []int:
		return preview(s, h.maxElems, strconv.Itoa)
	case []string:
		return preview(s, h.maxElems, func(e string) string { return e })
	}
	return "", false
}

func preview[T any](s []T, n int, format func(T) string) (string, bool) {
	if len(s) <= n {
		return "", false
	}
	parts := make([]string, 0, n+1)
	for _, e := range s[:n] {
		parts = append(parts, format(e))
	}
	parts = append(parts, "...")
	return fmt.Sprintf("[%s] (%d)", strings.Join(parts, ", "), len(s)), true
}

// NewLogger creates a new slog.Logger with compact handling.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewCompactHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a new slog.Logger with compact handling
// that outputs JSON format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewCompactHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
