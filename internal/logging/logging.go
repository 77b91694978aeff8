// Package logging writes the append-only event log. Each record is one line:
//
//	2006-01-02 15:04:05,000 - INFO - message key=value ...
package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// File is an open event log.
type File struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	mu     sync.Mutex
	logger *slog.Logger
	once   sync.Once
	err    error
}

// Open opens (or creates) path for appending and returns a File whose
// Logger writes records at or above level.
func Open(path string, level slog.Leveler) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	f, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", abs, err)
	}

	lf := &File{path: abs, f: f, w: bufio.NewWriter(f)}
	lf.logger = slog.New(NewHandler(lockedWriter{lf}, level))
	return lf, nil
}

// Logger returns the logger writing to this file.
func (lf *File) Logger() *slog.Logger {
	return lf.logger
}

// Path returns the absolute path of the log file.
func (lf *File) Path() string {
	return lf.path
}

// Close flushes and closes the file. Later calls return the first result.
func (lf *File) Close() error {
	lf.once.Do(func() {
		lf.mu.Lock()
		defer lf.mu.Unlock()
		if err := lf.w.Flush(); err != nil {
			lf.err = fmt.Errorf("logging: flush: %w", err)
		}
		if err := lf.f.Close(); err != nil && lf.err == nil {
			lf.err = fmt.Errorf("logging: close: %w", err)
		}
		lf.w = nil
	})
	return lf.err
}

// lockedWriter serializes writes into the buffered file and drops them
// after Close.
type lockedWriter struct{ lf *File }

func (l lockedWriter) Write(p []byte) (int, error) {
	l.lf.mu.Lock()
	defer l.lf.mu.Unlock()
	if l.lf.w == nil {
		return 0, os.ErrClosed
	}
	return l.lf.w.Write(p)
}

// TimeFormat matches the timestamp layout of the event log.
const TimeFormat = "2006-01-02 15:04:05,000"

// Handler is a slog.Handler producing "<timestamp> - <LEVEL> - <message>"
// lines followed by any attributes as key=value pairs.
type Handler struct {
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	now    func() time.Time
}

// NewHandler creates a Handler writing to w. Writes are not synchronized;
// w must be safe for concurrent use if the logger is shared.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{w: w, level: level, now: time.Now}
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = h.now()
	}

	var b strings.Builder
	b.WriteString(t.Format(TimeFormat))
	b.WriteString(" - ")
	b.WriteString(r.Level.String())
	b.WriteString(" - ")
	b.WriteString(r.Message)

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, prefix, a)
		return true
	})
	b.WriteByte('\n')

	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}
	b.WriteString(s)
}
