package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/anvil/internal/ui/output"
	"go.trai.ch/anvil/internal/ui/style"
)

// Failure attributes set by the install pipeline. The pretty handler renders
// them around the first line of the message instead of as key=value pairs.
const (
	attrStage    = "stage"
	attrEntry    = "entry"
	attrExitCode = "exit_code"
)

// PrettyHandler is a slog.Handler that writes one colored block per record:
//
//	<icon> [stage] <first line> (entry <name>, exit <code>) key=value...
//	<remaining lines>
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	// attrs are qualified with the group that was open when they were added.
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a PrettyHandler writing to w, or os.Stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{out: output.New(w), level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var notes annotations
	for _, attr := range h.attrs {
		notes.add(attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		notes.add(qualify(h.group, attr))
		return true
	})

	icon, color := levelStyle(r.Level)
	headline, rest, multiline := strings.Cut(r.Message, "\n")

	var b strings.Builder
	if icon != "" {
		b.WriteString(icon + " ")
	}
	if notes.stage != "" {
		b.WriteString("[" + notes.stage + "] ")
	}
	b.WriteString(headline)
	b.WriteString(notes.suffix())
	if multiline {
		b.WriteString("\n" + rest)
	}

	styled := h.out.String(b.String()).Foreground(color)
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, attr := range attrs {
		merged = append(merged, qualify(h.group, attr))
	}
	return &PrettyHandler{out: h.out, level: h.level, attrs: merged, group: h.group}
}

// WithGroup returns a new Handler that nests later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &PrettyHandler{out: h.out, level: h.level, attrs: h.attrs, group: group}
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning, termenv.RGBColor(string(style.Yellow))
	default:
		return "", termenv.RGBColor(string(style.Slate))
	}
}

func qualify(group string, attr slog.Attr) slog.Attr {
	if group != "" {
		attr.Key = group + "." + attr.Key
	}
	return attr
}

// annotations collects the attributes of one record.
type annotations struct {
	stage    string
	entry    string
	exitCode string
	extra    []string
}

func (a *annotations) add(attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve().String()
	switch attr.Key {
	case attrStage:
		a.stage = value
	case attrEntry:
		a.entry = value
	case attrExitCode:
		a.exitCode = value
	default:
		a.extra = append(a.extra, attr.Key+"="+value)
	}
}

func (a *annotations) suffix() string {
	var details []string
	if a.entry != "" {
		details = append(details, "entry "+a.entry)
	}
	if a.exitCode != "" {
		details = append(details, "exit "+a.exitCode)
	}

	var b strings.Builder
	if len(details) > 0 {
		b.WriteString(" (" + strings.Join(details, ", ") + ")")
	}
	for _, kv := range a.extra {
		b.WriteString(" " + kv)
	}
	return b.String()
}
