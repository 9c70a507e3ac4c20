package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/anvil/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without color codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{name: "info", log: func(l *logger.Logger) { l.Info("some message") }, goldenName: "info_basic"},
		{name: "warn", log: func(l *logger.Logger) { l.Warn("some warning") }, goldenName: "warn_basic"},
		{name: "error", log: func(l *logger.Logger) { l.Error(os.ErrPermission) }, goldenName: "error_simple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Chains(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name: "zerr chain",
			err: zerr.Wrap(
				zerr.Wrap(errors.New("connection refused"), "failed to fetch version metadata"),
				"failed to resolve neoforge-21.1.5",
			),
			goldenName: "error_chain",
		},
		{
			name: "stage metadata",
			err: zerr.With(
				errors.Join(zerr.New("installer execution failed"), errors.New("exit status 1")),
				"stage", "execute",
			),
			goldenName: "error_stage",
		},
		{
			name: "exit code metadata",
			err: zerr.With(zerr.With(
				errors.Join(zerr.New("installer failed"), errors.New("exit status 3")),
				"exit_code", 3), "stage", "execute"),
			goldenName: "error_exit_code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_NilError(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Info("installing")
	lg.Error(zerr.With(zerr.New("download failed"), "url", "https://x"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &info))
	assert.Equal(t, "INFO", info["level"])
	assert.Equal(t, "installing", info["msg"])

	var failure map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &failure))
	assert.Equal(t, "ERROR", failure["level"])
	assert.Equal(t, "operation failed", failure["msg"])
	assert.Contains(t, string(lines[1]), "https://x")

	buf.Reset()
	lg.Error(zerr.With(zerr.With(zerr.New("installer failed"), "exit_code", 1), "stage", "execute"))
	var staged map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &staged))
	assert.Equal(t, "execute", staged["stage"])
	assert.InDelta(t, 1, staged["exit_code"], 0)

	buf.Reset()
	lg.SetJSON(false)
	lg.Info("pretty again")
	assert.Equal(t, "pretty again\n", buf.String())
}

func TestPrettyHandler(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		args       []any
		goldenName string
	}{
		{name: "info with attrs", level: slog.LevelInfo, args: []any{"pool", "forge_installer"}, goldenName: "handler_info"},
		{name: "warn", level: slog.LevelWarn, goldenName: "handler_warn"},
		{
			name:  "failure attributes",
			level: slog.LevelWarn,
			args: []any{
				"pool", "forge_installer",
				"entry", "net/minecraftforge/installer/SimpleInstaller.class",
				"stage", "patch",
			},
			goldenName: "handler_failure_attrs",
		},
		{name: "debug filtered", level: slog.LevelDebug, goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, "downloading", tt.args...)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).With("version", "21.1.5").WithGroup("http")
	lg.Info("fetched", "status", 200)

	assert.Equal(t, "fetched version=21.1.5 http.status=200\n", buf.String())
}

func TestPrettyHandler_MultilineMessage(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil))
	lg.Error("Error: installer failed\n  details", "stage", "execute", "exit_code", 2)

	assert.Equal(t, "✗ [execute] Error: installer failed (exit 2)\n  details\n", buf.String())
}
