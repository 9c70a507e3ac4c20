// Package java runs installer packages with a java executable.
package java

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner implements ports.InstallerRunner with `java -jar`.
type Runner struct {
	logger   ports.Logger
	javaPath string
	environ  func() []string
}

// NewRunner creates a Runner. An empty javaPath means "java", resolved through
// JAVA_HOME first and PATH second.
func NewRunner(javaPath string, logger ports.Logger) *Runner {
	return &Runner{logger: logger, javaPath: javaPath, environ: os.Environ}
}

// Run executes the package's entry point with args from the package's
// directory and waits for it to exit. Each output line is logged and also
// copied to output. ctx is only checked before the process starts; a started
// installer always runs to completion.
func (r *Runner) Run(ctx context.Context, packagePath string, args []string, output io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := r.environ()
	executable := resolveJava(r.javaPath, env)

	cmdArgs := append([]string{"-jar", packagePath}, args...)
	cmd := exec.Command(executable, cmdArgs...) //nolint:gosec // java path comes from configuration
	cmd.Dir = filepath.Dir(packagePath)
	cmd.Env = env

	stdoutLog := &logWriter{logger: r.logger, level: "info"}
	stderrLog := &logWriter{logger: r.logger, level: "warn"}
	if output == nil {
		output = io.Discard
	}
	cmd.Stdout = io.MultiWriter(stdoutLog, output)
	cmd.Stderr = io.MultiWriter(stderrLog, output)

	err := cmd.Run()
	_ = stdoutLog.Close()
	_ = stderrLog.Close()
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	failure := zerr.With(errors.Join(domain.ErrInstallerFailed, err), "exit_code", exitCode)
	return zerr.With(failure, "java", executable)
}

// resolveJava prefers $JAVA_HOME/bin/java for the bare "java" command.
func resolveJava(javaPath string, env []string) string {
	if javaPath != "" && javaPath != "java" {
		return javaPath
	}
	for _, e := range env {
		home, ok := strings.CutPrefix(e, "JAVA_HOME=")
		if !ok || home == "" {
			continue
		}
		candidate := filepath.Join(home, "bin", "java")
		if isExecutable(candidate) {
			return candidate
		}
	}
	return "java"
}

func isExecutable(file string) bool {
	d, err := os.Stat(file)
	if err != nil {
		return false
	}
	m := d.Mode()
	return !m.IsDir() && m&0o111 != 0
}

type logWriter struct {
	logger ports.Logger
	level  string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}

	if w.level == "info" {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}
