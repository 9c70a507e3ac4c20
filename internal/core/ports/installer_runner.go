package ports

import (
	"context"
	"io"
)

// InstallerRunner executes a rewritten installer package.
//
//go:generate mockgen -source=installer_runner.go -destination=mocks/mock_installer_runner.go -package=mocks
type InstallerRunner interface {
	// Run invokes the package's entry point with args and blocks until it exits.
	// Process output is copied to output.
	Run(ctx context.Context, packagePath string, args []string, output io.Writer) error
}
