// Package installer rewrites a loader installer package so that it installs
// headlessly into a chosen game directory, then runs it.
package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/core/ports"
	"go.trai.ch/anvil/internal/engine/classpatch"
	"go.trai.ch/zerr"
)

const (
	manifestEntry   = "META-INF/MANIFEST.MF"
	profileEntry    = "install_profile.json"
	entryPointEntry = "net/minecraftforge/installer/SimpleInstaller.class"

	installerSection = "net/minecraftforge/installer/"

	flagInstallServer = "--installServer"
	flagInstallClient = "--installClient"
)

// Stages reported in the "stage" metadata of transformer errors.
const (
	StageManifest = "manifest"
	StageProfile  = "profile"
	StagePatch    = "patch"
	StageExecute  = "execute"
	StageIO       = "io"
)

// Transformer turns installer packages into installed versions.
type Transformer struct {
	runner ports.InstallerRunner
	store  ports.VersionStore
	logger ports.Logger
	tracer ports.Tracer
}

// NewTransformer creates a Transformer.
func NewTransformer(
	runner ports.InstallerRunner,
	store ports.VersionStore,
	logger ports.Logger,
	tracer ports.Tracer,
) *Transformer {
	return &Transformer{
		runner: runner,
		store:  store,
		logger: logger,
		tracer: tracer,
	}
}

// Transform rewrites pkg into <targetDir>/neoforge-installer.jar and installs it.
//
// Packages that embed a full version definition are materialized directly and
// never executed. All others are patched, run, and removed afterwards; the
// returned result then carries the version name the installer declared.
// Transform is not safe for concurrent use on the same targetDir.
func (t *Transformer) Transform(ctx context.Context, pkg []byte, targetDir string) (domain.InstallResult, error) {
	ctx, span := t.tracer.Start(ctx, "installer.transform", ports.WithAttribute("target_dir", targetDir))
	defer span.End()

	result, err := t.transform(ctx, span, pkg, targetDir)
	if err != nil {
		span.RecordError(err)
		return domain.InstallResult{}, err
	}
	span.SetAttribute("result", result.Kind().String())
	span.SetAttribute("version", result.VersionName())
	return result, nil
}

func (t *Transformer) transform(
	ctx context.Context,
	span ports.Span,
	pkg []byte,
	targetDir string,
) (domain.InstallResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.InstallResult{}, err
	}

	archive, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageReadFailed, err)
	}

	if err := os.MkdirAll(targetDir, domain.DirPerm); err != nil {
		return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
	}
	packagePath := filepath.Join(targetDir, domain.InstallerPackageName)
	file, err := os.Create(packagePath) //nolint:gosec // path is built from the target directory
	if err != nil {
		return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
	}
	defer func() {
		_ = file.Close()
		_ = os.Remove(packagePath)
	}()

	out := zip.NewWriter(file)
	var (
		serverMeansClientMode bool
		declared              string
	)

	for _, entry := range archive.File {
		switch entry.Name {
		case manifestEntry:
			data, err := readEntry(entry)
			if err != nil {
				return domain.InstallResult{}, stageError(StageManifest, domain.ErrPackageReadFailed, err)
			}
			manifest, err := ParseManifest(data)
			if err != nil {
				return domain.InstallResult{}, stageError(StageManifest, domain.ErrManifestParseFailed, err)
			}
			if serverMeansClientMode, err = serverMeansClient(manifest); err != nil {
				return domain.InstallResult{}, stageError(StageManifest, domain.ErrManifestParseFailed, err)
			}
			span.SetAttribute("server_means_client", serverMeansClientMode)

		case profileEntry:
			data, err := readEntry(entry)
			if err != nil {
				return domain.InstallResult{}, stageError(StageProfile, domain.ErrPackageReadFailed, err)
			}
			p, err := parseProfile(data)
			if err != nil {
				return domain.InstallResult{}, stageError(StageProfile, domain.ErrProfileParseFailed, err)
			}
			if p.versionInfo != nil {
				// The partial package is removed by the deferred cleanup.
				_ = out.Close()
				name, err := t.store.Materialize(ctx, targetDir, p.versionInfo)
				if err != nil {
					return domain.InstallResult{}, stageError(StageProfile, domain.ErrVersionStoreFailed, err)
				}
				t.logger.Info(fmt.Sprintf("installed %s from embedded version definition", name))
				return domain.DirectVersionName(name), nil
			}
			declared = p.version
			if err := writeEntry(out, entry, data); err != nil {
				return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
			}

		case entryPointEntry:
			data, err := readEntry(entry)
			if err != nil {
				return domain.InstallResult{}, stageError(StagePatch, domain.ErrPackageReadFailed, err)
			}
			patched, report, err := classpatch.Patch(data, classpatch.Options{ServerMeansClient: serverMeansClientMode})
			if err != nil {
				return domain.InstallResult{}, stageError(StagePatch, domain.ErrClassFormat, err)
			}
			t.logReport(report)
			if err := writeEntry(out, entry, patched); err != nil {
				return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
			}

		default:
			if err := out.Copy(entry); err != nil {
				return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed,
					zerr.With(err, "entry", entry.Name))
			}
		}
	}

	if err := out.Close(); err != nil {
		return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
	}
	if err := file.Close(); err != nil {
		return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
	}

	if err := ensureProfileRegistry(targetDir); err != nil {
		return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
	}

	absDir, err := filepath.Abs(targetDir)
	if err != nil {
		return domain.InstallResult{}, stageError(StageIO, domain.ErrPackageWriteFailed, err)
	}
	flag := flagInstallClient
	if serverMeansClientMode {
		flag = flagInstallServer
	}

	t.logger.Info(fmt.Sprintf("running installer for %s", declared))
	if err := t.runner.Run(ctx, packagePath, []string{flag, absDir}, span); err != nil {
		return domain.InstallResult{}, stageError(StageExecute, domain.ErrInstallerFailed, err)
	}
	return domain.PendingExecution(declared, packagePath), nil
}

func (t *Transformer) logReport(report classpatch.Report) {
	for _, edit := range report.Edits {
		t.logger.Info(fmt.Sprintf("patched %s at %s+%d", edit.Rule, edit.Method, edit.Offset))
	}
	for _, rule := range report.Missed {
		t.logger.Warn(fmt.Sprintf("patch %s found nothing to rewrite", rule))
	}
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, zerr.With(err, "entry", entry.Name)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, zerr.With(err, "entry", entry.Name)
	}
	return data, nil
}

func writeEntry(out *zip.Writer, entry *zip.File, data []byte) error {
	w, err := out.CreateHeader(&zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: entry.Modified,
	})
	if err != nil {
		return zerr.With(err, "entry", entry.Name)
	}
	if _, err := w.Write(data); err != nil {
		return zerr.With(err, "entry", entry.Name)
	}
	return nil
}

// ensureProfileRegistry creates an empty launcher profile registry, which the
// installer refuses to run without.
func ensureProfileRegistry(dir string) error {
	path := filepath.Join(dir, domain.ProfileRegistryName)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte("{}"), domain.FilePerm)
}

func stageError(stage string, sentinel, err error) error {
	if !errors.Is(err, sentinel) {
		err = errors.Join(sentinel, err)
	}
	return zerr.With(err, "stage", stage)
}
