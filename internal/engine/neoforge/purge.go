package neoforge

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
)

const metaInfPrefix = "META-INF/"

// PurgeMetaInf copies the jar at src to target without its META-INF/ entries,
// which carry the signatures of the vanilla jar.
func PurgeMetaInf(src, target string) (err error) {
	in, err := zip.OpenReader(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageReadFailed.Error()), "path", src)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageWriteFailed.Error()), "path", target)
	}
	f, err := os.Create(target) //nolint:gosec // target is a version jar path
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageWriteFailed.Error()), "path", target)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = zerr.With(zerr.Wrap(cerr, domain.ErrPackageWriteFailed.Error()), "path", target)
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	out := zip.NewWriter(f)
	for _, entry := range in.File {
		if strings.HasPrefix(entry.Name, metaInfPrefix) {
			continue
		}
		if err := out.Copy(entry); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrPackageWriteFailed.Error()), "entry", entry.Name)
		}
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPackageWriteFailed.Error()), "path", target)
	}
	return nil
}
