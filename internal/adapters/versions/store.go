// Package versions stores game version definitions in the launcher layout:
// <gameDir>/versions/<id>/<id>.json next to <id>.jar.
package versions

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.VersionStore.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

type header struct {
	ID string `json:"id"`
}

// Materialize writes definition under the id it declares and returns that id.
// The definition is stored byte for byte.
func (s *Store) Materialize(ctx context.Context, gameDir string, definition []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var h header
	if err := json.Unmarshal(definition, &h); err != nil {
		return "", errors.Join(domain.ErrVersionJSONParseFailed, err)
	}
	if !validName(h.ID) {
		return "", zerr.With(domain.ErrVersionJSONInvalid, "id", h.ID)
	}

	filename := s.jsonPath(gameDir, h.ID)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return "", zerr.With(errors.Join(domain.ErrVersionStoreFailed, err), "path", filename)
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, definition, domain.FilePerm); err != nil {
		return "", zerr.With(errors.Join(domain.ErrVersionStoreFailed, err), "path", filename)
	}
	if err := os.Rename(tmp, filename); err != nil {
		_ = os.Remove(tmp)
		return "", zerr.With(errors.Join(domain.ErrVersionStoreFailed, err), "path", filename)
	}
	return h.ID, nil
}

// Read returns the stored definition of the named version.
func (s *Store) Read(gameDir, name string) ([]byte, error) {
	if !validName(name) {
		return nil, zerr.With(domain.ErrVersionJSONInvalid, "id", name)
	}
	filename := s.jsonPath(gameDir, name)
	//nolint:gosec // Path is built from the game directory and a validated name
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrVersionStoreFailed, err), "path", filename)
	}
	return data, nil
}

// Exists reports whether a definition for name is stored.
func (s *Store) Exists(gameDir, name string) bool {
	if !validName(name) {
		return false
	}
	_, err := os.Stat(s.jsonPath(gameDir, name))
	return err == nil
}

// JarPath returns where the named version's game jar lives.
func (s *Store) JarPath(gameDir, name string) string {
	return filepath.Join(gameDir, domain.VersionsDirName, name, name+".jar")
}

func (s *Store) jsonPath(gameDir, name string) string {
	return filepath.Join(gameDir, domain.VersionsDirName, name, name+".json")
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
