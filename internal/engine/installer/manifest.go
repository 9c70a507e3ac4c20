package installer

import (
	"bufio"
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
)

// Manifest is a parsed jar manifest: a main section followed by named sections.
type Manifest struct {
	main     map[string]string
	sections map[string]map[string]string
}

// Main returns the value of key in the main section.
func (m *Manifest) Main(key string) (string, bool) {
	v, ok := m.main[strings.ToLower(key)]
	return v, ok
}

// Attribute returns the value of key in the section called name.
func (m *Manifest) Attribute(name, key string) (string, bool) {
	section, ok := m.sections[name]
	if !ok {
		return "", false
	}
	v, ok := section[strings.ToLower(key)]
	return v, ok
}

// ParseManifest reads the manifest format: "Key: value" lines, continuation
// lines starting with a single space, sections separated by blank lines and
// introduced by a Name attribute. Keys are case-insensitive.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{
		main:     make(map[string]string),
		sections: make(map[string]map[string]string),
	}

	current := m.main
	var lastKey string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), len(data)+1)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			// A blank line ends the current section.
			current = nil
			lastKey = ""
			continue
		}

		if strings.HasPrefix(line, " ") {
			if current == nil || lastKey == "" {
				return nil, manifestError("continuation without attribute", lineNo)
			}
			current[lastKey] += line[1:]
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok || key == "" {
			return nil, manifestError("missing ':' separator", lineNo)
		}
		value = strings.TrimPrefix(value, " ")
		lower := strings.ToLower(key)

		if current == nil {
			if lower != "name" {
				return nil, manifestError("section does not start with Name", lineNo)
			}
			current = make(map[string]string)
			m.sections[value] = current
		}
		current[lower] = value
		lastKey = lower
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(errors.Join(domain.ErrManifestParseFailed, err), "manifest scan failed")
	}

	// A continued Name value is only complete once the section is read.
	for name, section := range m.sections {
		if full := section["name"]; full != name {
			delete(m.sections, name)
			m.sections[full] = section
		}
	}
	return m, nil
}

func manifestError(reason string, line int) error {
	return zerr.With(zerr.Wrap(domain.ErrManifestParseFailed, reason), "line", line)
}

// serverMeansClient reports whether an installer of the given implementation
// version reads its server action as the client install. Installers from 2.2
// onward do; a missing version means an older installer.
func serverMeansClient(m *Manifest) (bool, error) {
	raw, ok := m.Attribute(installerSection, "Implementation-Version")
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil
	}

	major, minor, err := majorMinor(strings.TrimSpace(raw))
	if err != nil {
		return false, err
	}
	return major > 2 || (major == 2 && minor >= 2), nil
}

func majorMinor(raw string) (int, int, error) {
	if v, err := version.NewVersion(raw); err == nil {
		segments := v.Segments()
		return segments[0], segments[1], nil
	}

	// Dotted strings go-version rejects, such as "2.2.beta": only the first
	// two components matter and a missing one counts as zero.
	parts := strings.Split(raw, ".")
	values := [2]int{}
	for i := 0; i < len(parts) && i < 2; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, 0, zerr.With(zerr.Wrap(domain.ErrManifestParseFailed, "invalid installer version"), "version", raw)
		}
		values[i] = n
	}
	return values[0], values[1], nil
}
