package installer

import (
	"bytes"
	"encoding/json"

	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/zerr"
)

// profile is the part of install_profile.json the transformer acts on.
type profile struct {
	// version is the version name the installer will create.
	version string
	// versionInfo is a complete version definition embedded by older installers.
	versionInfo json.RawMessage
}

func parseProfile(data []byte) (profile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return profile{}, zerr.With(zerr.Wrap(domain.ErrProfileParseFailed, err.Error()), "entry", profileEntry)
	}
	if fields == nil {
		return profile{}, zerr.With(zerr.Wrap(domain.ErrProfileParseFailed, "profile is not an object"), "entry", profileEntry)
	}

	var p profile
	if raw, ok := fields["version"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			p.version = s
		} else if !isNull(raw) {
			// Non-string scalars are taken by their textual form.
			p.version = string(bytes.TrimSpace(raw))
		}
	}
	if raw, ok := fields["versionInfo"]; ok && isObject(raw) {
		p.versionInfo = raw
	}
	return p, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
