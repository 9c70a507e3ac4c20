package domain

import (
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// LoaderVersionPrefix is the prefix of every loader version name in a game directory.
const LoaderVersionPrefix = "neoforge-"

// legacyMajorCutoff is the last loader major that encodes a "1.x" base version.
const legacyMajorCutoff = 21

var loaderVersionPattern = regexp.MustCompile(`^neoforge-([\w.\-+]+)$`)

// Channel is the stability classification of a loader release.
type Channel uint8

const (
	// ChannelStable marks a regular release.
	ChannelStable Channel = iota
	// ChannelBeta marks a release whose raw version ends in "-beta".
	ChannelBeta
)

// String returns the lowercase channel name.
func (c Channel) String() string {
	if c == ChannelBeta {
		return "beta"
	}
	return "stable"
}

// LoaderVersion is the normalized identity of a single loader release.
// It is immutable; the base version is derived from the raw string only.
type LoaderVersion struct {
	raw     string
	base    string
	channel Channel
}

// ResolveLoaderVersion recognizes a loader version name such as "neoforge-21.1.5".
// Names that do not carry the loader prefix are reported with ok=false; they
// belong to some other provider and are not an error.
func ResolveLoaderVersion(name string) (LoaderVersion, bool, error) {
	m := loaderVersionPattern.FindStringSubmatch(name)
	if m == nil {
		return LoaderVersion{}, false, nil
	}
	v, err := ParseLoaderVersion(m[1])
	if err != nil {
		return LoaderVersion{}, true, err
	}
	return v, true, nil
}

// ParseLoaderVersion parses a raw loader release string into its identity.
//
// Releases numbered "<major>.<minor>..." map onto the game version they target:
// majors above 21 use the year-based scheme ("25.1"), older majors are
// prefixed with "1." ("20.4" -> "1.20.4"). A trailing ".0" is dropped. A second
// "+"-separated segment becomes a "-<segment>" qualifier. Non-numeric leading
// components are kept verbatim, minus a leading "0.".
func ParseLoaderVersion(raw string) (LoaderVersion, error) {
	plusSegments := strings.Split(raw, "+")
	components := strings.Split(plusSegments[0], ".")
	if len(components) < 2 {
		return LoaderVersion{}, zerr.With(
			zerr.Wrap(ErrInvalidLoaderVersion, "expected at least two dot-separated components"),
			"version", raw,
		)
	}

	return LoaderVersion{
		raw:     raw,
		base:    deriveBaseVersion(components, plusSegments),
		channel: deriveChannel(raw),
	}, nil
}

func deriveBaseVersion(components, plusSegments []string) string {
	major, errMajor := strconv.Atoi(components[0])
	minor, errMinor := strconv.Atoi(components[1])

	if errMajor != nil || errMinor != nil {
		base := components[0] + "." + components[1]
		return strings.TrimPrefix(base, "0.")
	}

	var qualifier string
	if len(plusSegments) > 1 {
		qualifier = "-" + plusSegments[1]
	}

	var base string
	if major > legacyMajorCutoff {
		base = strconv.Itoa(major) + "." + strconv.Itoa(minor) + qualifier
	} else {
		base = "1." + strconv.Itoa(major) + "." + strconv.Itoa(minor) + qualifier
	}

	return strings.TrimSuffix(base, ".0")
}

func deriveChannel(raw string) Channel {
	if strings.HasSuffix(raw, "-beta") {
		return ChannelBeta
	}
	return ChannelStable
}

// Raw returns the release string exactly as published.
func (v LoaderVersion) Raw() string {
	return v.raw
}

// BaseVersion returns the game version this release targets.
func (v LoaderVersion) BaseVersion() string {
	return v.base
}

// Channel returns the release channel.
func (v LoaderVersion) Channel() Channel {
	return v.channel
}

// IsBeta reports whether the release is a beta.
func (v LoaderVersion) IsBeta() bool {
	return v.channel == ChannelBeta
}

// IsZero reports whether v is the zero LoaderVersion.
func (v LoaderVersion) IsZero() bool {
	return v.raw == ""
}

// VersionName returns the name the release is installed under in a game directory.
func (v LoaderVersion) VersionName() string {
	return LoaderVersionPrefix + v.raw
}

// String implements fmt.Stringer.
func (v LoaderVersion) String() string {
	return v.VersionName()
}
