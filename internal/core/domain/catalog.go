package domain

import (
	"maps"

	"go.trai.ch/zerr"
)

// Catalog indexes the published loader releases.
//
// It is built once from a release-chronological sequence and never re-sorted:
// "latest" always means "appeared last in the input". A Catalog is read-only
// after construction and safe for concurrent readers.
type Catalog struct {
	versions          []LoaderVersion
	byBase            map[string][]LoaderVersion
	bases             []string
	latestByBase      map[string]LoaderVersion
	recommendedByBase map[string]LoaderVersion
	byRaw             map[string]LoaderVersion
	latest            LoaderVersion
	recommended       LoaderVersion
	hasRecommended    bool
}

// NewCatalog builds a Catalog from versions ordered oldest to newest.
// It returns ErrEmptyCatalog when versions is empty.
func NewCatalog(versions []LoaderVersion) (*Catalog, error) {
	if len(versions) == 0 {
		return nil, zerr.Wrap(ErrEmptyCatalog, "no loader releases to index")
	}

	c := &Catalog{
		versions:          make([]LoaderVersion, len(versions)),
		byBase:            make(map[string][]LoaderVersion),
		latestByBase:      make(map[string]LoaderVersion),
		recommendedByBase: make(map[string]LoaderVersion),
		byRaw:             make(map[string]LoaderVersion, len(versions)),
	}
	copy(c.versions, versions)

	for _, v := range c.versions {
		base := v.BaseVersion()
		if _, seen := c.byBase[base]; !seen {
			c.bases = append(c.bases, base)
		}
		c.byBase[base] = append(c.byBase[base], v)
		c.latestByBase[base] = v
		if !v.IsBeta() {
			c.recommendedByBase[base] = v
			c.recommended = v
			c.hasRecommended = true
		}
		c.byRaw[v.Raw()] = v
	}
	c.latest = c.versions[len(c.versions)-1]

	return c, nil
}

// Len returns the number of indexed releases.
func (c *Catalog) Len() int {
	return len(c.versions)
}

// Versions returns the releases targeting base, oldest first.
func (c *Catalog) Versions(base string) []LoaderVersion {
	list := c.byBase[base]
	out := make([]LoaderVersion, len(list))
	copy(out, list)
	return out
}

// At returns the index-th release targeting base.
func (c *Catalog) At(base string, index int) (LoaderVersion, bool) {
	list := c.byBase[base]
	if index < 0 || index >= len(list) {
		return LoaderVersion{}, false
	}
	return list[index], true
}

// Bases returns the known base game versions in order of first appearance.
func (c *Catalog) Bases() []string {
	out := make([]string, len(c.bases))
	copy(out, c.bases)
	return out
}

// Latest returns the last release of the input sequence.
func (c *Catalog) Latest() LoaderVersion {
	return c.latest
}

// LatestFor returns the last release targeting base.
func (c *Catalog) LatestFor(base string) (LoaderVersion, bool) {
	v, ok := c.latestByBase[base]
	return v, ok
}

// Recommended returns the last non-beta release of the input sequence.
// ok is false when every release is a beta.
func (c *Catalog) Recommended() (LoaderVersion, bool) {
	return c.recommended, c.hasRecommended
}

// RecommendedFor returns the last non-beta release targeting base.
func (c *Catalog) RecommendedFor(base string) (LoaderVersion, bool) {
	v, ok := c.recommendedByBase[base]
	return v, ok
}

// Lookup finds a release by its raw version string.
func (c *Catalog) Lookup(raw string) (LoaderVersion, bool) {
	v, ok := c.byRaw[raw]
	return v, ok
}

// LatestByBase returns a copy of the latest-per-base index.
func (c *Catalog) LatestByBase() map[string]LoaderVersion {
	return maps.Clone(c.latestByBase)
}

// RecommendedByBase returns a copy of the recommended-per-base index.
func (c *Catalog) RecommendedByBase() map[string]LoaderVersion {
	return maps.Clone(c.recommendedByBase)
}
