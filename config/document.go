// Package config loads TOML documents into this module's Config types:
// the bump allocator, the object pool, both cache variants, and rotation
// policies. A section absent from the document stays nil and a field absent
// from a section keeps its zero value; this package applies no presets, so
// a caller that wants one picks it when a section is absent.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vanyastaff/nebula-memcache/allocator"
)

// Document is the root of a loaded TOML configuration file. Every section
// is a pointer so its absence from the file is distinguishable from its
// zero value.
type Document struct {
	Bump     *BumpSection     `toml:"bump"`
	Pool     *PoolSection     `toml:"pool"`
	Cache    *CacheSection    `toml:"cache"`
	Rotation *RotationSection `toml:"rotation"`
}

// Load reads and decodes the TOML file at path.
func Load(path string) (*Document, error) {
	var doc Document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: %v", err))
	}
	return &doc, nil
}

// parseDuration treats an empty string as "unset", returning 0 rather than
// erroring the way time.ParseDuration does on "".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
