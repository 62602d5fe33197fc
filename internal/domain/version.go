package domain

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// describeSuffix matches the "-<n>-g<abbrev>" suffix git describe appends when
// HEAD is past the nearest tag.
var describeSuffix = regexp.MustCompile(`-(\d+)-g([0-9a-f]+)$`)

// Version wraps semver.Version for additional methods.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, err
	}
	return &Version{v}, nil
}

// ParseDescribeVersion parses `git describe` output such as "v2.16.0-rc0" or
// "v1.2.3-4-gabc1234". The commit distance and abbreviated hash are kept as
// build metadata.
func ParseDescribeVersion(describe string) (*Version, error) {
	tag := describe
	var build string
	if m := describeSuffix.FindStringSubmatch(describe); m != nil {
		tag = describe[:len(describe)-len(m[0])]
		build = m[1] + ".g" + m[2]
	}
	v, err := NewVersion(tag)
	if err != nil {
		return nil, fmt.Errorf("describe %q is not a version: %w", describe, err)
	}
	if build == "" {
		return v, nil
	}
	withBuild, err := v.SetMetadata(build)
	if err != nil {
		return nil, fmt.Errorf("invalid build metadata %q: %w", build, err)
	}
	return &Version{&withBuild}, nil
}

// Compare compares two versions.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// String returns the version string with v prefix.
func (v *Version) String() string {
	return "v" + v.Version.String()
}
