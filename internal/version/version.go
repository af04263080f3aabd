// Package version implements the semantic version value used for release
// tags: a MAJOR.MINOR.PATCH triple with total ordering and bump rules.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/model"
)

// ErrInvalidVersionFormat is returned when text does not parse as a
// canonical MAJOR.MINOR.PATCH version after prefix normalization.
var ErrInvalidVersionFormat = errors.New("invalid version format")

// DefaultPrefixes are stripped from tag names before parsing.
var DefaultPrefixes = []string{"v"}

// Version is an immutable semantic version.
type Version struct {
	major, minor, patch uint64
}

// New returns the version major.minor.patch.
func New(major, minor, patch uint64) Version {
	return Version{major: major, minor: minor, patch: patch}
}

// Initial is the version given to the first release of a repository.
func Initial() Version {
	return New(0, 0, 1)
}

// Normalize strips the first matching prefix from name. A nil prefixes
// slice means DefaultPrefixes; an empty non-nil slice strips nothing.
func Normalize(name string, prefixes []string) string {
	if prefixes == nil {
		prefixes = DefaultPrefixes
	}
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return name[len(p):]
		}
	}
	return name
}

// Parse normalizes text with prefixes and parses the remainder. Only the
// numeric core is accepted: pre-release and build metadata are rejected.
func Parse(text string, prefixes []string) (Version, error) {
	clean := Normalize(text, prefixes)
	sv, err := semver.StrictNewVersion(clean)
	if err != nil {
		return Version{}, errors.Wrapf(ErrInvalidVersionFormat, "%q: %v", text, err)
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, errors.Wrapf(ErrInvalidVersionFormat, "%q: pre-release and build metadata are not supported", text)
	}
	return fromSemver(sv), nil
}

// MustParse is like Parse with DefaultPrefixes but panics on error.
func MustParse(text string) Version {
	v, err := Parse(text, nil)
	if err != nil {
		panic(err)
	}
	return v
}

func fromSemver(sv *semver.Version) Version {
	return Version{major: sv.Major(), minor: sv.Minor(), patch: sv.Patch()}
}

func (v Version) semver() *semver.Version {
	return semver.New(v.major, v.minor, v.patch, "", "")
}

func (v Version) Major() uint64 { return v.major }
func (v Version) Minor() uint64 { return v.minor }
func (v Version) Patch() uint64 { return v.patch }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Compare returns -1, 0 or 1 comparing major, then minor, then patch.
func (v Version) Compare(o Version) int {
	return v.semver().Compare(o.semver())
}

// LessThan reports whether v sorts before o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports whether v and o are the same triple.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Bump returns the version following v for a change of the given kind.
// An invalid kind is a programming error and panics.
func (v Version) Bump(kind model.ChangeKind) Version {
	sv := v.semver()
	var next semver.Version
	switch kind {
	case model.Major:
		next = sv.IncMajor()
	case model.Minor:
		next = sv.IncMinor()
	case model.Patch:
		next = sv.IncPatch()
	default:
		panic(fmt.Sprintf("version: bump with invalid change kind %d", int(kind)))
	}
	return fromSemver(&next)
}

// Bump applies kind to current. A nil current is the bootstrap case and
// always yields 0.0.1, whatever the kind.
func Bump(current *Version, kind model.ChangeKind) Version {
	if current == nil {
		return Initial()
	}
	return current.Bump(kind)
}
