// Package model defines the core data types shared across autotag.
package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidChangeKind is returned when a change kind literal is not one of
// PATCH, MINOR or MAJOR.
var ErrInvalidChangeKind = errors.New("invalid change kind")

// ChangeKind is the magnitude of a change. Values are totally ordered:
// Patch < Minor < Major.
type ChangeKind int

const (
	Patch ChangeKind = iota
	Minor
	Major
)

// ChangeKinds lists the valid kinds in ascending order.
var ChangeKinds = []ChangeKind{Patch, Minor, Major}

func (k ChangeKind) String() string {
	switch k {
	case Patch:
		return "PATCH"
	case Minor:
		return "MINOR"
	case Major:
		return "MAJOR"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether k is one of the three named levels.
func (k ChangeKind) Valid() bool {
	return k >= Patch && k <= Major
}

// MarshalText implements encoding.TextMarshaler.
func (k ChangeKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.Wrapf(ErrInvalidChangeKind, "%d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ChangeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseChangeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseChangeKind parses one of the literals PATCH, MINOR or MAJOR.
func ParseChangeKind(s string) (ChangeKind, error) {
	for _, k := range ChangeKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return Patch, errors.Wrapf(ErrInvalidChangeKind, "%q (accepted: PATCH, MINOR, MAJOR)", s)
}

// Max returns the larger of two change kinds.
func Max(a, b ChangeKind) ChangeKind {
	if b > a {
		return b
	}
	return a
}

// CommitRef identifies a commit by its full hex hash.
type CommitRef string

// Short returns the abbreviated hash.
func (c CommitRef) Short() string {
	if len(c) > 7 {
		return string(c[:7])
	}
	return string(c)
}

// Commit is a read-only snapshot of a commit taken at invocation time.
type Commit struct {
	ID          CommitRef
	Message     string
	CommittedAt time.Time
}

// Head returns the first line of the commit message.
func (c Commit) Head() string {
	return FirstLine(c.Message)
}

// FirstLine returns s up to the first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
