// Package diff summarizes the file changes between a baseline tag and the
// branch tip.
package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/pkg/errors"

	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/repo"
)

// File is one changed file with its line counts.
type File struct {
	OldName      string `json:"old_name,omitempty"`
	NewName      string `json:"new_name,omitempty"`
	IsNew        bool   `json:"is_new,omitempty"`
	IsDeleted    bool   `json:"is_deleted,omitempty"`
	IsRenamed    bool   `json:"is_renamed,omitempty"`
	IsBinary     bool   `json:"is_binary,omitempty"`
	AddedLines   int    `json:"added"`
	DeletedLines int    `json:"deleted"`
}

// Name returns the display name for the file.
func (f *File) Name() string {
	if f.IsRenamed {
		return fmt.Sprintf("%s → %s", f.OldName, f.NewName)
	}
	if f.IsDeleted || f.NewName == "" {
		return f.OldName
	}
	return f.NewName
}

// Set holds the parsed diff for all files.
type Set struct {
	Files []*File `json:"files"`
}

// Stats returns aggregate statistics.
func (s *Set) Stats() (files, added, deleted int) {
	files = len(s.Files)
	for _, f := range s.Files {
		added += f.AddedLines
		deleted += f.DeletedLines
	}
	return
}

// Summary returns a git-style shortstat line.
func (s *Set) Summary() string {
	files, added, deleted := s.Stats()
	if files == 0 {
		return "no file changes"
	}
	return fmt.Sprintf("%d %s changed, %d %s(+), %d %s(-)",
		files, plural(files, "file", "files"),
		added, plural(added, "insertion", "insertions"),
		deleted, plural(deleted, "deletion", "deletions"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Parse reads a unified diff.
func Parse(raw string) (*Set, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parsing diff")
	}

	s := &Set{}
	for _, f := range parsed {
		df := &File{
			OldName:   f.OldName,
			NewName:   f.NewName,
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRenamed: f.IsRename,
			IsBinary:  f.IsBinary,
		}
		for _, frag := range f.TextFragments {
			df.AddedLines += int(frag.LinesAdded)
			df.DeletedLines += int(frag.LinesDeleted)
		}
		s.Files = append(s.Files, df)
	}
	return s, nil
}

// Between diffs two commits of d and parses the result.
func Between(d repo.Differ, from, to model.CommitRef) (*Set, error) {
	if from == to {
		return &Set{}, nil
	}
	raw, err := d.Diff(from, to)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
