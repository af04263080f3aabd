package release

import (
	"fmt"
	"strings"

	"github.com/sprite-ai/autotag/internal/model"
	"github.com/sprite-ai/autotag/internal/version"
)

// Notes builds the annotated tag message: a release line followed by one
// bullet per commit head.
func Notes(v version.Version, commits []model.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Release %s \n\n", v)
	for _, c := range commits {
		fmt.Fprintf(&b, "    * %s\n", strings.TrimSpace(c.Head()))
	}
	return b.String()
}
