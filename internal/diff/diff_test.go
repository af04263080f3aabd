package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/autotag/internal/testutil"
)

const sampleDiff = `diff --git a/hello.go b/hello.go
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/hello.go
@@ -0,0 +1,11 @@
+package main
+
+import "fmt"
+
+func main() {
+	fmt.Println("hello")
+}
+
+func add(a, b int) int {
+	return a + b
+}
diff --git a/readme.md b/readme.md
index abc1234..def5678 100644
--- a/readme.md
+++ b/readme.md
@@ -1,3 +1,4 @@
 # Project

-Old description
+New description
+Added line
`

func TestParse(t *testing.T) {
	s, err := Parse(sampleDiff)
	require.NoError(t, err)
	require.Len(t, s.Files, 2)

	f0 := s.Files[0]
	assert.True(t, f0.IsNew)
	assert.Equal(t, "hello.go", f0.Name())
	assert.Equal(t, 11, f0.AddedLines)

	f1 := s.Files[1]
	assert.Equal(t, "readme.md", f1.Name())
	assert.Equal(t, 2, f1.AddedLines)
	assert.Equal(t, 1, f1.DeletedLines)

	files, added, deleted := s.Stats()
	assert.Equal(t, 2, files)
	assert.Equal(t, 13, added)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, "2 files changed, 13 insertions(+), 1 deletion(-)", s.Summary())
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, s.Files)
	assert.Equal(t, "no file changes", s.Summary())
}

func TestBetween(t *testing.T) {
	r := testutil.NewRepo()
	c1 := r.Commit("master", "one")
	c2 := r.Commit("master", "two")

	s, err := Between(r, c1, c2)
	require.NoError(t, err)
	assert.Equal(t, "1 file changed, 1 insertion(+), 0 deletions(-)", s.Summary())

	s, err = Between(r, c2, c2)
	require.NoError(t, err)
	assert.Empty(t, s.Files)
}

func TestBetweenGit(t *testing.T) {
	g := testutil.NewGitRepo(t)
	c1 := g.Commit("one")
	g.Commit("two")
	c3 := g.Commit("three")

	s, err := Between(g.Git(), c1, c3)
	require.NoError(t, err)
	files, added, deleted := s.Stats()
	assert.Equal(t, 2, files)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, deleted)
	assert.True(t, s.Files[0].IsNew)
}
