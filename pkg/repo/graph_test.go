package repo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/wit/pkg/object"
)

func edge(child, parent object.Hash) string {
	return "c_" + string(child) + " -> c_" + string(parent)
}

func lines(buf *bytes.Buffer) []string {
	out := strings.TrimSuffix(buf.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestGraphviz_LinearHistory(t *testing.T) {
	r := newTestRepo(t)
	tree := writeTree(t, r)
	c1 := writeCommit(t, r, tree, "one")
	c2 := writeCommit(t, r, tree, "two", c1)
	c3 := writeCommit(t, r, tree, "three", c2)

	var buf bytes.Buffer
	seen := make(map[object.Hash]struct{})
	require.NoError(t, r.Graphviz(&buf, c3, seen))

	assert.Equal(t, []string{edge(c3, c2), edge(c2, c1)}, lines(&buf))
	assert.Len(t, seen, 3)
}

func TestGraphviz_RootCommit(t *testing.T) {
	r := newTestRepo(t)
	c1 := writeCommit(t, r, writeTree(t, r), "root")

	var buf bytes.Buffer
	require.NoError(t, r.Graphviz(&buf, c1, nil))
	assert.Empty(t, buf.String())
}

func TestGraphviz_MergeExpandsSharedAncestorOnce(t *testing.T) {
	r := newTestRepo(t)
	tree := writeTree(t, r)
	root := writeCommit(t, r, tree, "root")
	base := writeCommit(t, r, tree, "base", root)
	left := writeCommit(t, r, tree, "left", base)
	right := writeCommit(t, r, tree, "right", base)
	merge := writeCommit(t, r, tree, "merge", left, right)

	var buf bytes.Buffer
	require.NoError(t, r.Graphviz(&buf, merge, nil))

	assert.Equal(t, []string{
		edge(merge, left),
		edge(left, base),
		edge(base, root),
		edge(merge, right),
		edge(right, base),
	}, lines(&buf))
}

func TestGraphviz_SeenSetIsShared(t *testing.T) {
	r := newTestRepo(t)
	tree := writeTree(t, r)
	c1 := writeCommit(t, r, tree, "one")
	c2 := writeCommit(t, r, tree, "two", c1)
	c3 := writeCommit(t, r, tree, "three", c2)

	seen := make(map[object.Hash]struct{})
	var first, second bytes.Buffer
	require.NoError(t, r.Graphviz(&first, c2, seen))
	require.NoError(t, r.Graphviz(&second, c3, seen))

	assert.Equal(t, []string{edge(c2, c1)}, lines(&first))
	assert.Equal(t, []string{edge(c3, c2)}, lines(&second))

	var third bytes.Buffer
	require.NoError(t, r.Graphviz(&third, c3, seen))
	assert.Empty(t, third.String())
}

func TestGraphviz_Cycle(t *testing.T) {
	r := newTestRepo(t)
	tree := writeTree(t, r)

	// Store a commit under a digest its own ancestor points back to.
	placeholder := object.NewCommit(r)
	placeholder.KVLM.Add("tree", string(tree))
	placeholder.KVLM.Message = "placeholder\n"
	a, err := object.Write(placeholder, false)
	require.NoError(t, err)

	b := writeCommit(t, r, tree, "b", a)
	cyclic := object.NewCommit(r)
	cyclic.KVLM.Add("tree", string(tree))
	cyclic.KVLM.Add("parent", string(b))
	data, err := cyclic.Serialize()
	require.NoError(t, err)
	storeRawUnder(t, r, a, object.Frame(object.TypeCommit, data))

	var buf bytes.Buffer
	require.NoError(t, r.Graphviz(&buf, b, nil))
	assert.Equal(t, []string{edge(b, a), edge(a, b)}, lines(&buf))
}

func TestGraphviz_NonCommitAborts(t *testing.T) {
	r := newTestRepo(t)
	tree := writeTree(t, r)
	c1 := writeCommit(t, r, tree, "one")
	bad := writeCommit(t, r, tree, "points at a tree", tree)
	top := writeCommit(t, r, tree, "top", c1, bad)

	var buf bytes.Buffer
	err := r.Graphviz(&buf, top, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, object.ErrUnknownObject)

	// Output before the failure is kept.
	assert.Equal(t, []string{edge(top, c1), edge(top, bad), edge(bad, tree)}, lines(&buf))

	err = r.Graphviz(&bytes.Buffer{}, tree, nil)
	assert.ErrorIs(t, err, object.ErrUnknownObject)
}
