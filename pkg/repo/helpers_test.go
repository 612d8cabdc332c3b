package repo

import (
	"bytes"
	"os"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/wit/pkg/object"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	require.NoError(t, err)
	return r
}

func writeBlob(t *testing.T, r *Repo, data string) object.Hash {
	t.Helper()
	h, err := r.Write(object.NewBlob(r, []byte(data)))
	require.NoError(t, err)
	return h
}

func writeTree(t *testing.T, r *Repo, leaves ...object.TreeLeaf) object.Hash {
	t.Helper()
	h, err := r.Write(object.NewTree(r, leaves...))
	require.NoError(t, err)
	return h
}

func writeCommit(t *testing.T, r *Repo, tree object.Hash, msg string, parents ...object.Hash) object.Hash {
	t.Helper()
	c := object.NewCommit(r)
	c.KVLM.Add("tree", string(tree))
	for _, p := range parents {
		c.KVLM.Add("parent", string(p))
	}
	c.KVLM.Add("author", "Test <test@example.com> 1700000000 +0000")
	c.KVLM.Message = msg + "\n"
	h, err := r.Write(c)
	require.NoError(t, err)
	return h
}

func writeTagObject(t *testing.T, r *Repo, target object.Hash, kind object.ObjectType, name string) object.Hash {
	t.Helper()
	tag := object.NewTag(r)
	tag.KVLM.Add("object", string(target))
	tag.KVLM.Add("type", string(kind))
	tag.KVLM.Add("tag", name)
	tag.KVLM.Message = name + "\n"
	h, err := r.Write(tag)
	require.NoError(t, err)
	return h
}

func fileLeaf(name string, h object.Hash) object.TreeLeaf {
	return object.TreeLeaf{Mode: object.TreeModeFile, Path: name, Hash: h}
}

func dirLeaf(name string, h object.Hash) object.TreeLeaf {
	return object.TreeLeaf{Mode: object.TreeModeDir, Path: name, Hash: h}
}

// storeRawUnder writes frame compressed at h's path without checking that
// frame hashes to h.
func storeRawUnder(t *testing.T, r *Repo, h object.Hash, frame []byte) {
	t.Helper()
	path, err := r.File(true, "objects", string(h[:2]), string(h[2:]))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err = zw.Write(frame)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}
