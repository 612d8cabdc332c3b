package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/wit/pkg/object"
)

func readTree(t *testing.T, r *Repo, h object.Hash) *object.Tree {
	t.Helper()
	obj, err := r.Read(h)
	require.NoError(t, err)
	require.IsType(t, &object.Tree{}, obj)
	return obj.(*object.Tree)
}

func TestCheckoutTree_BlobAndSubtree(t *testing.T) {
	r := newTestRepo(t)
	b := writeBlob(t, r, "top level\n")
	inner := writeBlob(t, r, "nested\n")
	deeper := writeTree(t, r, fileLeaf("deep.txt", inner))
	sub := writeTree(t, r, fileLeaf("b.txt", inner), dirLeaf("deeper", deeper))
	root := writeTree(t, r, fileLeaf("a.txt", b), dirLeaf("sub", sub))

	dest := t.TempDir()
	require.NoError(t, r.CheckoutTree(readTree(t, r, root), dest))

	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "top level\n", string(data))

	data, err = os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested\n", string(data))

	data, err = os.ReadFile(filepath.Join(dest, "sub", "deeper", "deep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested\n", string(data))
}

func TestCheckoutTree_ExecutableAndSymlink(t *testing.T) {
	r := newTestRepo(t)
	script := writeBlob(t, r, "#!/bin/sh\necho hi\n")
	link := writeBlob(t, r, "run.sh")
	root := writeTree(t, r,
		object.TreeLeaf{Mode: object.TreeModeExecutable, Path: "run.sh", Hash: script},
		object.TreeLeaf{Mode: object.TreeModeSymlink, Path: "link", Hash: link},
	)

	dest := t.TempDir()
	require.NoError(t, r.CheckoutTree(readTree(t, r, root), dest))

	info, err := os.Stat(filepath.Join(dest, "run.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100)

	target, err := os.Readlink(filepath.Join(dest, "link"))
	require.NoError(t, err)
	assert.Equal(t, "run.sh", target)
}

func TestCheckoutTree_SymlinkThenSameNameStaysInsideDest(t *testing.T) {
	r := newTestRepo(t)
	outside := t.TempDir()
	link := writeBlob(t, r, outside)
	payload := writeBlob(t, r, "payload\n")
	sub := writeTree(t, r, fileLeaf("evil.txt", payload))

	tests := []struct {
		name   string
		second object.TreeLeaf
	}{
		{"subtree", dirLeaf("x", sub)},
		{"blob", fileLeaf("x", payload)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Trees read from the store cannot carry duplicates, so build
			// this one in memory.
			root := object.NewTree(r,
				object.TreeLeaf{Mode: object.TreeModeSymlink, Path: "x", Hash: link},
				tt.second,
			)

			err := r.CheckoutTree(root, t.TempDir())
			require.Error(t, err)
			assert.ErrorIs(t, err, object.ErrMalformedObject)

			entries, err := os.ReadDir(outside)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestCheckoutTree_RefusesExistingTarget(t *testing.T) {
	r := newTestRepo(t)
	outside := t.TempDir()
	payload := writeBlob(t, r, "payload\n")
	sub := writeTree(t, r, fileLeaf("evil.txt", payload))

	tests := []struct {
		name string
		leaf object.TreeLeaf
	}{
		{"subtree", dirLeaf("x", sub)},
		{"blob", fileLeaf("x", payload)},
		{"symlink", object.TreeLeaf{Mode: object.TreeModeSymlink, Path: "x", Hash: payload}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := t.TempDir()
			require.NoError(t, os.Symlink(outside, filepath.Join(dest, "x")))
			root := writeTree(t, r, tt.leaf)

			err := r.CheckoutTree(readTree(t, r, root), dest)
			require.Error(t, err)
			assert.ErrorIs(t, err, object.ErrIO)
			assert.ErrorContains(t, err, "already exists")

			entries, err := os.ReadDir(outside)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestCheckoutTree_FileModeDisabled(t *testing.T) {
	r := newTestRepo(t)
	r.Config.Core.FileMode = false
	script := writeBlob(t, r, "#!/bin/sh\n")
	root := writeTree(t, r, object.TreeLeaf{Mode: object.TreeModeExecutable, Path: "run.sh", Hash: script})

	dest := t.TempDir()
	require.NoError(t, r.CheckoutTree(readTree(t, r, root), dest))

	info, err := os.Stat(filepath.Join(dest, "run.sh"))
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&0o111)
}

func TestCheckoutTree_RejectsTagAndCommitLeaves(t *testing.T) {
	r := newTestRepo(t)
	empty := writeTree(t, r)
	commit := writeCommit(t, r, empty, "initial")
	tag := writeTagObject(t, r, commit, object.TypeCommit, "v1")

	tests := []struct {
		name string
		leaf object.TreeLeaf
		kind string
	}{
		{"tag", fileLeaf("tagged", tag), "tag"},
		{"commit", object.TreeLeaf{Mode: object.TreeModeGitlink, Path: "module", Hash: commit}, "commit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok := writeBlob(t, r, "fine")
			root := writeTree(t, r, fileLeaf("a.txt", ok), tt.leaf)

			dest := t.TempDir()
			err := r.CheckoutTree(readTree(t, r, root), dest)
			require.Error(t, err)
			assert.ErrorIs(t, err, object.ErrUnknownObject)
			assert.Contains(t, err.Error(), tt.kind)
			assert.Contains(t, err.Error(), tt.leaf.Path)

			// Leaves before the failure stay written.
			_, statErr := os.Stat(filepath.Join(dest, "a.txt"))
			assert.NoError(t, statErr)
		})
	}
}

func TestCheckoutTree_MissingLeaf(t *testing.T) {
	r := newTestRepo(t)
	root := writeTree(t, r, fileLeaf("gone.txt", object.HashObject(object.TypeBlob, []byte("never stored"))))

	err := r.CheckoutTree(readTree(t, r, root), t.TempDir())
	assert.ErrorIs(t, err, object.ErrIO)
}

func TestCheckout_FollowsCommitAndRequiresEmptyDest(t *testing.T) {
	r := newTestRepo(t)
	b := writeBlob(t, r, "hello\n")
	tree := writeTree(t, r, fileLeaf("hello.txt", b))
	commit := writeCommit(t, r, tree, "initial")
	tag := writeTagObject(t, r, commit, object.TypeCommit, "v1")

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, r.Checkout(string(tag), dest))
	data, err := os.ReadFile(filepath.Join(dest, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	err = r.Checkout(string(commit), dest)
	assert.ErrorContains(t, err, "not empty")

	notDir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notDir, nil, 0o644))
	assert.Error(t, r.Checkout(string(commit), notDir))

	assert.ErrorIs(t, r.Checkout(string(b), t.TempDir()), object.ErrUnknownObject)
}
