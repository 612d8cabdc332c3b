package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/odvcencio/wit/pkg/object"
)

// TreeFileEntry is one non-tree leaf in a flattened tree.
type TreeFileEntry struct {
	Path string // slash-separated, relative to the tree root
	Mode string
	Hash object.Hash
}

// WriteTree stores the contents of dir as blobs and trees and returns the
// root tree hash. The .wit and .git directories are skipped.
func (r *Repo) WriteTree(dir string) (object.Hash, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", object.WrapError(object.KindIO, err, "write tree %s", dir)
	}

	tree := object.NewTree(r)
	for _, e := range entries {
		name := e.Name()
		if name == ".wit" || name == ".git" {
			continue
		}
		full := filepath.Join(dir, name)
		info, err := os.Lstat(full)
		if err != nil {
			return "", object.WrapError(object.KindIO, err, "write tree %s", full)
		}

		mode := modeFromFileInfo(info)
		var h object.Hash
		switch mode {
		case object.TreeModeDir:
			h, err = r.WriteTree(full)
		case object.TreeModeSymlink:
			var target string
			target, err = os.Readlink(full)
			if err == nil {
				h, err = r.Write(object.NewBlob(r, []byte(target)))
			}
		default:
			h, err = object.HashFile(r, full, object.TypeBlob, true)
		}
		if err != nil {
			return "", fmt.Errorf("write tree %s: %w", full, err)
		}
		tree.Leaves = append(tree.Leaves, object.TreeLeaf{Mode: mode, Path: name, Hash: h})
	}
	return r.Write(tree)
}

// FlattenTree walks the tree at h and returns every non-tree leaf with its
// full path, in stored order.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return r.flattenTreeRec(h, "")
}

func (r *Repo) flattenTreeRec(h object.Hash, prefix string) ([]TreeFileEntry, error) {
	obj, err := r.Read(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}
	tree, ok := obj.(*object.Tree)
	if !ok {
		return nil, object.Errorf(object.KindUnknownObject, "flatten tree: %s is a %s, not a tree", h, obj.Type())
	}

	var result []TreeFileEntry
	for _, leaf := range tree.Leaves {
		fullPath := path.Join(prefix, leaf.Path)
		if leaf.IsDir() {
			sub, err := r.flattenTreeRec(leaf.Hash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}
		result = append(result, TreeFileEntry{Path: fullPath, Mode: leaf.Mode, Hash: leaf.Hash})
	}
	return result, nil
}
