package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/wit/pkg/object"
)

// Checkout resolves name to a tree (following tags and commits) and
// materializes it into dest. dest must not exist or be an empty directory.
func (r *Repo) Checkout(name, dest string) error {
	h, err := r.Find(name, object.TypeTree, true)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	obj, err := r.Read(h)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	info, err := os.Stat(dest)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("checkout: %s is not a directory", dest)
		}
		entries, err := os.ReadDir(dest)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("checkout: %s is not empty", dest)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("checkout: mkdir %s: %w", dest, err)
		}
	default:
		return fmt.Errorf("checkout: %w", err)
	}

	return r.CheckoutTree(obj.(*object.Tree), dest)
}

type checkoutItem struct {
	leaf object.TreeLeaf
	dest string
}

// CheckoutTree writes every leaf of tree under dest in the tree's stored
// order: blobs become files, subtrees become directories that are filled in
// turn. Any other kind of leaf aborts the checkout, as do duplicate leaf
// names and targets that already exist under dest. Files already written
// are left in place on failure.
func (r *Repo) CheckoutTree(tree *object.Tree, dest string) error {
	var stack []checkoutItem
	push := func(t *object.Tree, dir string) error {
		names := make(map[string]struct{}, len(t.Leaves))
		for _, leaf := range t.Leaves {
			if _, dup := names[leaf.Path]; dup {
				return object.Errorf(object.KindMalformedObject, "checkout %s: duplicate leaf %q", dir, leaf.Path)
			}
			names[leaf.Path] = struct{}{}
		}
		for i := len(t.Leaves) - 1; i >= 0; i-- {
			stack = append(stack, checkoutItem{leaf: t.Leaves[i], dest: dir})
		}
		return nil
	}
	if err := push(tree, dest); err != nil {
		return err
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		leaf := item.leaf
		if err := validateLeafPath(leaf.Path); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		target := filepath.Join(item.dest, leaf.Path)
		if _, err := os.Lstat(target); err == nil {
			return object.Errorf(object.KindIO, "checkout %s: path already exists", target)
		}

		obj, err := r.Read(leaf.Hash)
		if err != nil {
			return fmt.Errorf("checkout %s: %w", target, err)
		}

		switch o := obj.(type) {
		case *object.Blob:
			if err := r.writeLeaf(target, leaf.Mode, o.Data); err != nil {
				return fmt.Errorf("checkout: %w", err)
			}
			r.log().Debug("checkout file", zap.String("path", target), zap.String("hash", string(leaf.Hash)))
		case *object.Tree:
			if err := os.Mkdir(target, 0o755); err != nil {
				return object.WrapError(object.KindIO, err, "checkout mkdir %s", target)
			}
			if err := push(o, target); err != nil {
				return err
			}
		default:
			return object.Errorf(object.KindUnknownObject, "checkout %s: leaf is a %s, not a blob or tree", target, obj.Type())
		}
	}
	return nil
}

func (r *Repo) writeLeaf(path, mode string, data []byte) (retErr error) {
	if mode == object.TreeModeSymlink {
		if err := os.Symlink(string(data), path); err != nil {
			return object.WrapError(object.KindIO, err, "symlink %s", path)
		}
		return nil
	}

	perm := os.FileMode(0o644)
	if r.Config == nil || r.Config.Core.FileMode {
		perm = filePermFromMode(mode)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return object.WrapError(object.KindIO, err, "write %s", path)
	}
	defer func() {
		retErr = multierr.Append(retErr, f.Close())
	}()
	if _, err := f.Write(data); err != nil {
		return object.WrapError(object.KindIO, err, "write %s", path)
	}
	return nil
}

// validateLeafPath rejects leaf names that would escape the checkout root.
func validateLeafPath(p string) error {
	if p == "" || p == "." || p == ".." || strings.ContainsAny(p, "/\\\x00") {
		return object.Errorf(object.KindMalformedObject, "invalid tree leaf path %q", p)
	}
	return nil
}
