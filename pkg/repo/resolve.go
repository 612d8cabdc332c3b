package repo

import (
	"errors"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/wit/pkg/object"
)

var hashPattern = regexp.MustCompile(`^[0-9A-Fa-f]{4,40}$`)

// Resolve turns a user-supplied name into candidate digests. It returns no
// candidates (and no error) for an empty name or for a prefix nothing in
// the store matches. A full 40-character digest is returned as given,
// lower-cased, without checking that the object exists.
func (r *Repo) Resolve(name string) ([]object.Hash, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if name == "HEAD" {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			return nil, object.WrapError(object.KindUnknownReference, err, "resolve HEAD")
		}
		return []object.Hash{h}, nil
	}

	if !hashPattern.MatchString(name) {
		return nil, nil
	}

	name = strings.ToLower(name)
	if len(name) == object.HashSize {
		return []object.Hash{object.Hash(name)}, nil
	}

	prefix, rest := name[:2], name[2:]
	dir, err := r.Dir(false, "objects", prefix)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, object.WrapError(object.KindIO, err, "resolve %s", name)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, object.WrapError(object.KindIO, err, "resolve %s", name)
	}

	var candidates []object.Hash
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), rest) {
			continue
		}
		h := object.Hash(prefix + e.Name())
		if !object.IsHash(string(h)) {
			continue
		}
		candidates = append(candidates, h)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	return candidates, nil
}

// Find resolves name to exactly one digest. With an empty kind the digest is
// returned as resolved. Otherwise the object must be of kind; when follow is
// set, tags are dereferenced to their object and commits to their tree (the
// latter only when a tree is wanted) until the kind matches.
func (r *Repo) Find(name string, kind object.ObjectType, follow bool) (object.Hash, error) {
	candidates, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	switch len(candidates) {
	case 0:
		return "", object.Errorf(object.KindUnknownReference, "no such reference %q", name)
	case 1:
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = string(c)
		}
		return "", object.Errorf(object.KindAmbiguousReference,
			"ambiguous reference %q: candidates are:\n - %s", name, strings.Join(names, "\n - "))
	}

	h := candidates[0]
	if kind == "" {
		return h, nil
	}

	visited := make(map[object.Hash]struct{})
	for {
		if _, ok := visited[h]; ok {
			return "", object.Errorf(object.KindUnknownObject, "reference %q: dereference cycle at %s", name, h)
		}
		visited[h] = struct{}{}

		obj, err := r.Read(h)
		if err != nil {
			return "", err
		}
		if obj.Type() == kind {
			r.log().Debug("reference found", zap.String("name", name), zap.String("hash", string(h)), zap.String("type", string(kind)))
			return h, nil
		}
		if !follow {
			return "", object.Errorf(object.KindUnknownObject, "reference %q: %s is a %s, not a %s", name, h, obj.Type(), kind)
		}

		var next object.Hash
		switch o := obj.(type) {
		case *object.Tag:
			next = o.Target()
		case *object.Commit:
			if kind == object.TypeTree {
				next = o.TreeHash()
			}
		}
		if next == "" {
			return "", object.Errorf(object.KindUnknownObject, "reference %q: cannot follow %s %s to a %s", name, obj.Type(), h, kind)
		}
		h = next
	}
}
