package repo

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/odvcencio/wit/pkg/object"
)

type graphEdge struct {
	child, parent object.Hash
}

// Graphviz writes one "c_<child> -> c_<parent>" line per parent link
// reachable from start. Commits already in seen are not expanded again, so
// a shared ancestor's history is written once and cycles terminate. seen is
// updated in place and may be reused across calls to extend the same graph.
//
// Lines come out in depth-first order: each edge is followed immediately by
// the history of its parent. A non-commit in the history aborts the walk;
// lines already written stay written.
func (r *Repo) Graphviz(w io.Writer, start object.Hash, seen map[object.Hash]struct{}) error {
	if seen == nil {
		seen = make(map[object.Hash]struct{})
	}

	var stack []graphEdge
	visit := func(h object.Hash) error {
		if _, ok := seen[h]; ok {
			return nil
		}
		seen[h] = struct{}{}

		obj, err := r.Read(h)
		if err != nil {
			return fmt.Errorf("graphviz: %w", err)
		}
		commit, ok := obj.(*object.Commit)
		if !ok {
			return object.Errorf(object.KindUnknownObject, "graphviz: cannot log %s, it is a %s", h, obj.Type())
		}

		parents := commit.Parents()
		for i := len(parents) - 1; i >= 0; i-- {
			stack = append(stack, graphEdge{child: h, parent: object.NormalizeHash(string(parents[i]))})
		}
		r.log().Debug("graphviz commit", zap.String("hash", string(h)), zap.Int("parents", len(parents)))
		return nil
	}

	if err := visit(object.NormalizeHash(string(start))); err != nil {
		return err
	}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, err := fmt.Fprintf(w, "c_%s -> c_%s\n", e.child, e.parent); err != nil {
			return object.WrapError(object.KindIO, err, "graphviz: write edge")
		}
		if err := visit(e.parent); err != nil {
			return err
		}
	}
	return nil
}
