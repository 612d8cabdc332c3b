package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/wit/pkg/object"
)

// CommitTree writes a commit object for tree with the given parents and
// returns its hash. Refs are not touched. An empty author falls back to the
// configured user, then to "unknown".
func (r *Repo) CommitTree(tree object.Hash, parents []object.Hash, author, message string) (object.Hash, error) {
	return r.commitTreeAt(tree, parents, author, message, time.Now())
}

func (r *Repo) commitTreeAt(tree object.Hash, parents []object.Hash, author, message string, now time.Time) (object.Hash, error) {
	treeHash, err := r.Find(string(tree), object.TypeTree, true)
	if err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}

	commit := object.NewCommit(r)
	commit.KVLM.Add("tree", string(treeHash))
	for _, p := range parents {
		ph, err := r.Find(string(p), object.TypeCommit, true)
		if err != nil {
			return "", fmt.Errorf("commit tree: parent %s: %w", p, err)
		}
		commit.KVLM.Add("parent", string(ph))
	}

	stamp := fmt.Sprintf("%s %d %s", r.identity(author), now.Unix(), formatTimezoneOffset(now))
	commit.KVLM.Add("author", stamp)
	commit.KVLM.Add("committer", stamp)
	commit.KVLM.Message = normalizeMessage(message)

	h, err := r.Write(commit)
	if err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	return h, nil
}

func (r *Repo) identity(who string) string {
	if who = strings.TrimSpace(who); who != "" {
		return who
	}
	if r.Config != nil {
		if id := r.Config.Identity(); id != "" {
			return id
		}
	}
	return "unknown"
}

func normalizeMessage(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}
	return message + "\n"
}

func formatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}
