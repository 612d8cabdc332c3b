package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/wit/pkg/object"
)

func newCommitTreeCmd(a *app) *cobra.Command {
	var parents []string
	var message string
	var author string
	var update string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p parent]... -m <message>",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			tree, err := findObject(r, args[0], object.TypeTree)
			if err != nil {
				return err
			}
			parentHashes := make([]object.Hash, 0, len(parents))
			for _, p := range parents {
				ph, err := findObject(r, p, object.TypeCommit)
				if err != nil {
					return fmt.Errorf("parent %s: %w", p, err)
				}
				parentHashes = append(parentHashes, ph)
			}

			h, err := r.CommitTree(tree, parentHashes, author, message)
			if err != nil {
				return err
			}
			if update != "" {
				if err := r.UpdateRef(update, h); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "author identity (defaults to user.name <user.email>)")
	cmd.Flags().StringVar(&update, "update-ref", "", "point this ref (e.g. refs/heads/main) at the new commit")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log [commit]",
		Short: "Print commit ancestry as a graphviz digraph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			name := "HEAD"
			if len(args) > 0 {
				name = args[0]
			}
			h, err := findObject(r, name, object.TypeCommit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "digraph wit{")
			if err := r.Graphviz(out, h, make(map[object.Hash]struct{})); err != nil {
				return err
			}
			fmt.Fprintln(out, "}")
			return nil
		},
	}
}
