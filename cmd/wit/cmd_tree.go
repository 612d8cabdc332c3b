package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/wit/pkg/object"
)

func leafType(mode string) object.ObjectType {
	switch mode {
	case "040000", object.TreeModeDir:
		return object.TypeTree
	case object.TreeModeGitlink:
		return object.TypeCommit
	default:
		return object.TypeBlob
	}
}

func newLsTreeCmd(a *app) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] <tree>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			h, err := findObject(r, args[0], object.TypeTree)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if recursive {
				files, err := r.FlattenTree(h)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(out, "%s %s %s\t%s\n", f.Mode, leafType(f.Mode), f.Hash, f.Path)
				}
				return nil
			}

			obj, err := r.Read(h)
			if err != nil {
				return err
			}
			for _, leaf := range obj.(*object.Tree).Leaves {
				fmt.Fprintf(out, "%s %s %s\t%s\n", leaf.Mode, leafType(leaf.Mode), leaf.Hash, leaf.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}

func newWriteTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree [dir]",
		Short: "Store a directory as a tree object",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			dir := r.RootDir
			if len(args) > 0 {
				if dir, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}

			h, err := r.WriteTree(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newCheckoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <commit> <dir>",
		Short: "Materialize a commit or tree into an empty directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			h, err := findObject(r, args[0], object.TypeTree)
			if err != nil {
				return err
			}
			return r.Checkout(string(h), args[1])
		},
	}
}
