package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/wit/pkg/object"
)

func parseObjectType(s string) (object.ObjectType, error) {
	t := object.ObjectType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", object.Errorf(object.KindUnknownObject, "unknown object type %q", s)
	}
	return t, nil
}

func newHashObjectCmd(a *app) *cobra.Command {
	var write bool
	var typeName string

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t type] <file>",
		Short: "Compute an object digest and optionally store the object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, err := parseObjectType(typeName)
			if err != nil {
				return err
			}

			var store object.Repository
			if write {
				r, err := a.openRepo()
				if err != nil {
					return err
				}
				store = r
			}

			h, err := object.HashFile(store, args[0], objType, write)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the repository")
	cmd.Flags().StringVarP(&typeName, "type", "t", string(object.TypeBlob), "object type")
	return cmd
}

func newCatFileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat-file <type> <object>",
		Short: "Print the payload of an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, err := parseObjectType(args[0])
			if err != nil {
				return err
			}
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			h, err := findObject(r, args[1], objType)
			if err != nil {
				return err
			}
			obj, err := r.Read(h)
			if err != nil {
				return err
			}
			data, err := obj.Serialize()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newRevParseCmd(a *app) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:   "rev-parse [--wit-type type] <name>",
		Short: "Resolve a name to a full object digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var objType object.ObjectType
			if typeName != "" {
				t, err := parseObjectType(typeName)
				if err != nil {
					return err
				}
				objType = t
			}
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			h, err := findObject(r, args[0], objType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVar(&typeName, "wit-type", "", "required object type (blob, commit, tag, tree)")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify loose object integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}

			report, err := object.Verify(r)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"ok: verified %d loose object(s) (%d blob, %d tree, %d commit, %d tag)\n",
				report.LooseObjects,
				report.ByType[object.TypeBlob],
				report.ByType[object.TypeTree],
				report.ByType[object.TypeCommit],
				report.ByType[object.TypeTag],
			)
			return nil
		},
	}
}
