package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/wit/pkg/object"
	"github.com/odvcencio/wit/pkg/repo"
)

func newTagCmd(a *app) *cobra.Command {
	var deleteTag string
	var verifyTag string
	var annotate bool
	var sign bool
	var keyPath string
	var message string
	var force bool
	var showHash bool

	cmd := &cobra.Command{
		Use:   "tag [name] [object]",
		Short: "List, create, delete or verify tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case strings.TrimSpace(deleteTag) != "":
				if len(args) > 0 {
					return fmt.Errorf("tag --delete does not accept positional args")
				}
				return r.DeleteTag(deleteTag)
			case strings.TrimSpace(verifyTag) != "":
				if len(args) > 0 {
					return fmt.Errorf("tag --verify does not accept positional args")
				}
				return runTagVerify(cmd, r, verifyTag)
			case len(args) == 0:
				return listTags(cmd, r, showHash)
			}

			name := args[0]
			targetName := "HEAD"
			if len(args) == 2 {
				targetName = args[1]
			}
			target, err := findObject(r, targetName, "")
			if err != nil {
				return fmt.Errorf("resolve %s: %w", targetName, err)
			}

			if !annotate && !sign && message == "" {
				return r.CreateTag(name, target, force)
			}

			var signer repo.TagSigner
			if sign {
				s, path, err := newSSHTagSigner(keyPath)
				if err != nil {
					return err
				}
				a.logger.Debug("signing tag", zap.String("key", path))
				signer = s
			}
			h, err := r.CreateAnnotatedTag(name, target, "", message, force, signer)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().StringVar(&verifyTag, "verify", "", "verify the signature of the named tag")
	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "create an annotated tag object")
	cmd.Flags().BoolVarP(&sign, "sign", "s", false, "sign the annotated tag with an SSH key")
	cmd.Flags().StringVar(&keyPath, "key", "", "SSH private key used with --sign (default ~/.ssh/id_*)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "tag message (implies --annotate)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing tag")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag target hashes when listing")
	return cmd
}

func listTags(cmd *cobra.Command, r *repo.Repo, showHash bool) error {
	names, err := r.ListTags()
	if err != nil {
		return err
	}
	for _, name := range names {
		if !showHash {
			fmt.Fprintln(cmd.OutOrStdout(), name)
			continue
		}
		h, err := r.ResolveTag(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h, name)
	}
	return nil
}

func runTagVerify(cmd *cobra.Command, r *repo.Repo, name string) error {
	h, err := r.ResolveTag(name)
	if err != nil {
		return err
	}
	obj, err := r.Read(h)
	if err != nil {
		return err
	}
	tag, ok := obj.(*object.Tag)
	if !ok {
		return fmt.Errorf("tag %q is lightweight and carries no signature", name)
	}

	fingerprint, err := verifyTagSignature(tag)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "good signature for tag %s from %s\n", name, fingerprint)
	return nil
}
