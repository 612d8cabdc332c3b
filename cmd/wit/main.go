package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/wit/pkg/object"
	"github.com/odvcencio/wit/pkg/repo"
)

const version = "0.1.0-dev"

// app carries state shared by every subcommand.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "wit",
		Short:         "Content-addressed object store with git-compatible objects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newHashObjectCmd(a))
	root.AddCommand(newCatFileCmd(a))
	root.AddCommand(newRevParseCmd(a))
	root.AddCommand(newLsTreeCmd(a))
	root.AddCommand(newWriteTreeCmd(a))
	root.AddCommand(newCommitTreeCmd(a))
	root.AddCommand(newCheckoutCmd(a))
	root.AddCommand(newLogCmd(a))
	root.AddCommand(newTagCmd(a))
	root.AddCommand(newVerifyCmd(a))
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func (a *app) openRepo() (*repo.Repo, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}
	return r.WithLogger(a.logger.Named("repo")), nil
}

// findObject resolves name to a digest of the wanted kind. Branch and tag
// names are looked up as refs first; everything else goes to the resolver.
func findObject(r *repo.Repo, name string, kind object.ObjectType) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if name != "HEAD" && name != "" {
		for _, ref := range []string{name, "refs/tags/" + name} {
			if h, err := r.ResolveRef(ref); err == nil {
				name = string(h)
				break
			}
		}
	}
	return r.Find(name, kind, true)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wit %s\n", version)
		},
	}
}
