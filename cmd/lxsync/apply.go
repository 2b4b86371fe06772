package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/lxsync/internal/config"
	"github.com/alexisbeaulieu97/lxsync/internal/logger"
	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
	"github.com/alexisbeaulieu97/lxsync/internal/reconcile"
)

type applyOptions struct {
	SpecPath string
	DryRun   bool
	Verbose  bool
	JSON     bool
}

var applyCmdRunner = runApply

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile an instance toward its declared state",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			opts.JSON = root.json || !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateApplyOptions(opts); err != nil {
				return err
			}

			return applyCmdRunner(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SpecPath, "file", "f", "", "Path to the instance spec file")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

// newPlanCmd is apply with dry-run forced on: it predicts the action plan
// without touching the instance.
func newPlanCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Predict the action plan without making changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DryRun = true
			opts.Verbose = root.verbose
			opts.JSON = root.json || !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateApplyOptions(opts); err != nil {
				return err
			}

			return applyCmdRunner(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SpecPath, "file", "f", "", "Path to the instance spec file")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func runApply(cmd *cobra.Command, opts applyOptions) error {
	doc, err := config.Parse(opts.SpecPath)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: !opts.JSON})
	if err != nil {
		return err
	}

	client, err := lxd.New(lxd.ServerConfig{
		URL:               doc.Server.URL,
		ClientCert:        doc.Server.ClientCert,
		ClientKey:         doc.Server.ClientKey,
		InstancesEndpoint: doc.Server.InstancesEndpoint,
	}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := reconcile.New(client, log)
	result, runErr := rec.Reconcile(ctx, specFromDocument(doc), opts.DryRun)

	out := cmd.OutOrStdout()
	if runErr != nil {
		if err := renderFailure(out, result, runErr, opts.JSON); err != nil {
			return err
		}
		return runErr
	}

	return renderResult(out, result, opts.DryRun, opts.JSON)
}
