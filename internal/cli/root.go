package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MichalZajkowski/jira-build-health-action/internal/infra/logger"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app carries state shared by every subcommand of one invocation.
type app struct {
	debug     bool
	workspace string

	vip *viper.Viper

	ws      *workspaceCtx
	wsErr   error
	cleanup func() error
}

func newRootCmd() *cobra.Command {
	a := &app{vip: viper.New()}

	cmd := &cobra.Command{
		Use:          "buildhealth",
		Short:        "Score JUnit XML builds and publish a health report to Jira",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable verbose logging to .buildhealth/logs/buildhealth.log")
	cmd.PersistentFlags().StringVarP(&a.workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	installConfigFlag(cmd)

	cmd.AddCommand(
		analyzeCmd(a),
		showCmd(a),
		reportsCmd(a),
		historyCmd(a),
		browseCmd(a),
		initCmd(),
		versionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	// A broken .buildhealth.yaml must not keep `init --force` from repairing it,
	// so the error is only reported by commands that need the workspace.
	a.ws, a.wsErr = loadWorkspace(a.workspace)

	logRoot := ""
	if a.ws != nil && a.ws.found {
		logRoot = a.ws.root
	}

	cleanup, err := logger.Setup(logger.Config{
		Root:    logRoot,
		Debug:   a.debug,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		cleanup, _ = logger.Setup(logger.Config{Debug: a.debug, Console: cmd.ErrOrStderr()})
		logger.L().Warn("logger.file_unavailable", "root", logRoot, "error", err)
	}
	a.cleanup = cleanup

	if a.debug && logger.IsReady() == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Debug log: %s\n", logger.Path())
	}

	return initViperConfig(cmd, a.vip)
}

func (a *app) workspaceCtx() (*workspaceCtx, error) {
	if a.wsErr != nil {
		return nil, a.wsErr
	}
	return a.ws, nil
}

func (a *app) close() error {
	if a.cleanup == nil {
		return nil
	}
	err := a.cleanup()
	a.cleanup = nil
	return err
}
