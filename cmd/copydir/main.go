package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"copydir/internal/app"
	"copydir/internal/config"
	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
	"copydir/internal/infra/exif"
	"copydir/internal/infra/fs"
	"copydir/internal/infra/media"
	"copydir/internal/logging"
	"copydir/internal/presentation"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "copydir",
		Short: "Mirror a directory tree, or describe every file in it",
		Long: `Copy the files of a source directory into a target directory, keeping
their relative layout and timestamps, or write a .info file per source file
holding its properties and image/audio/video metadata.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(mirrorCmd(domain.ModeCopy))
	rootCmd.AddCommand(mirrorCmd(domain.ModeInfo))
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.Execute(); err != nil {
		exitWithError(err, config.Verbose(rootCmd.PersistentFlags()))
	}
}

func mirrorCmd(mode domain.Mode) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy SOURCE TARGET",
		Short: "Copy files with their stat metadata into the target tree",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), args)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			return runMirror(cmd.Context(), cfg, mode)
		},
	}
	if mode == domain.ModeInfo {
		cmd.Use = "info SOURCE TARGET"
		cmd.Short = "Write a .info file with properties and metadata for each file"
	} else {
		cmd.Aliases = []string{"dir"}
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func showCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the properties and metadata of a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := presentation.ParseFormat(output)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}

			logger := logging.New(os.Stderr, config.Verbose(cmd.Flags()))
			defer logger.Sync()
			executor := newExecutor(logger)

			record, err := executor.Describe(cmd.Context(), args[0])
			if err != nil {
				if !appErrors.Is(err, appErrors.MetadataDecode) {
					return err
				}
				logger.Warnf("%s: %v", appErrors.UserMessage(err), err)
			}
			return presentation.RenderRecord(os.Stdout, record, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or yaml")
	return cmd
}

func newExecutor(logger logging.Logger) *app.Executor {
	return &app.Executor{
		FS:     fs.OSFS{},
		Image:  exif.Reader{},
		Media:  media.Reader{},
		Logger: logger,
	}
}

func runMirror(ctx context.Context, cfg config.Config, mode domain.Mode) error {
	if ctx == nil {
		ctx = context.Background()
	}
	terminal := isatty.IsTerminal(os.Stdout.Fd())
	interactive := terminal && !cfg.Plain

	var logWriter io.Writer = os.Stderr
	if interactive && !cfg.Verbose {
		logWriter = nil
	}
	logger := logging.New(logWriter, cfg.Verbose).WithRun()
	defer logger.Sync()

	req := app.Request{
		SourceDir: cfg.SourceDir,
		TargetDir: cfg.TargetDir,
		Extension: cfg.Extension,
		Recursive: cfg.Recursive,
		Mode:      mode,
	}
	planner := &app.Planner{FS: fs.OSFS{}, Logger: logger}
	executor := newExecutor(logger)

	if interactive {
		return runInteractive(ctx, cfg, req, planner, executor)
	}

	plan, err := planner.Plan(ctx, req)
	if err != nil {
		return err
	}

	printer := presentation.Printer{
		Writer:  os.Stdout,
		Verbose: cfg.Verbose,
		Clear:   terminal,
	}
	if cfg.DryRun {
		printer.PrintDryRun(plan)
		return nil
	}

	executor.OnFile = func(_, _ int, item domain.MirrorItem) {
		printer.PrintFile(item)
	}
	result, err := executor.Execute(ctx, plan)
	if err != nil {
		return err
	}
	printer.PrintSummary(plan, result)
	return nil
}

func exitWithError(err error, verbose bool) {
	color.New(color.FgRed).Fprintln(os.Stderr, appErrors.UserMessage(err))
	if verbose {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
	}
	os.Exit(1)
}
