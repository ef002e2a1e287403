package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"copydir/internal/app"
	"copydir/internal/config"
	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
	"copydir/internal/tui"
)

// runInteractive plans and executes the run behind the progress view. Files
// are still handled one at a time; the view only renders progress.
func runInteractive(ctx context.Context, cfg config.Config, req app.Request, planner *app.Planner, executor *app.Executor) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	model := tui.NewModel(tui.Config{
		SourceDir: cfg.SourceDir,
		TargetDir: cfg.TargetDir,
		Mode:      req.Mode,
		DryRun:    cfg.DryRun,
		Verbose:   cfg.Verbose,
		Execute: func(plan domain.MirrorPlan) tea.Cmd {
			return func() tea.Msg {
				executor.OnFile = func(current, total int, item domain.MirrorItem) {
					program.Send(tui.FileProgressMsg{Current: current, Total: total, Item: item})
				}
				result, err := executor.Execute(ctx, plan)
				if err != nil {
					return tui.ErrorMsg{Err: err}
				}
				return tui.DoneMsg{Result: result}
			}
		},
	})
	program = tea.NewProgram(model)

	planner.OnProgress = func(current, total int) {
		program.Send(tui.ScanProgressMsg{Current: current, Total: total})
	}
	go func() {
		plan, err := planner.Plan(ctx, req)
		if err != nil {
			program.Send(tui.ErrorMsg{Err: err})
			return
		}
		program.Send(tui.PlanReadyMsg{Plan: plan})
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok {
		if m.Err != nil {
			return m.Err
		}
		if m.Aborted() {
			return appErrors.Wrap(appErrors.Aborted, "run", cfg.SourceDir, context.Canceled)
		}
	}
	return nil
}
