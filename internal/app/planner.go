package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
	"copydir/internal/logging"
)

// ProgressFunc is called during scanning to report progress
type ProgressFunc func(current, total int)

type Request struct {
	SourceDir string
	TargetDir string
	Extension string
	Recursive bool
	Mode      domain.Mode
}

type Planner struct {
	FS         FileSystem
	Logger     logging.Logger
	OnProgress ProgressFunc
}

// Plan lists the regular files under the source directory that match the
// request and works out where each one lands in the target tree. Nothing is
// written.
func (p *Planner) Plan(ctx context.Context, req Request) (domain.MirrorPlan, error) {
	if p.FS == nil {
		return domain.MirrorPlan{}, errors.New("planner requires FS")
	}

	stop := p.Logger.Measure("Planning " + req.Mode.String())
	defer stop()

	info, err := p.FS.Stat(req.SourceDir)
	if err != nil {
		return domain.MirrorPlan{}, appErrors.Wrap(appErrors.NotFound, "stat", req.SourceDir, err)
	}
	if !info.IsDir() {
		return domain.MirrorPlan{}, appErrors.Wrap(appErrors.NotFound, "stat", req.SourceDir, fmt.Errorf("not a directory"))
	}

	paths, err := p.FS.Glob(req.SourceDir, req.Extension, req.Recursive)
	if err != nil {
		return domain.MirrorPlan{}, appErrors.Wrap(appErrors.Internal, "glob", req.SourceDir, err)
	}
	sort.Strings(paths)
	p.Logger.Verbosef("Found %d candidate entries in %s (extension %q, recursive %t)", len(paths), req.SourceDir, req.Extension, req.Recursive)

	plan := domain.MirrorPlan{
		Mode:      req.Mode,
		SourceDir: req.SourceDir,
		TargetDir: req.TargetDir,
	}

	total := len(paths)
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return domain.MirrorPlan{}, ctx.Err()
		default:
		}
		if p.OnProgress != nil {
			p.OnProgress(i+1, total)
		}

		entry, err := p.FS.Stat(path)
		if err != nil || !entry.Mode().IsRegular() {
			plan.Skipped++
			continue
		}

		rel, err := domain.RelativePath(req.SourceDir, path)
		if err != nil {
			plan.Skipped++
			p.Logger.Verbosef("Skipping %s: %v", path, err)
			continue
		}
		target, err := domain.MapTarget(req.SourceDir, req.TargetDir, path, req.Mode)
		if err != nil {
			plan.Skipped++
			p.Logger.Verbosef("Skipping %s: %v", path, err)
			continue
		}

		if exists, _ := p.FS.Exists(target); exists {
			plan.Overwrites++
		}

		plan.Items = append(plan.Items, domain.MirrorItem{
			SourcePath:   path,
			RelativePath: rel,
			TargetPath:   target,
			Size:         entry.Size(),
		})
		plan.TotalBytes += entry.Size()
	}

	p.Logger.Verbosef("Planned %d items, %d skipped, %d overwrites", len(plan.Items), plan.Skipped, plan.Overwrites)
	return plan, nil
}
