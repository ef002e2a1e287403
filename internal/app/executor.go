package app

import (
	"context"
	"errors"
	"path/filepath"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
	"copydir/internal/logging"
)

// FileFunc is called before each item is handled.
type FileFunc func(current, total int, item domain.MirrorItem)

type Executor struct {
	FS     FileSystem
	Image  MetadataExtractor
	Media  MetadataExtractor
	Logger logging.Logger
	OnFile FileFunc
}

// Execute runs the plan with the driver its mode selects.
func (e *Executor) Execute(ctx context.Context, plan domain.MirrorPlan) (domain.MirrorResult, error) {
	if plan.Mode == domain.ModeInfo {
		return e.Info(ctx, plan)
	}
	return e.Copy(ctx, plan)
}

// Copy mirrors every planned file byte for byte, carrying over its mode
// bits and timestamps.
func (e *Executor) Copy(ctx context.Context, plan domain.MirrorPlan) (domain.MirrorResult, error) {
	return e.run(ctx, plan, func(item domain.MirrorItem, dirs *targetDirs, result *domain.MirrorResult) error {
		flags, err := e.FS.Access(item.SourcePath)
		if err != nil {
			return appErrors.Wrap(appErrors.FileAccess, "access", item.SourcePath, err)
		}
		if !flags.Read {
			return appErrors.Wrap(appErrors.FileAccess, "access", item.SourcePath, errors.New("source is not readable"))
		}
		if err := dirs.ensure(item.TargetPath); err != nil {
			return err
		}
		if err := e.FS.CopyFile(item.SourcePath, item.TargetPath); err != nil {
			return err
		}
		result.BytesWritten += item.Size
		return nil
	})
}

// Info writes a .info sidecar for every planned file holding its
// properties and any format metadata, then stamps the sidecar with the
// source file's mode bits and timestamps.
func (e *Executor) Info(ctx context.Context, plan domain.MirrorPlan) (domain.MirrorResult, error) {
	return e.run(ctx, plan, func(item domain.MirrorItem, dirs *targetDirs, result *domain.MirrorResult) error {
		record, err := e.Describe(ctx, item.SourcePath)
		if err != nil {
			if !appErrors.Is(err, appErrors.MetadataDecode) {
				return err
			}
			warning := appErrors.UserMessage(err)
			result.Warnings = append(result.Warnings, warning)
			e.Logger.Warnf("%s: %v", warning, err)
		}

		if err := dirs.ensure(item.TargetPath); err != nil {
			return err
		}
		data := []byte(record.InfoText())
		if err := e.FS.WriteFileAtomic(item.TargetPath, data, 0o644); err != nil {
			return err
		}
		if err := e.FS.CopyStat(item.SourcePath, item.TargetPath); err != nil {
			return err
		}
		result.BytesWritten += int64(len(data))
		return nil
	})
}

// Describe builds the full record of one file. When the format metadata
// cannot be decoded the base record is still returned, together with the
// MetadataDecode error.
func (e *Executor) Describe(ctx context.Context, path string) (domain.FileRecord, error) {
	record, err := PropertyReader{FS: e.FS}.Properties(ctx, path)
	if err != nil {
		return domain.FileRecord{}, err
	}

	ext, _ := record.Get(FieldType)
	extractor := e.extractorFor(domain.KindForExtension(ext))
	if extractor == nil {
		return record, nil
	}

	extra, err := extractor.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.FileRecord{}, err
		}
		return record, appErrors.Wrap(appErrors.MetadataDecode, "extract", path, err)
	}
	record.Merge(extra)
	return record, nil
}

func (e *Executor) extractorFor(kind domain.MetadataKind) MetadataExtractor {
	switch kind {
	case domain.ImageMetadata:
		return e.Image
	case domain.AvMetadata:
		return e.Media
	default:
		return nil
	}
}

// targetDirs creates each target directory at most once per run.
type targetDirs struct {
	fs      FileSystem
	created map[string]bool
}

func (d *targetDirs) ensure(target string) error {
	dir := filepath.Dir(target)
	if d.created[dir] {
		return nil
	}
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "mkdir", dir, err)
	}
	d.created[dir] = true
	return nil
}

// itemFunc handles one item. It calls dirs.ensure once the source is known
// to be readable, so skipped files leave no directories behind.
type itemFunc func(item domain.MirrorItem, dirs *targetDirs, result *domain.MirrorResult) error

// run handles items one at a time in plan order. Source-side access errors
// skip the file; anything else stops the run.
func (e *Executor) run(ctx context.Context, plan domain.MirrorPlan, handle itemFunc) (domain.MirrorResult, error) {
	var result domain.MirrorResult
	if e.FS == nil {
		return result, errors.New("executor requires FS")
	}

	stop := e.Logger.Measure("Mirroring " + plan.Mode.String())
	defer stop()

	dirs := &targetDirs{fs: e.FS, created: map[string]bool{}}
	total := len(plan.Items)
	for i, item := range plan.Items {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		if e.OnFile != nil {
			e.OnFile(i+1, total, item)
		}

		if err := handle(item, dirs, &result); err != nil {
			if appErrors.Is(err, appErrors.FileAccess) {
				e.Logger.Verbosef("Skipping %s: %v", item.SourcePath, err)
				result.Failures = append(result.Failures, domain.FileFailure{Path: item.SourcePath, Err: err})
				continue
			}
			return result, err
		}
		result.Processed++
	}

	e.Logger.Verbosef("Processed %d of %d files (%d skipped, %d warnings)", result.Processed, total, len(result.Failures), len(result.Warnings))
	return result, nil
}
