package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
)

// Names of the fields every record starts with, in output order.
const (
	FieldName         = "Name"
	FieldLocation     = "Location"
	FieldType         = "Type"
	FieldPermissions  = "Permissions"
	FieldSize         = "Size"
	FieldAccessTime   = "Access Time"
	FieldModifiedTime = "Modified Time"
	FieldChangeTime   = "Change Time"
)

type PropertyReader struct {
	FS FileSystem
}

// Properties builds the base record of a file from its stat data and the
// access the current process has to it.
func (p PropertyReader) Properties(ctx context.Context, path string) (domain.FileRecord, error) {
	if p.FS == nil {
		return domain.FileRecord{}, errors.New("property reader requires FS")
	}
	select {
	case <-ctx.Done():
		return domain.FileRecord{}, ctx.Err()
	default:
	}

	info, err := p.FS.Stat(path)
	if err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.FileAccess, "stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.FileAccess, "stat", path, fmt.Errorf("not a regular file"))
	}
	times, err := p.FS.Times(path)
	if err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.FileAccess, "stat", path, err)
	}
	access, err := p.FS.Access(path)
	if err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.FileAccess, "access", path, err)
	}
	location, err := filepath.Abs(path)
	if err != nil {
		return domain.FileRecord{}, appErrors.Wrap(appErrors.FileAccess, "abs", path, err)
	}

	name := filepath.Base(path)
	record := domain.NewFileRecord()
	record.Set(FieldName, name)
	record.Set(FieldLocation, location)
	record.Set(FieldType, domain.SplitExt(name))
	record.Set(FieldPermissions, access.String())
	record.Set(FieldSize, domain.FormatSize(info.Size()))
	record.Set(FieldAccessTime, domain.FormatTimestamp(times.Access))
	record.Set(FieldModifiedTime, domain.FormatTimestamp(times.Modify))
	record.Set(FieldChangeTime, domain.FormatTimestamp(times.Change))
	return record, nil
}
