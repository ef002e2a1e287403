package app

import (
	"context"
	"io/fs"

	"copydir/internal/domain"
)

type FileSystem interface {
	Glob(root, suffix string, recursive bool) ([]string, error)
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	Times(path string) (domain.FileTimes, error)
	Access(path string) (domain.AccessFlags, error)
	CopyFile(src, dst string) error
	CopyStat(src, dst string) error
	WriteFileAtomic(path string, data []byte, perm fs.FileMode) error
}

// MetadataExtractor reads format-specific fields for a single file.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) (domain.FileRecord, error)
}
