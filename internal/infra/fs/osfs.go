package fs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
)

const atomicWritePrefix = ".copydir-atomic-write-"

type OSFS struct{}

// Glob lists the entries under root whose name ends with suffix. The suffix
// is a glob fragment, so meta characters keep their glob meaning. Without
// recursion only direct children of root are considered. Like shell globbing,
// entries with a dot-prefixed name or below a dot-prefixed directory are
// not matched.
func (OSFS) Glob(root, suffix string, recursive bool) ([]string, error) {
	pattern := "*" + suffix
	if recursive {
		pattern = "**/" + pattern
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to match %q", pattern)
	}
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		if hidden(match) {
			continue
		}
		paths = append(paths, filepath.Join(root, filepath.FromSlash(match)))
	}
	return paths, nil
}

func hidden(match string) bool {
	for _, part := range strings.Split(match, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFS) Times(path string) (domain.FileTimes, error) {
	return fileTimes(path)
}

func (OSFS) Access(path string) (domain.AccessFlags, error) {
	return accessFlags(path)
}

// CopyFile copies the contents of src to dst and then carries over its
// permission bits and access/modification times.
func (o OSFS) CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return appErrors.Wrap(appErrors.FileAccess, "open", src, err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return appErrors.Wrap(appErrors.FileAccess, "stat", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "mkdir", filepath.Dir(dst), err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "create", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return appErrors.Wrap(appErrors.IOFailure, "copy", dst, errors.Wrap(err, "unable to copy file contents"))
	}
	if err := dstFile.Close(); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "close", dst, err)
	}

	return o.CopyStat(src, dst)
}

// CopyStat applies the mode bits and access/modification times of src to
// dst, leaving dst's contents alone.
func (OSFS) CopyStat(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return appErrors.Wrap(appErrors.FileAccess, "stat", src, err)
	}
	times, err := fileTimes(src)
	if err != nil {
		return appErrors.Wrap(appErrors.FileAccess, "stat", src, err)
	}

	if err := os.Chtimes(dst, times.Access, times.Modify); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "chtimes", dst, err)
	}
	mode := info.Mode() & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
	if err := os.Chmod(dst, mode); err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "chmod", dst, err)
	}
	return nil
}

// WriteFileAtomic writes data next to path under a temporary name and
// renames it into place, so readers never see a half-written file.
func (OSFS) WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), atomicWritePrefix)
	if err != nil {
		return appErrors.Wrap(appErrors.IOFailure, "write", path, errors.Wrap(err, "unable to create temporary file"))
	}

	if _, err = temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporary.Name())
		return appErrors.Wrap(appErrors.IOFailure, "write", path, errors.Wrap(err, "unable to write data to temporary file"))
	}

	if err = temporary.Close(); err != nil {
		os.Remove(temporary.Name())
		return appErrors.Wrap(appErrors.IOFailure, "write", path, errors.Wrap(err, "unable to close temporary file"))
	}

	if err = os.Chmod(temporary.Name(), perm); err != nil {
		os.Remove(temporary.Name())
		return appErrors.Wrap(appErrors.IOFailure, "write", path, errors.Wrap(err, "unable to change file permissions"))
	}

	if err = os.Rename(temporary.Name(), path); err != nil {
		os.Remove(temporary.Name())
		return appErrors.Wrap(appErrors.IOFailure, "write", path, errors.Wrap(err, "unable to rename file"))
	}
	return nil
}
