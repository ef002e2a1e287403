//go:build !linux && !darwin && !freebsd

package fs

import (
	"os"

	"copydir/internal/domain"
)

// Without access(2) or an atime in the portable stat result, fall back to
// the modification time and the owner mode bits.
func fileTimes(path string) (domain.FileTimes, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileTimes{}, err
	}
	mod := info.ModTime()
	return domain.FileTimes{Access: mod, Modify: mod, Change: mod}, nil
}

func accessFlags(path string) (domain.AccessFlags, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.AccessFlags{}, err
	}
	perm := info.Mode().Perm()
	return domain.AccessFlags{
		Read:    perm&0o400 != 0,
		Write:   perm&0o200 != 0,
		Execute: perm&0o100 != 0,
	}, nil
}
