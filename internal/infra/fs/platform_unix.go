//go:build linux || darwin || freebsd

package fs

import (
	"time"

	"golang.org/x/sys/unix"

	"copydir/internal/domain"
)

func fileTimes(path string) (domain.FileTimes, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return domain.FileTimes{}, err
	}
	return domain.FileTimes{
		Access: timespecToTime(st.Atim),
		Modify: timespecToTime(st.Mtim),
		Change: timespecToTime(st.Ctim),
	}, nil
}

func timespecToTime(ts unix.Timespec) time.Time {
	sec, nsec := ts.Unix()
	return time.Unix(sec, nsec)
}

// accessFlags asks the kernel whether the current process may read, write
// or execute path, which is not the same as reading its mode bits.
func accessFlags(path string) (domain.AccessFlags, error) {
	if err := unix.Access(path, unix.F_OK); err != nil {
		return domain.AccessFlags{}, err
	}
	return domain.AccessFlags{
		Read:    unix.Access(path, unix.R_OK) == nil,
		Write:   unix.Access(path, unix.W_OK) == nil,
		Execute: unix.Access(path, unix.X_OK) == nil,
	}, nil
}
