package domain

import (
	"strings"
	"time"
)

type FileTimes struct {
	Access time.Time
	Modify time.Time
	Change time.Time
}

// AccessFlags records which of read, write and execute the running process
// is allowed on a file.
type AccessFlags struct {
	Read    bool
	Write   bool
	Execute bool
}

func (a AccessFlags) String() string {
	letters := make([]string, 0, 3)
	if a.Read {
		letters = append(letters, "R")
	}
	if a.Write {
		letters = append(letters, "W")
	}
	if a.Execute {
		letters = append(letters, "X")
	}
	return strings.Join(letters, "-")
}
