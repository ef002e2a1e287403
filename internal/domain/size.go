package domain

import (
	"errors"
	"fmt"
	"strings"
)

// TooLargeSize is written in place of a size above the largest unit.
const TooLargeSize = "Too Large File"

var ErrSizeTooLarge = errors.New("size exceeds 1024 PB")

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

const (
	sizeStep  = 1024.0
	sizeLimit = sizeStep * sizeStep * sizeStep * sizeStep * sizeStep
)

// ConvertSize scales size to the largest unit that keeps it below 1024.
// from names the unit size is expressed in; empty or unknown means bytes.
func ConvertSize(size float64, from string) (float64, string, error) {
	for i, unit := range sizeUnits {
		if strings.EqualFold(unit, from) {
			for ; i > 0; i-- {
				size *= sizeStep
			}
			break
		}
	}

	if size > sizeLimit {
		return 0, "", ErrSizeTooLarge
	}

	unit := 0
	for size >= sizeStep {
		size /= sizeStep
		unit++
	}
	return size, sizeUnits[unit], nil
}

func FormatSize(bytes int64) string {
	value, unit, err := ConvertSize(float64(bytes), "")
	if err != nil {
		return TooLargeSize
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}
