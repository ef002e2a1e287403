package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// InfoSuffix is appended to a source file name to form its sidecar name.
const InfoSuffix = ".info"

// MapTarget places path, which must live under sourceRoot, at the same
// relative location under targetRoot.
func MapTarget(sourceRoot, targetRoot, path string, mode Mode) (string, error) {
	rel, err := RelativePath(sourceRoot, path)
	if err != nil {
		return "", err
	}
	target := filepath.Join(targetRoot, rel)
	if mode == ModeInfo {
		target += InfoSuffix
	}
	return target, nil
}

func RelativePath(sourceRoot, path string) (string, error) {
	root, err := filepath.Abs(sourceRoot)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not inside %s", path, sourceRoot)
	}
	return rel, nil
}

// SplitExt returns the extension of a file name including its dot. Leading
// dots are part of the stem, so ".bashrc" has no extension.
func SplitExt(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	return filepath.Ext(trimmed)
}
