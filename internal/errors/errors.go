package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	InvalidConfig  Kind = "invalid_config"
	NotFound       Kind = "not_found"
	FileAccess     Kind = "file_access"
	MetadataDecode Kind = "metadata_decode"
	IOFailure      Kind = "io_failure"
	Aborted        Kind = "aborted"
	Internal       Kind = "internal"
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// KindOf reports the kind of the outermost AppError in err's chain, or
// Internal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func UserMessage(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case NotFound:
		return "Error: Input Directory doesn't exist."
	case FileAccess:
		return fmt.Sprintf("Cannot access file: %s", appErr.Path)
	case MetadataDecode:
		return fmt.Sprintf("Metadata read failed: %s", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", appErr.Path, appErr.Err)
	case Aborted:
		return "Aborted before all files were processed."
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}
