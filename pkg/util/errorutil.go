package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes shared across the migration run.
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeSourceFetchFailed = "SOURCE_FETCH_FAILED"
	CodeDataInvalid       = "DATA_INVALID"
	CodeWriteFailed       = "WRITE_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code     string
	Message  string
	ExitCode int
	Details  map[string]any
	Err      error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, exitCode int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, ExitCode: exitCode, Details: details}
}

func NewConfigError(message string, details map[string]any) error {
	return NewDomainError(CodeConfigInvalid, message, 2, details)
}

// NewMissingConfig reports every missing item by name, sorted for stable output.
func NewMissingConfig(missing []string) error {
	names := append([]string(nil), missing...)
	sort.Strings(names)
	return NewConfigError(
		"missing required environment variables: "+strings.Join(names, ", "),
		map[string]any{"missing": names},
	)
}

func NewSourceFetchError(source string, err error) error {
	return &DomainError{
		Code:     CodeSourceFetchFailed,
		Message:  fmt.Sprintf("fetch users from %s", source),
		ExitCode: 1,
		Details:  map[string]any{"source": source},
		Err:      err,
	}
}

func NewDataError(message string, details map[string]any) error {
	return NewDomainError(CodeDataInvalid, message, 1, details)
}

func NewWriteError(target string, err error) error {
	return &DomainError{
		Code:     CodeWriteFailed,
		Message:  fmt.Sprintf("write %s", target),
		ExitCode: 1,
		Details:  map[string]any{"target": target},
		Err:      err,
	}
}

func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:     CodeInternal,
		Message:  "internal error",
		ExitCode: 1,
		Err:      err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return ToDomainError(err).ExitCode
}
