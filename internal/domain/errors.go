package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure. The set is closed.
type ErrorKind int

const (
	// KindIO is a local filesystem or process-launch failure
	KindIO ErrorKind = iota + 1
	// KindURLParse means the input is not a syntactically valid URL
	KindURLParse
	// KindGitClone means branch listing or cloning failed, timed out, or no branch qualified
	KindGitClone
	// KindInvalidURL means the URL parsed but cannot be used (too few segments, missing folder)
	KindInvalidURL
)

// Sentinel errors, one per kind, for use with errors.Is
var (
	// ErrIO matches any KindIO FetchError
	ErrIO = errors.New("IO error")

	// ErrURLParse matches any KindURLParse FetchError
	ErrURLParse = errors.New("URL parse error")

	// ErrGitClone matches any KindGitClone FetchError
	ErrGitClone = errors.New("Git clone error")

	// ErrInvalidURL matches any KindInvalidURL FetchError
	ErrInvalidURL = errors.New("Invalid URL error")
)

// String returns the display prefix of the kind
func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindURLParse:
		return ErrURLParse
	case KindGitClone:
		return ErrGitClone
	case KindInvalidURL:
		return ErrInvalidURL
	}
	return nil
}

// FetchError is the single error type surfaced by a snapshot fetch
type FetchError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind
func (e *FetchError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// NewIOError creates a KindIO FetchError
func NewIOError(message string, err error) *FetchError {
	return &FetchError{Kind: KindIO, Message: message, Err: err}
}

// NewURLParseError creates a KindURLParse FetchError
func NewURLParseError(message string, err error) *FetchError {
	return &FetchError{Kind: KindURLParse, Message: message, Err: err}
}

// NewGitCloneError creates a KindGitClone FetchError
func NewGitCloneError(message string, err error) *FetchError {
	return &FetchError{Kind: KindGitClone, Message: message, Err: err}
}

// NewInvalidURLError creates a KindInvalidURL FetchError
func NewInvalidURLError(message string) *FetchError {
	return &FetchError{Kind: KindInvalidURL, Message: message}
}

// KindOf returns the kind of the first FetchError in err's chain, or 0
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
