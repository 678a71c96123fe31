package dragdrop

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for an empty or malformed drag path.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat is returned when the OS asks for a format other than CF_HDROP.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedMedium is returned when CF_HDROP is requested without TYMED_HGLOBAL.
	ErrUnsupportedMedium = fmt.Errorf("%w: medium", ErrUnsupportedFormat)
	ErrNotImplemented    = errors.New("not implemented")
	ErrNoInterface       = errors.New("no such interface")
	// ErrOSCall matches every *OSError.
	ErrOSCall = errors.New("os call failed")
	// ErrCleanup matches every *CleanupError.
	ErrCleanup             = errors.New("cleanup failed")
	ErrUnsupportedPlatform = errors.New("native drag and drop is not supported on this platform")
)

// OSError reports a failed native call together with its result code.
type OSError struct {
	Op   string
	Code HResult
	Err  error
}

func (e *OSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed with %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed with %s", e.Op, e.Code)
}

func (e *OSError) Unwrap() error { return e.Err }

func (e *OSError) Is(target error) bool { return target == ErrOSCall }

// CleanupError reports a temp file that could not be deleted after a drag.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("remove %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

func (e *CleanupError) Is(target error) bool { return target == ErrCleanup }

// HResultOf maps an error returned by a DataProvider or FeedbackSource method
// to the code handed back across the COM boundary.
func HResultOf(err error) HResult {
	if err == nil {
		return S_OK
	}
	var osErr *OSError
	switch {
	case errors.As(err, &osErr):
		return osErr.Code
	case errors.Is(err, ErrUnsupportedMedium):
		return DV_E_TYMED
	case errors.Is(err, ErrUnsupportedFormat):
		return DV_E_FORMATETC
	case errors.Is(err, ErrNotImplemented):
		return E_NOTIMPL
	case errors.Is(err, ErrNoInterface):
		return E_NOINTERFACE
	case errors.Is(err, ErrInvalidArgument):
		return E_INVALIDARG
	}
	return E_FAIL
}
