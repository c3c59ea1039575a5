package project

import "fmt"

// FormatError reports a structurally invalid project file: wrong magic,
// missing image data, undecodable JSON or a malformed camera transform.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "fspy: " + e.Reason
}

// UnsupportedVersionError reports a project file version other than SupportedVersion
type UnsupportedVersionError struct {
	Version int32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("fspy: unsupported project file version %d", e.Version)
}

// MissingFieldError reports a required JSON field that is absent.
// Field is a dotted path such as "cameraParameters.imageWidth".
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("fspy: missing required field %q", e.Field)
}

// TruncatedInputError reports a stream that ended before a region declared
// by the header was fully read.
type TruncatedInputError struct {
	Region string
	Want   int64
	Got    int64
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("fspy: truncated %s: want %d bytes, got %d", e.Region, e.Want, e.Got)
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
