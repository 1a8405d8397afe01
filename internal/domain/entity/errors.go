package entity

import "errors"

// ErrorKind вид ошибки сценария сканирования
type ErrorKind string

const (
	KindInvalidFileType  ErrorKind = "invalid_file_type"
	KindFileTooLarge     ErrorKind = "file_too_large"
	KindNotALeaf         ErrorKind = "not_a_leaf"
	KindServerRejected   ErrorKind = "server_rejected"
	KindUntrainedVariety ErrorKind = "untrained_variety"
	KindUnexpected       ErrorKind = "unexpected"
)

// ScanError ошибка, которая показывается пользователю и сохраняется в State.
type ScanError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *ScanError) Error() string {
	return e.Message
}

func (e *ScanError) Unwrap() error {
	return e.cause
}

// Is сравнивает ошибки по виду, чтобы errors.Is работал и для обёрток с причиной.
func (e *ScanError) Is(target error) bool {
	var t *ScanError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidFileType = &ScanError{
		Kind:    KindInvalidFileType,
		Message: "Please upload a valid image file (PNG, JPG, JPEG)",
	}
	ErrFileTooLarge = &ScanError{
		Kind:    KindFileTooLarge,
		Message: "File size must be less than 10MB",
	}
	ErrNotALeaf = &ScanError{
		Kind:    KindNotALeaf,
		Message: "This doesn't appear to be a grape leaf image. Please upload a clear image of a grape leaf for accurate disease detection.",
	}
	ErrServerRejected = &ScanError{
		Kind:    KindServerRejected,
		Message: "Server validation failed: This image does not contain a recognizable grape leaf. Please ensure the image shows a clear, well-lit grape leaf.",
	}
	ErrUntrainedVariety = &ScanError{
		Kind:    KindUntrainedVariety,
		Message: "This grape leaf variety or condition is not in our training dataset. Please try with a different image or contact support to expand our model.",
	}
	ErrUnexpected = &ScanError{
		Kind:    KindUnexpected,
		Message: "An error occurred during analysis",
	}
)

// Unexpected оборачивает произвольную ошибку в общую пользовательскую.
func Unexpected(cause error) *ScanError {
	return &ScanError{Kind: KindUnexpected, Message: ErrUnexpected.Message, cause: cause}
}

// FileTooLarge ошибка размера с текстом для настроенного лимита.
// errors.Is(err, ErrFileTooLarge) выполняется при любом лимите.
func FileTooLarge(maxSize int64) *ScanError {
	if maxSize == DefaultMaxUploadSize {
		return ErrFileTooLarge
	}
	return &ScanError{Kind: KindFileTooLarge, Message: "File size must be less than " + FormatLimit(maxSize)}
}

// AsScanError приводит ошибку к ScanError, неизвестные ошибки становятся KindUnexpected.
func AsScanError(err error) *ScanError {
	if err == nil {
		return nil
	}
	var se *ScanError
	if errors.As(err, &se) {
		return se
	}
	return Unexpected(err)
}

// Ошибки предусловий команд. В State не сохраняются.
var (
	ErrNoSelection    = errors.New("no image selected")
	ErrNotValidated   = errors.New("image has not passed validation")
	ErrScanInProgress = errors.New("analysis is already running")
)
