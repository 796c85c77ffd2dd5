package sferror

import "net/http"

// Tags used by the registry errors.
const (
	TagInvalidParameters = "invalid-parameters"
	TagNotFound          = "not-found"
	TagIllegalTransition = "illegal-transition"
)

type (
	// An SFError represents the error format that can be rendered by the registry server.
	SFError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if sferr, ok := err.(*SFError); ok {
		return sferr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new SFError with the given message.
func New(message string) *SFError {
	return &SFError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new SFError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *SFError {
	return &SFError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NotFound returns a new not found SFError with the given message.
func NotFound(message string) *SFError {
	return NewWithTagCode(http.StatusNotFound, TagNotFound, message)
}

// InvalidParameters returns a new bad request SFError with the given message.
func InvalidParameters(message string) *SFError {
	return NewWithTagCode(http.StatusBadRequest, TagInvalidParameters, message)
}

// Error implements error interface.
func (e *SFError) Error() string {
	return e.FieldError.Message
}
