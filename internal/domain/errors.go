package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so copies made by
// WithError still satisfy errors.Is against the predefined values.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithMessage returns a copy with a caller facing message.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrInvalidDate = &AppError{
		Code:       "INVALID_DATE",
		Message:    "Date must use the YYYY-MM-DD format",
		StatusCode: 422,
	}

	// Users
	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found",
		StatusCode: 404,
	}

	ErrNoUsersRegistered = &AppError{
		Code:       "NO_USERS_REGISTERED",
		Message:    "No registered users found. Please register first",
		StatusCode: 409,
	}

	ErrFaceNotRecognized = &AppError{
		Code:       "FACE_NOT_RECOGNIZED",
		Message:    "Face not recognized. Please try again or register",
		StatusCode: 404,
	}

	// Capture
	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrCameraUnavailable = &AppError{
		Code:       "CAMERA_UNAVAILABLE",
		Message:    "Could not access webcam",
		StatusCode: 503,
	}

	ErrCaptureFailed = &AppError{
		Code:       "CAPTURE_FAILED",
		Message:    "Face capture failed, please try again",
		StatusCode: 422,
	}

	ErrCaptureInProgress = &AppError{
		Code:       "CAPTURE_IN_PROGRESS",
		Message:    "Another capture is using the camera",
		StatusCode: 409,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many capture requests",
		StatusCode: 429,
	}

	// Initialization
	ErrDetectorUnavailable = &AppError{
		Code:       "DETECTOR_UNAVAILABLE",
		Message:    "Face detector could not be loaded",
		StatusCode: 500,
	}

	ErrModelUnavailable = &AppError{
		Code:       "MODEL_UNAVAILABLE",
		Message:    "Face recognition models could not be loaded",
		StatusCode: 500,
	}
)
