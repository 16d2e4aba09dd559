// Package handlers provides HTTP handlers for the quiz service API.
package handlers

import (
	"net/http"

	contextutils "quizgen/internal/utils"

	"github.com/gin-gonic/gin"
)

// mapErrorCodeToHTTPStatus maps application error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code contextutils.ErrorCode) int {
	switch code {
	case contextutils.ErrorCodeInvalidInput,
		contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeValidationFailed:
		return http.StatusBadRequest
	case contextutils.ErrorCodeUnauthorized,
		contextutils.ErrorCodeInvalidCredentials:
		return http.StatusUnauthorized
	case contextutils.ErrorCodeRecordNotFound,
		contextutils.ErrorCodeQuizNotFound,
		contextutils.ErrorCodeQuestionNotFound:
		return http.StatusNotFound
	case contextutils.ErrorCodeRecordExists,
		contextutils.ErrorCodeConflict:
		return http.StatusConflict
	case contextutils.ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessageForCode returns the stable, non-leaking message served to API
// callers for a given error code. Underlying causes stay in the logs.
func errorMessageForCode(code contextutils.ErrorCode) string {
	switch code {
	case contextutils.ErrorCodeQuizNotFound:
		return "Quiz not found."
	case contextutils.ErrorCodeQuestionNotFound:
		return "Question not found."
	case contextutils.ErrorCodeGenerationFailed,
		contextutils.ErrorCodeCompletionRequestFailed,
		contextutils.ErrorCodeCompletionResponseInvalid,
		contextutils.ErrorCodeCompletionConfigInvalid:
		return "Failed to generate the quiz. Please try again."
	case contextutils.ErrorCodeSubmissionFailed:
		return "Failed to submit the quiz."
	case contextutils.ErrorCodeInvalidCredentials:
		return "Invalid email or password."
	case contextutils.ErrorCodeRecordExists:
		return "A user with this email already exists."
	case contextutils.ErrorCodeUnauthorized:
		return "Authorization token is required."
	default:
		return "Something went wrong. Please try again."
	}
}

// HandleAppError logs the full error and sends the caller a stable message
// with a status code derived from the error code.
func HandleAppError(c *gin.Context, err error) {
	code := contextutils.GetErrorCode(err)
	status := mapErrorCodeToHTTPStatus(code)

	if appErr, ok := err.(*contextutils.AppError); ok {
		_ = c.Error(appErr)
	} else {
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{"message": errorMessageForCode(code)})
}

// HandleValidationError reports a malformed or missing request field.
func HandleValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
