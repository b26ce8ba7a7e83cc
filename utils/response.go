// File: /utils/response.go
package utils

import (
	"context"
	"errors"
	"net/http"

	"convoy-api/models"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      int            `json:"code,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Notice    *models.Notice `json:"notice,omitempty"`
}

type SuccessResponse struct {
	Message string         `json:"message"`
	Data    interface{}    `json:"data,omitempty"`
	Notice  *models.Notice `json:"notice,omitempty"`
}

// SendNotice answers an admin write with a success notice for the toast.
func SendNotice(c *gin.Context, status int, notice models.Notice, data interface{}) {
	c.JSON(status, SuccessResponse{
		Message: notice.Message,
		Data:    data,
		Notice:  &notice,
	})
}

// StatusForCode maps an AppError code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case models.CodeValidation, models.CodeInvalidStatus, models.CodeUnexpectedFields:
		return http.StatusBadRequest
	case models.CodeMissingFields, models.CodeInvalidYear, models.CodeNoEventSelected, models.CodeNoPhotoUploaded:
		return http.StatusUnprocessableEntity
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeNotFound, models.CodeConfirmationUnknown:
		return http.StatusNotFound
	case models.CodeConflict, models.CodeDuplicateSubmission, models.CodeConfirmationDenied:
		return http.StatusConflict
	case models.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case models.CodeInvalidType:
		return http.StatusUnsupportedMediaType
	case models.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c *gin.Context, err error) (int, ErrorResponse) {
	appErr, ok := models.AsAppError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			appErr = models.NewTimeoutError("The request took too long. Please try again.", err)
		} else {
			appErr = models.NewInternalError(err)
		}
	}

	status := StatusForCode(appErr.Code)
	if status >= http.StatusInternalServerError {
		Logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path,
			"code", appErr.Code,
			"error", err.Error(),
		)
	}

	return status, ErrorResponse{
		Error:     appErr.Message,
		Code:      status,
		ErrorCode: appErr.Code,
	}
}

// SendAppError renders err using its AppError code, or as a 500.
func SendAppError(c *gin.Context, err error) {
	status, body := errorResponse(c, err)
	c.JSON(status, body)
}

// SendErrorNotice is SendAppError plus an error notice for admin screens.
func SendErrorNotice(c *gin.Context, err error) {
	status, body := errorResponse(c, err)
	notice := models.ErrorNotice(body.Error)
	body.Notice = &notice
	c.JSON(status, body)
}
