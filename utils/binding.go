// File: /utils/binding.go
package utils

import (
	"errors"
	"io"
	"strings"

	"convoy-api/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func init() {
	// every JSON body this API accepts is a closed set of fields
	binding.EnableDecoderDisallowUnknownFields = true
}

// BindStrictJSON binds the body with ShouldBindJSON and turns an unknown
// field into an UNEXPECTED_FIELDS error.
func BindStrictJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewValidationError("Request body is required")
		}
		if field, ok := unknownField(err); ok {
			return models.NewUnexpectedFieldsError([]string{field})
		}
		return models.NewValidationError("Invalid request body: " + err.Error())
	}
	return nil
}

func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}
