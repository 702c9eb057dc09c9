package transport

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Error codes surfaced in error response bodies.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	CodeAzureError      = "AZURE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// APIError carries an HTTP status and a machine-readable error code through
// the fiber error path.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Message }

// HTTPStatus exposes the response status for callers that must know it
// before the error handler renders the body, such as metrics middleware.
func (e *APIError) HTTPStatus() int { return e.Status }

func NewAPIError(status int, code string, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

type errorDetail struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type errorResponse struct {
	Detail errorDetail `json:"detail"`
}

// ErrorHandler renders every handler error as the structured
// {"detail": {"error_code", "message"}} body.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		code := CodeInternalError
		message := err.Error()

		var apiErr *APIError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &apiErr):
			status = apiErr.Status
			code = apiErr.Code
			message = apiErr.Message
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		}

		logger.Error("request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("errorCode", code),
			zap.Error(err),
		)

		return c.Status(status).JSON(errorResponse{
			Detail: errorDetail{
				ErrorCode: code,
				Message:   message,
			},
		})
	}
}
