package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/structkit/patchguard"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// SuccessResponseJSON writes a success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseJSON writes an RFC 9457 problem document.
func ErrorResponseJSON(c *fiber.Ctx, status int, title, detail string) error {
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.OriginalURL(),
	})
}

// ErrorToStatusCode maps apply errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, patchguard.ErrFieldNotFound):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, patchguard.ErrTypeMismatch):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, patchguard.ErrTestFailed):
		return fiber.StatusConflict
	case errors.Is(err, patchguard.ErrUnsupportedOp):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
