// Package response defines the uniform JSON envelopes every API
// endpoint replies with, so clients can branch on the success flag
// instead of parsing per-endpoint shapes.
package response

import "github.com/labstack/echo/v4"

// Envelope wraps a successful payload.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope wraps a failure. Errors carries optional detail
// strings (e.g. which field failed validation); no internal error text
// or stack traces ever go into it.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}

// New builds a success envelope without writing it, for callers that
// need to serialize the payload themselves (the cache layer).
func New(code int, data any, message string) Envelope {
	return Envelope{StatusCode: code, Data: data, Message: message, Success: true}
}

// JSON writes a success envelope.
func JSON(c echo.Context, code int, data any, message string) error {
	return c.JSON(code, New(code, data, message))
}

// Error writes a failure envelope.
func Error(c echo.Context, code int, message string, details ...string) error {
	if details == nil {
		details = []string{}
	}
	return c.JSON(code, ErrorEnvelope{StatusCode: code, Message: message, Errors: details, Success: false})
}
