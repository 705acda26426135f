package httpapi

import (
	"errors"
	"fmt"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k common.Kind) int {
	switch k {
	case common.KindValidation:
		return fiber.StatusBadRequest
	case common.KindConflict:
		return fiber.StatusConflict
	case common.KindAuth:
		return fiber.StatusUnauthorized
	case common.KindNotFound:
		return fiber.StatusNotFound
	case common.KindTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders AppErrors with their code and message only. Causes go
// to the log.
func errorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			resp := ErrorResponse{Status: "error", Code: "http_error", Message: fe.Message}
			if fe.Code == fiber.StatusNotFound {
				resp.Code = "route_not_found"
				resp.Message = fmt.Sprintf("Route %s not found", c.OriginalURL())
			}
			return c.Status(fe.Code).JSON(resp)
		}

		ae := common.AsAppError(err)
		status := StatusFor(ae.Kind)

		if status >= fiber.StatusInternalServerError {
			log.Error(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "status", status, "error", err)
		} else {
			log.Debug(c.UserContext(), "request rejected",
				"method", c.Method(), "path", c.Path(), "status", status, "code", ae.Code)
		}

		return c.Status(status).JSON(ErrorResponse{
			Status:  "error",
			Code:    ae.Code,
			Message: ae.Message,
		})
	}
}
