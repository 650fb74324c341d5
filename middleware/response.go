package middleware

import (
	certsvc "certhub/services/certificate"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse renders a certificate service error with a status code per
// kind. The data field carries the kind (and reason) for the client.
func ErrorResponse(c *fiber.Ctx, err error) error {
	kind := certsvc.KindOf(err)
	data := fiber.Map{"kind": kind.String()}
	if reason := certsvc.ReasonOf(err); reason != "" {
		data["reason"] = reason
	}

	var svcErr *certsvc.Error
	message := "Something went wrong!"
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch kind {
	case certsvc.KindNotFound:
		return JsonResponse(c, fiber.StatusNotFound, false, message, data)
	case certsvc.KindUnauthorized:
		return JsonResponse(c, fiber.StatusForbidden, false, message, data)
	case certsvc.KindInvalidType:
		if certsvc.ReasonOf(err) == certsvc.ReasonUnknownType {
			return JsonResponse(c, fiber.StatusBadRequest, false, message, data)
		}
		return JsonResponse(c, fiber.StatusUnprocessableEntity, false, message, data)
	case certsvc.KindDuplicateRequest, certsvc.KindInvalidTransition:
		return JsonResponse(c, fiber.StatusConflict, false, message, data)
	case certsvc.KindUpstreamFailure:
		log.Printf("[API] Upstream failure on %s %s: %v", c.Method(), c.Path(), err)
		c.Set(fiber.HeaderRetryAfter, "5")
		return JsonResponse(c, fiber.StatusServiceUnavailable, false, "A dependent service is unavailable, please retry.", data)
	default:
		log.Printf("[API] Unexpected error on %s %s: %v", c.Method(), c.Path(), err)
		return JsonResponse(c, fiber.StatusInternalServerError, false, message, data)
	}
}
