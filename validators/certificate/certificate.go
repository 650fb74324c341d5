package certificateValidator

import (
	"certhub/middleware"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// Report fields under their JSON / query names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// GenerateCertificateRequest is the body of POST /certificates/generate.
// hackathonId and internshipId are accepted as aliases of programId.
type GenerateCertificateRequest struct {
	ParticipantID   string `json:"participantId" validate:"required,max=64"`
	ProgramID       string `json:"programId" validate:"required,max=64"`
	HackathonID     string `json:"hackathonId"`
	InternshipID    string `json:"internshipId"`
	CertificateType string `json:"certificateType" validate:"required,max=32"`
}

// RequestListQuery is the query of GET /organizer/certificates/requests.
type RequestListQuery struct {
	ProgramID string `query:"programId" validate:"omitempty,max=64"`
	Status    string `query:"status" validate:"omitempty,oneof=pending issued rejected failed"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

func GenerateCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GenerateCertificateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.ParticipantID = strings.TrimSpace(reqData.ParticipantID)
		reqData.CertificateType = strings.TrimSpace(reqData.CertificateType)
		reqData.ProgramID = firstNonEmpty(reqData.ProgramID, reqData.HackathonID, reqData.InternshipID)

		if errors := validationErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGenerate", reqData)
		return c.Next()
	}
}

// RequestID validates the :id path parameter of request routes.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := strings.TrimSpace(c.Params("id"))
		if requestID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Request ID is required!", nil)
		}
		if len(requestID) > 64 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Request ID!", nil)
		}

		c.Locals("requestID", requestID)
		return c.Next()
	}
}

func Eligibility() fiber.Handler {
	return func(c *fiber.Ctx) error {
		programID := strings.TrimSpace(c.Params("programId"))
		participantID := strings.TrimSpace(c.Params("participantId"))

		errors := make(map[string]string)
		if programID == "" {
			errors["programId"] = "Program ID is required!"
		}
		if participantID == "" {
			errors["participantId"] = "Participant ID is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("programID", programID)
		c.Locals("participantID", participantID)
		return c.Next()
	}
}

func RequestList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RequestListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errors := validationErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		if reqData.Page == 0 {
			reqData.Page = 1
		}
		if reqData.Limit == 0 {
			reqData.Limit = 10
		}

		c.Locals("validatedRequestList", reqData)
		return c.Next()
	}
}

func validationErrors(s interface{}) map[string]string {
	errors := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return errors
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["request"] = "Invalid request!"
		return errors
	}
	for _, fe := range fieldErrs {
		errors[fe.Field()] = messageFor(fe)
	}
	return errors
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required!"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + "!"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + "!"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param() + "!"
	default:
		return fe.Field() + " is invalid!"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
