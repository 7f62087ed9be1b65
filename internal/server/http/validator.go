package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"aichess/internal/server/core"
)

var validate = validator.New()

const bodyKey = "validatedBody"

// validationMiddleware parses and validates JSON bodies for routes that take one
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method != fiber.MethodPost && method != fiber.MethodPut {
		return c.Next()
	}

	path := c.Path()
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games") && method == fiber.MethodPost:
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/players") && method == fiber.MethodPut:
		requestType = &core.ConfigurePlayersRequest{}
	case strings.HasSuffix(path, "/moves") && method == fiber.MethodPost:
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/undo") && method == fiber.MethodPost:
		requestType = &core.UndoRequest{}
	case strings.HasSuffix(path, "/saves") && method == fiber.MethodPost:
		requestType = &core.SaveRequest{}
	default:
		return c.Next() // No body expected
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if err := validate.Struct(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: describe(err),
		})
	}

	c.Locals(bodyKey, requestType)
	return c.Next()
}

// describe turns validator errors into one readable line
func describe(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	var details []string
	for _, e := range errs {
		unit := ""
		if e.Type().Kind() == reflect.String {
			unit = " characters"
		}

		switch e.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s%s", e.Field(), e.Param(), unit))
		case "max":
			details = append(details, fmt.Sprintf("%s must be at most %s%s", e.Field(), e.Param(), unit))
		case "uuid":
			details = append(details, fmt.Sprintf("%s must be a valid UUID", e.Field()))
		default:
			details = append(details, fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag()))
		}
	}
	return strings.Join(details, "; ")
}

// validatedBody returns the body stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (*T, error) {
	body, ok := c.Locals(bodyKey).(*T)
	if !ok || body == nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "validation bypass detected")
	}
	return body, nil
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
