package api

import (
	"errors"
	"fmt"
	"time"

	"retailrag/types"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}

	var valError types.ValidationError
	if errors.As(err, &valError) {
		return c.Status(valError.Status).JSON(valError)
	}

	// "No matches" is an expected outcome, not a failure worth logging.
	var noMatches *types.NoMatchesError
	if errors.As(err, &noMatches) {
		return c.Status(fiber.StatusNotFound).JSON(NewError(fiber.StatusNotFound, noMatches.Error()))
	}

	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	apiError := NewError(code, err.Error())
	fmt.Printf("%s Request failed with code %d and message: %s\n", time.Now().Format(time.RFC3339), apiError.Code, apiError.Message)
	return c.Status(apiError.Code).JSON(apiError)
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the Error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid query parameters",
	}
}
