package buildsite

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/buildsite/content"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created wraps a successful create.
func Created(c echo.Context, data any, msg string) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: data, Message: msg})
}

// Done acknowledges a request that returns no data.
func Done(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Message: msg})
}

func BadRequest(c echo.Context, msg string, fields map[string]string) error {
	return c.JSON(http.StatusBadRequest, envelope{Message: msg, Errors: fields})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, envelope{Message: msg})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, envelope{Message: msg})
}

func Conflict(c echo.Context, msg string) error {
	return c.JSON(http.StatusConflict, envelope{Message: msg})
}

func InternalError(c echo.Context, err error) error {
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, envelope{Message: "Internal server error"})
}

// Fail maps a store or validation error to its envelope response.
func Fail(c echo.Context, err error) error {
	var (
		fields content.FieldErrors
		nf     NotFoundError
		has    HasApplicationsError
	)
	switch {
	case errors.As(err, &fields):
		return BadRequest(c, "Validation failed", fields.Map())
	case errors.Is(err, ErrSlugTaken):
		return BadRequest(c, "Validation failed", map[string]string{"slug": err.Error()})
	case errors.As(err, &nf):
		return NotFound(c, nf.Error())
	case errors.As(err, &has):
		return Conflict(c, has.Error())
	}
	return InternalError(c, err)
}
