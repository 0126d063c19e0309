package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gitlab.com/aoterocom/MarketForge/models"
)

type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func dataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func successResponse(c echo.Context, data interface{}) error {
	return dataResponse(c, http.StatusOK, data)
}

func badRequestResponse(c echo.Context, errs []ValidationError) error {
	return dataResponse(c, http.StatusBadRequest, errs)
}

// errorResponse maps the failure taxonomy onto HTTP status codes.
func errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrDataUnavailable), errors.Is(err, models.ErrModelUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInsufficientHistory):
		status = http.StatusUnprocessableEntity
	}
	return dataResponse(c, status, ValidationError{
		Code:    "ERR_" + string(models.ReasonOf(err)),
		Message: err.Error(),
	})
}
