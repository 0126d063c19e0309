package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"gitlab.com/aoterocom/MarketForge/helpers"
)

func recoverMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					helpers.Logger.Errorf("api: panic serving %s: %v\n%s", c.Request().URL.Path, err, debug.Stack())
					_ = dataResponse(c, http.StatusInternalServerError, nil)
				}
			}()
			return next(c)
		}
	}
}

func loggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			helpers.Logger.Debugf("api: %s %s %d (%s)", c.Request().Method, c.Request().URL.RequestURI(),
				c.Response().Status, time.Since(start).Round(time.Millisecond))
			return nil
		}
	}
}
