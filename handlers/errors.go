// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders every error as {"detail": "..."}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			var inner *echo.HTTPError
			if errors.As(he.Internal, &inner) {
				he = inner
			}
		}
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			detail = m
		case error:
			detail = m.Error()
		default:
			detail = fmt.Sprint(m)
		}
	} else {
		c.Logger().Error("Unhandled error: ", err)
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, DetailResponse{Detail: detail})
	}
	if writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
