// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"net/http"
	"strconv"

	"cinema-server/models"

	"github.com/labstack/echo/v4"
)

// bindRequest fills req from the query string and then from the body, so
// POST endpoints accept both "?email=" and a JSON payload.
func bindRequest(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, req); err != nil {
		return err
	}
	return c.Bind(req)
}

func validationError(err error) error {
	return &echo.HTTPError{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
	}
}

func parseID(c echo.Context, param, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, &echo.HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid " + name + " id",
		}
	}
	return uint(id), nil
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

func toFilmResponse(film *models.Film) FilmResponse {
	return FilmResponse{
		ID:    film.ID,
		Title: film.Title,
		Genre: film.Genre,
		Price: film.Price,
	}
}
