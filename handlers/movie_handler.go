// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"errors"
	"net/http"

	"cinema-server/db"
	"cinema-server/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var errFilmNotFound = &echo.HTTPError{
	Code:    http.StatusNotFound,
	Message: "Film not found",
}

// CreateFilmHandler godoc
// @Summary      Add a film to the catalog
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        film  body  FilmRequest  true  "Film"
// @Success      200 {object} FilmResponse       "Created film"
// @Failure      400 {object} DetailResponse     "Invalid request"
// @Failure      401 {object} DetailResponse     "Invalid token"
// @Failure      403 {object} DetailResponse     "Admins only"
// @Router       /movies/ [post]
func CreateFilmHandler(c echo.Context) error {
	logger := c.Logger()

	req := new(FilmRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind request: ", err)
		return echo.ErrBadRequest
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}

	film := models.Film{
		Title: req.Title,
		Genre: req.Genre,
		Price: *req.Price,
	}
	if err := db.Conn.WithContext(c.Request().Context()).Create(&film).Error; err != nil {
		logger.Errorf("Failed to create film: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Film created: id=%d", film.ID)
	return c.JSON(http.StatusOK, toFilmResponse(&film))
}

// ListFilmsHandler godoc
// @Summary      List the catalog
// @Tags         movies
// @Produce      json
// @Success      200 {array} FilmResponse "All films"
// @Router       /movies/ [get]
func ListFilmsHandler(c echo.Context) error {
	var films []models.Film
	if err := db.Conn.WithContext(c.Request().Context()).Order("id").Find(&films).Error; err != nil {
		c.Logger().Errorf("Failed to list films: %v", err)
		return echo.ErrInternalServerError
	}

	resp := make([]FilmResponse, 0, len(films))
	for i := range films {
		resp = append(resp, toFilmResponse(&films[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetFilmHandler godoc
// @Summary      Get a film
// @Tags         movies
// @Produce      json
// @Param        film_id  path  int  true  "Film ID"
// @Success      200 {object} FilmResponse       "Film"
// @Failure      400 {object} DetailResponse     "Invalid film id"
// @Failure      404 {object} DetailResponse     "Film not found"
// @Router       /movies/{film_id} [get]
func GetFilmHandler(c echo.Context) error {
	film, err := loadFilm(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFilmResponse(film))
}

// UpdateFilmHandler godoc
// @Summary      Replace a film
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        film_id  path  int          true  "Film ID"
// @Param        film     body  FilmRequest  true  "Film"
// @Success      200 {object} FilmResponse       "Updated film"
// @Failure      400 {object} DetailResponse     "Invalid request"
// @Failure      403 {object} DetailResponse     "Admins only"
// @Failure      404 {object} DetailResponse     "Film not found"
// @Router       /movies/{film_id} [put]
func UpdateFilmHandler(c echo.Context) error {
	logger := c.Logger()

	film, err := loadFilm(c)
	if err != nil {
		return err
	}

	req := new(FilmRequest)
	if err := c.Bind(req); err != nil {
		logger.Error("Failed to bind request: ", err)
		return echo.ErrBadRequest
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}

	film.Title = req.Title
	film.Genre = req.Genre
	film.Price = *req.Price
	if err := db.Conn.WithContext(c.Request().Context()).Save(film).Error; err != nil {
		logger.Errorf("Failed to update film: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Film updated: id=%d", film.ID)
	return c.JSON(http.StatusOK, toFilmResponse(film))
}

// DeleteFilmHandler godoc
// @Summary      Remove a film
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        film_id  path  int  true  "Film ID"
// @Success      200 {object} FilmResponse       "Deleted film"
// @Failure      400 {object} DetailResponse     "Invalid film id"
// @Failure      403 {object} DetailResponse     "Admins only"
// @Failure      404 {object} DetailResponse     "Film not found"
// @Router       /movies/{film_id} [delete]
func DeleteFilmHandler(c echo.Context) error {
	logger := c.Logger()

	film, err := loadFilm(c)
	if err != nil {
		return err
	}

	if err := db.Conn.WithContext(c.Request().Context()).Delete(film).Error; err != nil {
		logger.Errorf("Failed to delete film: %v", err)
		return echo.ErrInternalServerError
	}

	logger.Infof("Film deleted: id=%d", film.ID)
	return c.JSON(http.StatusOK, toFilmResponse(film))
}

func loadFilm(c echo.Context) (*models.Film, error) {
	filmID, err := parseID(c, "film_id", "film")
	if err != nil {
		return nil, err
	}

	film := &models.Film{}
	if err := db.Conn.WithContext(c.Request().Context()).First(film, filmID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errFilmNotFound
		}
		c.Logger().Errorf("Failed to find film: %v", err)
		return nil, echo.ErrInternalServerError
	}
	return film, nil
}
