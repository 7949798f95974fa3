package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theater-booking/internal/logger"
	"github.com/iliyamo/theater-booking/internal/middleware"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Page is the envelope of paginated listings.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// getUserID returns the authenticated user id set by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, errors.New("invalid user_id in context")
	}
	return uid, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into dst and runs the struct
// validator.  On failure it has already written the 400 response and
// returns false.
func bindAndValidate(c echo.Context, dst interface{}) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(dst); err != nil {
		if fields := validationErrors(err); fields != nil {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// parsePage reads limit and offset query parameters.
func parsePage(c echo.Context) (limit, offset int, err error) {
	limit = defaultPageLimit
	if s := c.QueryParam("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
	}
	if s := c.QueryParam("offset"); s != "" {
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// pageLinks builds the next and previous URLs of a listing with count
// items in total.
func pageLinks(c echo.Context, count, limit, offset int) (next, prev *string) {
	link := func(off int) *string {
		u := url.URL{Path: c.Request().URL.Path}
		q := c.Request().URL.Query()
		q.Set("limit", strconv.Itoa(limit))
		if off > 0 {
			q.Set("offset", strconv.Itoa(off))
		} else {
			q.Del("offset")
		}
		u.RawQuery = q.Encode()
		s := u.String()
		return &s
	}
	if offset+limit < count {
		next = link(offset + limit)
	}
	if offset > 0 {
		p := offset - limit
		if p < 0 {
			p = 0
		}
		prev = link(p)
	}
	return next, prev
}

// internalError logs err with the request logger and answers 500 without
// leaking details.
func internalError(c echo.Context, err error, msg string) error {
	logger.FromContext(c.Request().Context()).WithError(err).Error(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
