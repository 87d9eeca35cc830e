package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "goaltracker/internal/errors"
)

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// MessageResponse acknowledges an action without a payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func list(c echo.Context, data interface{}, count int) error {
	return c.JSON(http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// bind decodes the body into req and runs the registered validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return c.Validate(req)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// parseDate accepts RFC 3339 timestamps, wall-clock times and plain calendar
// dates. Values without an offset are read in loc. A plain date is stored as
// noon of that day so it stays on the same calendar day in nearby zones.
func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if d, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc).UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.Validation("%s %q is not a valid date", field, value)
}

func parseOptionalDate(field string, value *string, loc *time.Location) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseDate(field, *value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// location reads the caller's IANA time zone from the tz query parameter.
// A nil location means the server default applies.
func location(c echo.Context) (*time.Location, error) {
	tz := c.QueryParam("tz")
	if tz == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, apperrors.Validation("tz %q is not a known time zone", tz)
	}
	return loc, nil
}

// dateLocation is the zone bare dates in the body are read in: the tz query
// parameter when present, else fallback.
func dateLocation(c echo.Context, fallback *time.Location) (*time.Location, error) {
	loc, err := location(c)
	if err != nil || loc != nil {
		return loc, err
	}
	return fallback, nil
}
