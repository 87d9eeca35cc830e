package service

import (
	"net/mail"
	"strings"
	"time"

	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/model"
)

const minPasswordLength = 6

// normalizeEmail lowercases and trims email and checks it parses as an address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperrors.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperrors.Validation("email %q is not a valid address", email)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.Validation("title is required")
	}
	return title, nil
}

func requireDate(field string, t time.Time) error {
	if t.IsZero() {
		return apperrors.Validation("%s is required", field)
	}
	return nil
}

// parseCategory defaults an empty category to Other.
func parseCategory(s string) (model.Category, error) {
	if strings.TrimSpace(s) == "" {
		return model.CategoryOther, nil
	}
	c, ok := model.ParseCategory(s)
	if !ok {
		return "", apperrors.Validation("category %q is not one of Personal, Professional, Health, Financial, Educational, Other", s)
	}
	return c, nil
}

// parsePriority defaults an empty priority to Medium.
func parsePriority(s string) (model.Priority, error) {
	if strings.TrimSpace(s) == "" {
		return model.PriorityMedium, nil
	}
	p, ok := model.ParsePriority(s)
	if !ok {
		return "", apperrors.Validation("priority %q is not one of Low, Medium, High", s)
	}
	return p, nil
}
