package model

import "strings"

// Category classifies a goal.
type Category string

const (
	CategoryPersonal     Category = "Personal"
	CategoryProfessional Category = "Professional"
	CategoryHealth       Category = "Health"
	CategoryFinancial    Category = "Financial"
	CategoryEducational  Category = "Educational"
	CategoryOther        Category = "Other"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryPersonal,
	CategoryProfessional,
	CategoryHealth,
	CategoryFinancial,
	CategoryEducational,
	CategoryOther,
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Priority ranks goals and tasks.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority matches s case-insensitively against Low, Medium and High.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return "", false
}

// Rank orders priorities High > Medium > Low. Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}
