package model

import "time"

// SuggestedTask is a generated, never persisted task proposal.
type SuggestedTask struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    Priority  `json:"priority"`
}

// PlanGoal echoes the goal a plan was generated for.
type PlanGoal struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TargetDate  time.Time `json:"target_date"`
	Category    Category  `json:"category"`
}

// Plan is a milestone schedule for a goal that has not been created yet.
type Plan struct {
	Goal  PlanGoal        `json:"goal"`
	Tasks []SuggestedTask `json:"tasks"`
}
