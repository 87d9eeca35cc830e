package service

import (
	"fmt"
	"math"
	"time"

	"goaltracker/internal/model"
)

// PlanInput describes a goal that a plan is requested for.
type PlanInput struct {
	Title       string
	Description string
	TargetDate  time.Time
	Category    string
}

// Planner proposes tasks. The static implementation below uses fixed templates;
// a text-completion backed planner would satisfy the same interface.
type Planner interface {
	GeneratePlan(in PlanInput, category model.Category, now time.Time) *model.Plan
	SuggestTasks(goal *model.Goal, now time.Time) []model.SuggestedTask
}

// StaticPlanner returns template plans.
type StaticPlanner struct{}

var _ Planner = StaticPlanner{}

type taskTemplate struct {
	title       string
	description string
	priority    model.Priority
}

var milestoneTemplates = []taskTemplate{
	{"Research and planning", "Research %q and outline the steps needed to get there.", model.PriorityHigh},
	{"Initial progress", "Start on the first steps toward %q.", model.PriorityMedium},
	{"Mid-point review", "Review progress on %q and adjust the approach if needed.", model.PriorityMedium},
	{"Final push", "Complete the remaining work to achieve %q.", model.PriorityHigh},
}

var suggestionTemplates = map[model.Category][]taskTemplate{
	model.CategoryPersonal: {
		{"Define what success looks like", "Write down why this goal matters to you and how you will know it is done.", model.PriorityHigh},
		{"Build a daily habit", "Set aside a fixed time each day to work on this goal.", model.PriorityMedium},
		{"Reflect on progress", "Look back at what worked so far and adjust your routine.", model.PriorityLow},
	},
	model.CategoryProfessional: {
		{"Research required skills", "List the skills and qualifications this goal needs and find where to learn them.", model.PriorityHigh},
		{"Reach out to your network", "Contact colleagues or mentors who have done something similar.", model.PriorityMedium},
		{"Update your portfolio", "Document what you have achieved so far in your CV or portfolio.", model.PriorityMedium},
	},
}

var defaultSuggestions = []taskTemplate{
	{"Break the goal into steps", "Split the goal into small, concrete actions.", model.PriorityHigh},
	{"Gather resources", "Collect the tools, information and support you will need.", model.PriorityMedium},
	{"Review progress", "Check how far you have come and plan the next steps.", model.PriorityLow},
}

// GeneratePlan returns four milestones due one, two, three and four weeks from now.
func (StaticPlanner) GeneratePlan(in PlanInput, category model.Category, now time.Time) *model.Plan {
	tasks := make([]model.SuggestedTask, 0, len(milestoneTemplates))
	for i, tmpl := range milestoneTemplates {
		tasks = append(tasks, model.SuggestedTask{
			Title:       tmpl.title,
			Description: fmt.Sprintf(tmpl.description, in.Title),
			DueDate:     now.AddDate(0, 0, 7*(i+1)),
			Priority:    tmpl.priority,
		})
	}
	return &model.Plan{
		Goal: model.PlanGoal{
			Title:       in.Title,
			Description: in.Description,
			TargetDate:  in.TargetDate,
			Category:    category,
		},
		Tasks: tasks,
	}
}

// SuggestTasks spreads three category specific tasks over the time left until
// the target date: interval = max(floor(ceil(days left)/4), 1) days.
func (StaticPlanner) SuggestTasks(goal *model.Goal, now time.Time) []model.SuggestedTask {
	interval := SuggestionInterval(goal.TargetDate, now)

	templates, ok := suggestionTemplates[goal.Category]
	if !ok {
		templates = defaultSuggestions
	}

	tasks := make([]model.SuggestedTask, 0, len(templates))
	for i, tmpl := range templates {
		tasks = append(tasks, model.SuggestedTask{
			Title:       tmpl.title,
			Description: tmpl.description,
			DueDate:     now.AddDate(0, 0, interval*(i+1)),
			Priority:    tmpl.priority,
		})
	}
	return tasks
}

// SuggestionInterval is the day spacing used by SuggestTasks.
func SuggestionInterval(target, now time.Time) int {
	days := math.Ceil(target.Sub(now).Hours() / 24)
	interval := int(math.Floor(days / 4))
	if interval < 1 {
		return 1
	}
	return interval
}
