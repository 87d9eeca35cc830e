package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"time"

	"go.uber.org/zap"

	"goaltracker/internal/auth"
	"goaltracker/internal/config"
	"goaltracker/internal/db"
	apperrors "goaltracker/internal/errors"
	"goaltracker/internal/logger"
	"goaltracker/internal/model"
	"goaltracker/internal/service"
)

// noopMailer satisfies service.ResetMailer; seeding never sends mail.
type noopMailer struct{}

func (noopMailer) SendPasswordReset(to, code string, ttl time.Duration) error { return nil }

func main() {
	email := flag.String("email", "demo@goaltracker.local", "demo account email")
	password := flag.String("password", "demo1234", "demo account password")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console"})
	if err != nil {
		stdlog.Fatalf("logger init: %v", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	repos, storage, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("storage init", zap.Error(err))
	}
	defer func() { _ = storage.Close(context.Background()) }()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(repos.Users, jwtService, auth.NewTokenStore(nil), noopMailer{}, log)
	reconciler := service.NewProgressReconciler(repos.Goals, repos.Tasks, log)
	goalService := service.NewGoalService(repos.Goals, repos.Tasks, service.StaticPlanner{}, log)
	taskService := service.NewTaskService(repos.Goals, repos.Tasks, reconciler, service.StaticPlanner{}, cfg.Location(), log)

	_, user, err := authService.Register(ctx, *email, *password)
	if errors.Is(err, apperrors.ErrUserAlreadyExists) {
		log.Info("demo user exists, logging in", zap.String("email", *email))
		_, user, err = authService.Login(ctx, *email, *password)
	}
	if err != nil {
		log.Fatal("demo user", zap.Error(err))
	}

	goals, err := goalService.ListGoals(ctx, user.ID)
	if err != nil {
		log.Fatal("list goals", zap.Error(err))
	}
	if len(goals) > 0 {
		log.Info("demo user already has goals, nothing to seed", zap.Int("goals", len(goals)))
		return
	}

	seeds := []service.PlanInput{
		{Title: "Run a half marathon", Description: "Finish 21.1 km without walking", Category: string(model.CategoryHealth), TargetDate: time.Now().AddDate(0, 3, 0)},
		{Title: "Learn Go", Description: "Build and ship a small web service", Category: string(model.CategoryEducational), TargetDate: time.Now().AddDate(0, 2, 0)},
	}

	for _, in := range seeds {
		plan, err := goalService.GeneratePlan(ctx, in)
		if err != nil {
			log.Fatal("generate plan", zap.Error(err))
		}

		goal, err := goalService.CreateGoal(ctx, user.ID, service.GoalInput{
			Title:       plan.Goal.Title,
			Description: plan.Goal.Description,
			Category:    string(plan.Goal.Category),
			TargetDate:  plan.Goal.TargetDate,
			Priority:    string(model.PriorityHigh),
		})
		if err != nil {
			log.Fatal("create goal", zap.Error(err))
		}

		for i, suggested := range plan.Tasks {
			task, err := taskService.CreateTask(ctx, user.ID, goal.ID, service.TaskInput{
				Title:       suggested.Title,
				Description: suggested.Description,
				DueDate:     suggested.DueDate,
				Priority:    string(suggested.Priority),
			})
			if err != nil {
				log.Fatal("create task", zap.Error(err))
			}
			// first milestone is already done
			if i == 0 {
				if _, err := taskService.ToggleTask(ctx, user.ID, task.ID); err != nil {
					log.Fatal("complete task", zap.Error(err))
				}
			}
		}

		seeded, err := goalService.GetGoal(ctx, user.ID, goal.ID)
		if err != nil {
			log.Fatal("reload goal", zap.Error(err))
		}
		log.Info("seeded goal",
			zap.String("goal_id", seeded.ID),
			zap.String("title", seeded.Title),
			zap.Int("tasks", len(plan.Tasks)),
			zap.Int("progress", seeded.Progress),
		)
	}

	log.Info("seed complete", zap.String("email", *email))
}
