package document

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"goaltracker/internal/model"
	"goaltracker/internal/repository"
)

type goalRepository struct {
	coll *mongo.Collection
}

// NewGoalRepository returns a goal repository over the goals collection.
func NewGoalRepository(db *mongo.Database) repository.GoalRepository {
	return &goalRepository{coll: db.Collection(goalsCollection)}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	if goal.ID == "" {
		goal.ID = newID()
	}
	now := time.Now().UTC()
	goal.CreatedAt, goal.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, goal)
	return translate(err)
}

func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	goal.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, byID(goal.ID), goal)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *goalRepository) UpdateProgress(ctx context.Context, id string, progress int, completed bool) error {
	res, err := r.coll.UpdateOne(ctx, byID(id), bson.M{"$set": bson.M{
		"progress":     progress,
		"is_completed": completed,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *goalRepository) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	var goal model.Goal
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&goal); err != nil {
		return nil, translate(err)
	}
	return &goal, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]model.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	goals := []model.Goal{}
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
