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

type taskRepository struct {
	coll *mongo.Collection
}

// NewTaskRepository returns a task repository over the tasks collection.
func NewTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &taskRepository{coll: db.Collection(tasksCollection)}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = newID()
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, task)
	return translate(err)
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, byID(task.ID), task)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&task); err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (r *taskRepository) ListByGoal(ctx context.Context, goalID string) ([]model.Task, error) {
	return r.find(ctx, bson.M{"goal_id": goalID})
}

func (r *taskRepository) ListByUserDueBetween(ctx context.Context, userID string, from, to time.Time) ([]model.Task, error) {
	return r.find(ctx, bson.M{
		"user_id":  userID,
		"due_date": bson.M{"$gte": from, "$lte": to},
	})
}

func (r *taskRepository) find(ctx context.Context, filter bson.M) ([]model.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	tasks := []model.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountByGoal(ctx context.Context, goalID string) (int64, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{"goal_id": goalID})
	if err != nil {
		return 0, 0, err
	}
	completed, err := r.coll.CountDocuments(ctx, bson.M{"goal_id": goalID, "is_completed": true})
	if err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *taskRepository) DeleteByGoal(ctx context.Context, goalID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"goal_id": goalID})
	return err
}

func (r *taskRepository) CompleteAllByGoal(ctx context.Context, goalID string) error {
	_, err := r.coll.UpdateMany(ctx, bson.M{"goal_id": goalID}, bson.M{"$set": bson.M{
		"is_completed": true,
		"updated_at":   time.Now().UTC(),
	}})
	return err
}
