// Package document implements the repositories on top of a MongoDB database.
// Each entity lives in its own collection keyed by a hex ObjectID string.
package document

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"goaltracker/internal/repository"
)

const (
	usersCollection = "users"
	goalsCollection = "goals"
	tasksCollection = "tasks"
)

// NewSet builds the Mongo repositories and makes sure their indexes exist.
func NewSet(ctx context.Context, db *mongo.Database) (repository.Set, error) {
	if err := EnsureIndexes(ctx, db); err != nil {
		return repository.Set{}, err
	}
	return repository.Set{
		Users: NewUserRepository(db),
		Goals: NewGoalRepository(db),
		Tasks: NewTaskRepository(db),
	}, nil
}

// EnsureIndexes creates the unique email index and the lookup indexes used by the services.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		goalsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "goal_id", Value: 1}, {Key: "due_date", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_date", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func newID() string {
	return bson.NewObjectID().Hex()
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}
