package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"goaltracker/internal/repository"
	"goaltracker/internal/repository/repotest"
)

// TestContract runs against a live server when MONGO_URI_TEST is set, in a
// throwaway database dropped afterwards.
func TestContract(t *testing.T) {
	uri := os.Getenv("MONGO_URI_TEST")
	if uri == "" {
		t.Skip("MONGO_URI_TEST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("goaltracker_contract_" + newID())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	set, err := NewSet(ctx, db)
	require.NoError(t, err)
	repotest.Run(t, set)
}

func TestTranslate(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
	other := errors.New("server selection timeout")

	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), repository.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), repository.ErrNotFound)
	assert.ErrorIs(t, translate(dup), repository.ErrDuplicate)
	assert.Equal(t, other, translate(other))
}

func TestNewIDIsObjectIDHex(t *testing.T) {
	id := newID()
	assert.Len(t, id, 24)
	assert.NotEqual(t, id, newID())
}
