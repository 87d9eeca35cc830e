package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goaltracker/internal/config"
)

func TestOpen_Memory(t *testing.T) {
	set, store, err := Open(context.Background(), &config.Config{StorageDriver: config.DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, set.Users)
	assert.NotNil(t, set.Goals)
	assert.NotNil(t, set.Tasks)
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StorageDriver: "sqlite"}, zap.NewNop())
	assert.EqualError(t, err, `unknown storage driver "sqlite"`)
}
