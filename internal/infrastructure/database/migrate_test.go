package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

func TestMigrateAndRepositories(t *testing.T) {
	// one connection keeps every query on the same in-memory database
	db, err := open(sqlite.Open(":memory:"), &config.DatabaseConfig{MaxOpenConns: 1}, "silent", zap.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, Close(db, zap.NewNop())) }()

	require.NoError(t, Migrate(db, zap.NewNop()))
	// Re-running is a no-op.
	require.NoError(t, Migrate(db, zap.NewNop()))

	for _, table := range []string{"users", "credit_usages", "feature_usages", "subscriptions", "payments", "webhook_events"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	repos := NewRepositories(db, zap.NewNop())
	assert.NotNil(t, repos.User)
	assert.NotNil(t, repos.Credit)
	assert.NotNil(t, repos.FeatureUsage)
	assert.NotNil(t, repos.Subscription)
	assert.NotNil(t, repos.Payment)
	assert.NotNil(t, repos.WebhookEvent)
}
