//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/duynhne/inventory-service/config"
	database "github.com/duynhne/inventory-service/internal/core"
	"github.com/duynhne/inventory-service/internal/core/domain"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("inventory"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.Connect(ctx, config.DatabaseConfig{URL: dsn, MaxConns: 4, ConnectTimeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

func TestPgxRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := setupPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	sessions := NewSessionRepository(pool)
	categories := NewCategoryRepository(pool)
	items := NewItemRepository(pool)

	var alice *domain.UserRow

	t.Run("create and look up users", func(t *testing.T) {
		var err error
		alice, err = users.Create(ctx, domain.NewUser{Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Role: domain.RoleUser})
		require.NoError(t, err)
		assert.NotZero(t, alice.ID)
		assert.Equal(t, domain.RoleUser, alice.Role)

		byName, err := users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, alice.ID, byName.ID)

		missing, err := users.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("unique violations map to domain errors", func(t *testing.T) {
		_, err := users.Create(ctx, domain.NewUser{Username: "alice", Email: "x@example.com", PasswordHash: "h", Role: domain.RoleUser})
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

		_, err = users.Create(ctx, domain.NewUser{Username: "alice2", Email: "alice@example.com", PasswordHash: "h", Role: domain.RoleUser})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, users.UpdatePassword(ctx, alice.ID, "new-hash"))
		row, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", row.PasswordHash)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
		require.NoError(t, sessions.Create(ctx, "h1", alice.ID, exp))
		require.NoError(t, sessions.Create(ctx, "h2", alice.ID, time.Now().Add(-time.Hour)))

		row, err := sessions.GetByTokenHash(ctx, "h1")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "alice", row.User.Username)
		assert.True(t, exp.Equal(row.ExpiresAt))

		later := exp.Add(time.Hour)
		require.NoError(t, sessions.Touch(ctx, "h1", later))
		row, err = sessions.GetByTokenHash(ctx, "h1")
		require.NoError(t, err)
		assert.True(t, later.Equal(row.ExpiresAt))

		n, err := sessions.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, sessions.DeleteByUser(ctx, alice.ID))
		row, err = sessions.GetByTokenHash(ctx, "h1")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("sessions cascade on user delete", func(t *testing.T) {
		bob, err := users.Create(ctx, domain.NewUser{Username: "bob", Email: "bob@example.com", PasswordHash: "h", Role: domain.RoleUser})
		require.NoError(t, err)
		require.NoError(t, sessions.Create(ctx, "hb", bob.ID, time.Now().Add(time.Hour)))

		_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, bob.ID)
		require.NoError(t, err)

		row, err := sessions.GetByTokenHash(ctx, "hb")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("catalog", func(t *testing.T) {
		desc := "Hand tools"
		cat, err := categories.Create(ctx, domain.CategoryInput{Name: "Tools", Description: &desc})
		require.NoError(t, err)

		price, qty := 12.5, 4
		item, err := items.Create(ctx, domain.ItemInput{Name: "Hammer", Price: &price, Quantity: &qty, CategoryID: &cat.ID})
		require.NoError(t, err)
		assert.Equal(t, "Tools", item.CategoryName)
		assert.InDelta(t, 12.5, item.Price, 1e-9)

		missing := int64(999999)
		_, err = items.Create(ctx, domain.ItemInput{Name: "Saw", Price: &price, Quantity: &qty, CategoryID: &missing})
		assert.ErrorIs(t, err, domain.ErrCategoryMissing)

		_, err = categories.Delete(ctx, cat.ID)
		assert.ErrorIs(t, err, domain.ErrCategoryHasItems)

		inCat, err := items.ListByCategory(ctx, cat.ID)
		require.NoError(t, err)
		assert.Len(t, inCat, 1)

		deleted, err := items.Delete(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = categories.Delete(ctx, cat.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		got, err := categories.GetByID(ctx, cat.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
