package userstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

// Runs against a real database when PHONEAUTH_TEST_DATABASE_URL is set.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("PHONEAUTH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PHONEAUTH_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Ping(ctx))

	phone := fmt.Sprintf("86%011d", time.Now().UnixNano()%1e11)

	_, err = store.FindByPhone(ctx, phone)
	require.ErrorIs(t, err, phoneAuth.ErrUserNotFound)

	created, err := store.CreateWithPhone(ctx, phone)
	require.NoError(t, err)
	again, err := store.CreateWithPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, again.UserID)

	require.NoError(t, store.SetPasswordHash(ctx, created.UserID, "hash"))
	found, err := store.FindByPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)

	err = store.SetPasswordHash(ctx, "00000000-0000-0000-0000-000000000000", "hash")
	assert.ErrorIs(t, err, phoneAuth.ErrUserNotFound)
}
