package userstore

import (
	"context"
	"sync"
	"testing"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ phoneAuth.UserProvider = (*Memory)(nil)
var _ phoneAuth.UserProvider = (*Postgres)(nil)

func TestMemoryFindMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.FindByPhone(context.Background(), "8613800000000")
	assert.ErrorIs(t, err, phoneAuth.ErrUserNotFound)
}

func TestMemoryCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first, err := m.CreateWithPhone(ctx, "8613800000000")
	require.NoError(t, err)
	_, err = uuid.Parse(first.UserID)
	require.NoError(t, err)

	second, err := m.CreateWithPhone(ctx, "8613800000000")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryConcurrentCreateYieldsOneAccount(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := m.CreateWithPhone(ctx, "8613800000000")
			if err == nil {
				ids[i] = rec.UserID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, m.Len())
}

func TestMemorySetPasswordHash(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec, err := m.CreateWithPhone(ctx, "8613800000000")
	require.NoError(t, err)
	require.NoError(t, m.SetPasswordHash(ctx, rec.UserID, "$argon2id$..."))

	got, err := m.FindByPhone(ctx, "8613800000000")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$...", got.PasswordHash)

	assert.ErrorIs(t, m.SetPasswordHash(ctx, "nobody", "x"), phoneAuth.ErrUserNotFound)
}
