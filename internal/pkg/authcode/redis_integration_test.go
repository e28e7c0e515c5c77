//go:build integration

package authcode_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/careernest/internal/pkg/authcode"
	"github.com/yigit/careernest/internal/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	store := authcode.NewRedisStore(containers.NewRedisClient(t))
	ctx := context.Background()

	t.Run("consume once", func(t *testing.T) {
		userID := uuid.New()
		code, err := store.Issue(ctx, userID, time.Minute)
		require.NoError(t, err)

		got, err := store.Consume(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, userID, got)

		_, err = store.Consume(ctx, code)
		assert.ErrorIs(t, err, authcode.ErrInvalidCode)
	})

	t.Run("expires", func(t *testing.T) {
		code, err := store.Issue(ctx, uuid.New(), 50*time.Millisecond)
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			_, err := store.Consume(ctx, code)
			return err != nil
		}, 2*time.Second, 25*time.Millisecond)
	})

	t.Run("concurrent consumers", func(t *testing.T) {
		code, err := store.Issue(ctx, uuid.New(), time.Minute)
		require.NoError(t, err)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.Consume(ctx, code); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := store.Consume(ctx, "")
		assert.ErrorIs(t, err, authcode.ErrInvalidCode)
	})
}
