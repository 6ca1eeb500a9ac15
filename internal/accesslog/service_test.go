package accesslog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

func TestRecorder(t *testing.T) {
	userID := id.NewUserID()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	store := NewMemoryStore()
	rec := NewRecorder(store)

	t.Run("record stamps request time", func(t *testing.T) {
		rec.Record(ctx, &Entry{UserID: userID, Email: "a@example.com", Status: StatusSuccess})

		entries, err := rec.ListByUser(ctx, userID, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, now, entries[0].CreatedAt)
	})

	t.Run("invalid status is dropped", func(t *testing.T) {
		rec.Record(ctx, &Entry{UserID: userID, Status: Status("partial")})

		entries, err := rec.ListByUser(ctx, userID, 10)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("list is newest first and bounded", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			later := requestcontext.WithTime(ctx, now.Add(time.Duration(i+1)*time.Minute))
			rec.Record(later, &Entry{UserID: userID, Status: StatusFailed, Reason: "bad password"})
		}

		entries, err := rec.ListByUser(ctx, userID, 3)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))
		assert.Equal(t, StatusFailed, entries[0].Status)
	})

	t.Run("entries never leak across users", func(t *testing.T) {
		entries, err := rec.ListByUser(ctx, id.NewUserID(), 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
