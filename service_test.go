package lottery

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceDraw(t *testing.T) {
	ctx := context.Background()

	t.Run("journals_and_notifies", func(t *testing.T) {
		gen := newScriptedGenerator(7)
		journal := &memoryJournal{}
		s := NewService(newTestMachine(t, gen), WithJournal(journal))

		var observed []*DrawResult
		s.OnDraw(func(result *DrawResult) { observed = append(observed, result) })
		s.OnDraw(nil)

		_, err := s.PurchaseTicket("Alice")
		require.NoError(t, err)

		gen.push(7, 12, 30)
		result, err := s.Draw(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{7, 12, 30}, result.Numbers)

		require.Len(t, observed, 1)
		assert.Equal(t, result.ID, observed[0].ID)

		draws, err := s.RecentDraws(ctx, 5)
		require.NoError(t, err)
		require.Len(t, draws, 1)
		assert.Equal(t, result.ID, draws[0].ID)
		assert.Equal(t, "Alice", s.LatestWinners()[0].Name)
	})

	t.Run("journal_failure_does_not_fail_draw", func(t *testing.T) {
		journal := &memoryJournal{err: ErrJournalWriteFailure}
		s := NewService(newTestMachine(t, newScriptedGenerator(1, 2, 3)), WithJournal(journal))

		notified := false
		s.OnDraw(func(*DrawResult) { notified = true })

		result, err := s.Draw(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Round)
		assert.True(t, notified)
		assert.Equal(t, int64(1), s.Machine().Stats().JournalFailures)
	})

	t.Run("machine_failure_skips_journal", func(t *testing.T) {
		journal := &memoryJournal{}
		s := NewService(newTestMachine(t, newScriptedGenerator()), WithJournal(journal))

		notified := false
		s.OnDraw(func(*DrawResult) { notified = true })

		_, err := s.Draw(ctx)
		assert.ErrorIs(t, err, ErrRandomSource)
		assert.False(t, notified)
		assert.Equal(t, 0, journal.callCount())
	})

	t.Run("redis_journal", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.Regexp().ExpectLPush("test:draws", `"numbers":\[4,5,6\]`).SetVal(1)
		mock.ExpectLTrim("test:draws", 0, 4).SetVal("OK")

		journal := NewRedisDrawJournal(db, testJournalConfig(0), NewSilentLogger())
		s := NewService(newTestMachine(t, newScriptedGenerator(4, 5, 6)),
			WithJournal(NewCircuitBreakerJournal(journal, nil, NewSilentLogger())),
			WithJournalTimeout(time.Second))

		_, err := s.Draw(ctx)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, int64(0), s.Machine().Stats().JournalFailures)
	})
}

func TestServiceWithoutJournal(t *testing.T) {
	s := NewService(newTestMachine(t, newScriptedGenerator(1, 2, 3)))
	assert.False(t, s.HasJournal())

	_, err := s.Draw(context.Background())
	require.NoError(t, err)

	draws, err := s.RecentDraws(context.Background(), 5)
	assert.ErrorIs(t, err, ErrJournalUnavailable)
	assert.Nil(t, draws)
}
