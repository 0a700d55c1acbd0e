package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cutline/internal/database"
	"cutline/internal/domain"
)

func setupBookingRepo(t *testing.T) *BookingRepository {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewBookingRepository(db)
}

func seedBooking(t *testing.T, repo *BookingRepository, id, salonID string, status domain.BookingStatus, scheduled, created time.Time) {
	t.Helper()

	b := &domain.Booking{
		ID:           id,
		SalonID:      salonID,
		CustomerID:   "cust-" + id,
		CustomerName: "Customer " + id,
		EntrySource:  domain.EntryApp,
		Status:       status,
		ScheduledAt:  scheduled,
		RequestedAt:  created,
		CreatedAt:    created,
	}
	require.NoError(t, repo.Create(context.Background(), b))

	claimed, err := repo.EnsureMirror(context.Background(), b)
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestPromoteToTurnReady_SecondPromotionLosesSlot(t *testing.T) {
	repo := setupBookingRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	seedBooking(t, repo, "b-1", "salon-1", domain.BookingWaiting, base, base)
	seedBooking(t, repo, "b-2", "salon-1", domain.BookingWaiting, base, base.Add(time.Minute))

	claimed, err := repo.PromoteToTurnReady(ctx, "salon-1", "b-1", base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, claimed)

	// the salon's single slot is held, the index rejects the second
	// promotion
	claimed, err = repo.PromoteToTurnReady(ctx, "salon-1", "b-2", base.Add(time.Hour))
	assert.ErrorIs(t, err, ErrTurnSlotTaken)
	assert.False(t, claimed)

	// the losing transaction rolled back the booking write too
	b2, err := repo.GetByID(ctx, "salon-1", "b-2")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingWaiting, b2.Status)
	assert.Nil(t, b2.TurnReadyAt)

	// another salon's slot is independent
	seedBooking(t, repo, "b-3", "salon-2", domain.BookingWaiting, base, base)
	claimed, err = repo.PromoteToTurnReady(ctx, "salon-2", "b-3", base.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestNextWaiting_OrdersByScheduleThenCreationThenID(t *testing.T) {
	repo := setupBookingRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// later slot, earliest creation: the schedule still wins
	seedBooking(t, repo, "b-late", "salon-1", domain.BookingWaiting, base.Add(time.Hour), base)
	seedBooking(t, repo, "b-second", "salon-1", domain.BookingWaiting, base, base.Add(time.Minute))
	seedBooking(t, repo, "b-first", "salon-1", domain.BookingWaiting, base, base)

	next, err := repo.NextWaiting(ctx, "salon-1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "b-first", next.ID)

	// identical schedule and creation time falls back to the id
	seedBooking(t, repo, "b-z", "salon-2", domain.BookingWaiting, base, base)
	seedBooking(t, repo, "b-a", "salon-2", domain.BookingWaiting, base, base)

	next, err = repo.NextWaiting(ctx, "salon-2")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "b-a", next.ID)
}

func TestNextWaiting_EmptySalonReturnsNil(t *testing.T) {
	repo := setupBookingRepo(t)

	next, err := repo.NextWaiting(context.Background(), "salon-empty")
	assert.NoError(t, err)
	assert.Nil(t, next)
}

func TestClaimNoShow_RespectsDeadlineAndClaimsOnce(t *testing.T) {
	repo := setupBookingRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	seedBooking(t, repo, "b-1", "salon-1", domain.BookingWaiting, base, base)

	turnAt := base.Add(time.Hour)
	claimed, err := repo.PromoteToTurnReady(ctx, "salon-1", "b-1", turnAt)
	require.NoError(t, err)
	require.True(t, claimed)

	b, err := repo.GetByID(ctx, "salon-1", "b-1")
	require.NoError(t, err)
	require.Equal(t, domain.BookingTurnReady, b.Status)

	// deadline not yet passed: nothing is claimed
	claimed, err = repo.ClaimNoShow(ctx, b, turnAt, turnAt.Add(3*time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)

	claimed, err = repo.ClaimNoShow(ctx, b, turnAt.Add(time.Second), turnAt.Add(3*time.Minute))
	require.NoError(t, err)
	assert.True(t, claimed)

	// a replayed sweep finds the booking already terminal
	claimed, err = repo.ClaimNoShow(ctx, b, turnAt.Add(time.Second), turnAt.Add(3*time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)

	// the forced cancellation cleared the active queue
	entries, err := repo.QueueEntries(ctx, "salon-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMirrorClaims_ReplaysAreNoOps(t *testing.T) {
	repo := setupBookingRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	seedBooking(t, repo, "b-1", "salon-1", domain.BookingUpcoming, base, base)

	b, err := repo.GetByID(ctx, "salon-1", "b-1")
	require.NoError(t, err)

	// a replayed create event finds the queue entry already present
	claimed, err := repo.EnsureMirror(ctx, b)
	require.NoError(t, err)
	assert.False(t, claimed)

	b.Status = domain.BookingWaiting
	claimed, err = repo.MarkWaiting(ctx, b)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.MarkWaiting(ctx, b)
	require.NoError(t, err)
	assert.False(t, claimed)
}
