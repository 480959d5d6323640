package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Brownie44l1/propvest/internal/db"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NOTE: the Postgres tests are integration tests. Set TEST_DB_URL to a
// database the funding_sessions schema can be applied to.
func getTestDB(t *testing.T) *pgxpool.Pool {
	url := os.Getenv("TEST_DB_URL")
	if url == "" {
		t.Skip("Integration tests require database connection")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, url, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE funding_sessions`)
	require.NoError(t, err)
	return pool
}

type fundingRepo interface {
	Create(ctx context.Context, s *models.FundingSession) error
	Get(ctx context.Context, reference string) (*models.FundingSession, error)
	Update(ctx context.Context, s *models.FundingSession) error
	ListByState(ctx context.Context, state models.FundingState, olderThan time.Time, limit int) ([]*models.FundingSession, error)
}

func newSession(ref string, state models.FundingState, updated time.Time) *models.FundingSession {
	return &models.FundingSession{
		Reference: ref,
		UserID:    "user-1",
		Email:     "ada@example.com",
		Amount:    decimal.RequireFromString("5000"),
		Method:    models.FundingMethodCard,
		State:     state,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func exerciseFundingRepo(t *testing.T, repo fundingRepo) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Create(ctx, newSession("fund_a", models.FundingVerificationFailed, now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("fund_b", models.FundingVerificationFailed, now.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("fund_c", models.FundingFunded, now.Add(-3*time.Hour))))
	require.NoError(t, repo.Create(ctx, newSession("fund_d", models.FundingVerificationFailed, now)))

	got, err := repo.Get(ctx, "fund_a")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(got.Amount))
	assert.Equal(t, models.FundingMethodCard, got.Method)

	_, err = repo.Get(ctx, "fund_missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	got.State = models.FundingVerifying
	got.Attempts = 2
	got.LastError = "pending"
	got.UpdatedAt = now.Add(-30 * time.Minute)
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.Get(ctx, "fund_a")
	require.NoError(t, err)
	assert.Equal(t, models.FundingVerifying, again.State)
	assert.Equal(t, 2, again.Attempts)

	assert.ErrorIs(t, repo.Update(ctx, newSession("fund_missing", models.FundingIdle, now)), models.ErrSessionNotFound)

	stale, err := repo.ListByState(ctx, models.FundingVerificationFailed, now.Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "fund_b", stale[0].Reference)
}

func TestMemoryFundingRepository(t *testing.T) {
	exerciseFundingRepo(t, NewMemoryFundingRepository())
}

func TestMemoryFundingRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryFundingRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newSession("fund_x", models.FundingIdle, time.Now())))

	s, err := repo.Get(ctx, "fund_x")
	require.NoError(t, err)
	s.State = models.FundingFunded

	fresh, err := repo.Get(ctx, "fund_x")
	require.NoError(t, err)
	assert.Equal(t, models.FundingIdle, fresh.State)
}

func TestMemoryFundingRepository_ListLimit(t *testing.T) {
	repo := NewMemoryFundingRepository()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i, ref := range []string{"r1", "r2", "r3"} {
		require.NoError(t, repo.Create(ctx, newSession(ref, models.FundingVerificationFailed, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := repo.ListByState(ctx, models.FundingVerificationFailed, time.Now(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].Reference)
	assert.Equal(t, "r2", got[1].Reference)
}

func TestFundingRepository_Postgres(t *testing.T) {
	pool := getTestDB(t)
	defer pool.Close()

	exerciseFundingRepo(t, NewFundingRepository(pool))
}
