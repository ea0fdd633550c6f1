package postgres

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"restrictedbot/internal/domain"
)

func userColumnsList() []string {
	return []string{
		"user_id", "phone_number", "session_file", "is_active", "is_admin",
		"is_premium", "is_pro", "download_count", "daily_reset",
		"channels_verified", "last_used", "created_at", "subscription_expiry",
	}
}

func newUserRepoAt(t *testing.T, now time.Time) (*UserRepo, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := NewUserRepo(db)
	repo.now = func() time.Time { return now }

	return repo, mock, func() { db.Close() }
}

func TestUserRepo_GetUser_NotFound(t *testing.T) {
	repo, mock, done := newUserRepoAt(t, time.Now())
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE user_id").
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetUser(1)

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUser_Plain(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo, mock, done := newUserRepoAt(t, now)
	defer done()

	recent := now.Add(-time.Hour)
	rows := sqlmock.NewRows(userColumnsList()).AddRow(
		int64(1), "+1555000", "sessions/user_1.session", true, false,
		false, false, 3, recent,
		false, recent, recent, nil,
	)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE user_id").
		WithArgs(int64(1)).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE users SET last_used").
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.GetUser(1)

	assert.NoError(t, err)
	assert.Equal(t, 3, user.DownloadCount)
	assert.False(t, user.IsPremium)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUser_DailyReset(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo, mock, done := newUserRepoAt(t, now)
	defer done()

	stale := now.Add(-25 * time.Hour)
	rows := sqlmock.NewRows(userColumnsList()).AddRow(
		int64(1), "+1555000", "sessions/user_1.session", true, false,
		false, false, 5, stale,
		false, stale, stale, nil,
	)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE user_id").
		WithArgs(int64(1)).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE users SET download_count = 0, daily_reset").
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET last_used").
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.GetUser(1)

	assert.NoError(t, err)
	assert.Equal(t, 0, user.DownloadCount)
	assert.Equal(t, now, user.DailyReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUser_ExpiredSubscriptionDowngraded(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo, mock, done := newUserRepoAt(t, now)
	defer done()

	recent := now.Add(-time.Hour)
	expired := now.Add(-24 * time.Hour)
	rows := sqlmock.NewRows(userColumnsList()).AddRow(
		int64(1), "+1555000", "sessions/user_1.session", true, false,
		true, true, 2, recent,
		false, recent, recent, expired,
	)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE user_id").
		WithArgs(int64(1)).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE users SET is_premium = FALSE, is_pro = FALSE").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET last_used").
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.GetUser(1)

	assert.NoError(t, err)
	assert.False(t, user.IsPremium)
	assert.False(t, user.IsPro)
	assert.Nil(t, user.SubscriptionExpiry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpsertUser(t *testing.T) {
	repo, mock, done := newUserRepoAt(t, time.Now())
	defer done()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(1), "+1555000", "sessions/user_1.session", false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertUser(1, "+1555000", "sessions/user_1.session", false)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_IncrementDownloadCount(t *testing.T) {
	repo, mock, done := newUserRepoAt(t, time.Now())
	defer done()

	mock.ExpectExec("UPDATE users SET download_count = download_count").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.IncrementDownloadCount(1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetTier(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tier domain.Tier
		args []driver.Value
		sql  string
	}{
		{
			name: "premium sets 30 day expiry",
			tier: domain.TierPremium,
			args: []driver.Value{now.Add(30 * 24 * time.Hour), int64(1)},
			sql:  "UPDATE users SET is_premium = TRUE, is_pro = FALSE",
		},
		{
			name: "pro sets both flags",
			tier: domain.TierPro,
			args: []driver.Value{now.Add(30 * 24 * time.Hour), int64(1)},
			sql:  "UPDATE users SET is_premium = TRUE, is_pro = TRUE",
		},
		{
			name: "free clears flags and expiry",
			tier: domain.TierFree,
			args: []driver.Value{int64(1)},
			sql:  "UPDATE users SET is_premium = FALSE, is_pro = FALSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, done := newUserRepoAt(t, now)
			defer done()

			mock.ExpectExec(tt.sql).
				WithArgs(tt.args...).
				WillReturnResult(sqlmock.NewResult(0, 1))

			assert.NoError(t, repo.SetTier(1, tt.tier))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_SetTier_Unknown(t *testing.T) {
	repo, _, done := newUserRepoAt(t, time.Now())
	defer done()

	assert.Error(t, repo.SetTier(1, domain.TierAdmin))
}
