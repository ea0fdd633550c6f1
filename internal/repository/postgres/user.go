package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"restrictedbot/internal/domain"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

const userColumns = `user_id, phone_number, session_file, is_active, is_admin, is_premium, is_pro,
		download_count, daily_reset, channels_verified, last_used, created_at, subscription_expiry`

// GetUser loads a user row. Two lazy mutations happen on every read: the
// daily download counter resets once 24h have passed, and a lapsed
// subscription clears the premium/pro flags.
func (r *UserRepo) GetUser(userID int64) (*domain.User, error) {
	u, err := r.fetch(userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := r.now()

	if now.Sub(u.DailyReset) > 24*time.Hour {
		_, err := r.db.Exec(
			`UPDATE users SET download_count = 0, daily_reset = $1 WHERE user_id = $2`,
			now, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("reset daily counter: %w", err)
		}
		u.DownloadCount = 0
		u.DailyReset = now
	}

	if u.SubscriptionExpired(now) {
		_, err := r.db.Exec(
			`UPDATE users SET is_premium = FALSE, is_pro = FALSE, subscription_expiry = NULL WHERE user_id = $1`,
			userID,
		)
		if err != nil {
			return nil, fmt.Errorf("downgrade expired subscription: %w", err)
		}
		u.IsPremium = false
		u.IsPro = false
		u.SubscriptionExpiry = nil
	}

	if _, err := r.db.Exec(`UPDATE users SET last_used = $1 WHERE user_id = $2`, now, userID); err != nil {
		return nil, fmt.Errorf("touch last_used: %w", err)
	}
	u.LastUsed = now

	return u, nil
}

func (r *UserRepo) fetch(userID int64) (*domain.User, error) {
	var u domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(
		&u.UserID, &u.PhoneNumber, &u.SessionFile, &u.IsActive, &u.IsAdmin,
		&u.IsPremium, &u.IsPro, &u.DownloadCount, &u.DailyReset,
		&u.ChannelsVerified, &u.LastUsed, &u.CreatedAt, &u.SubscriptionExpiry,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser creates or refreshes a user after a successful login. The daily
// counter and reset timestamp of an existing user are preserved.
func (r *UserRepo) UpsertUser(userID int64, phone, sessionFile string, isAdmin bool) error {
	query := `
		INSERT INTO users (user_id, phone_number, session_file, is_admin, last_used, daily_reset)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET phone_number = $2, session_file = $3, is_admin = $4, last_used = NOW()
	`
	_, err := r.db.Exec(query, userID, phone, sessionFile, isAdmin)
	return err
}

// IncrementDownloadCount bumps the user's daily counter
func (r *UserRepo) IncrementDownloadCount(userID int64) error {
	query := `UPDATE users SET download_count = download_count + 1, last_used = NOW() WHERE user_id = $1`
	_, err := r.db.Exec(query, userID)
	return err
}

// SetTier changes the user's subscription tier. Paid tiers get a 30-day
// expiry; downgrading to free clears it.
func (r *UserRepo) SetTier(userID int64, tier domain.Tier) error {
	switch tier {
	case domain.TierPremium:
		expiry := r.now().Add(30 * 24 * time.Hour)
		_, err := r.db.Exec(
			`UPDATE users SET is_premium = TRUE, is_pro = FALSE, subscription_expiry = $1 WHERE user_id = $2`,
			expiry, userID,
		)
		return err
	case domain.TierPro:
		expiry := r.now().Add(30 * 24 * time.Hour)
		_, err := r.db.Exec(
			`UPDATE users SET is_premium = TRUE, is_pro = TRUE, subscription_expiry = $1 WHERE user_id = $2`,
			expiry, userID,
		)
		return err
	case domain.TierFree:
		_, err := r.db.Exec(
			`UPDATE users SET is_premium = FALSE, is_pro = FALSE, subscription_expiry = NULL WHERE user_id = $1`,
			userID,
		)
		return err
	default:
		return fmt.Errorf("cannot set tier %q", tier)
	}
}

// SetChannelsVerified stores the channel verification flag
func (r *UserRepo) SetChannelsVerified(userID int64, verified bool) error {
	_, err := r.db.Exec(`UPDATE users SET channels_verified = $1 WHERE user_id = $2`, verified, userID)
	return err
}

// SetAdmin updates the admin flag
func (r *UserRepo) SetAdmin(userID int64, isAdmin bool) error {
	_, err := r.db.Exec(`UPDATE users SET is_admin = $1 WHERE user_id = $2`, isAdmin, userID)
	return err
}

// ListUsers returns all users, newest first
func (r *UserRepo) ListUsers() ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		err := rows.Scan(
			&u.UserID, &u.PhoneNumber, &u.SessionFile, &u.IsActive, &u.IsAdmin,
			&u.IsPremium, &u.IsPro, &u.DownloadCount, &u.DailyReset,
			&u.ChannelsVerified, &u.LastUsed, &u.CreatedAt, &u.SubscriptionExpiry,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
