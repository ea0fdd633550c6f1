package postgres

import (
	"database/sql"

	"restrictedbot/internal/domain"
)

// StatsRepo implements repository.StatsRepository
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo creates a new stats repository
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// AddDownloadStat appends one download history row
func (r *StatsRepo) AddDownloadStat(userID int64, fileName string, fileSize int64) error {
	query := `INSERT INTO download_stats (user_id, file_name, file_size) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(query, userID, fileName, fileSize)
	return err
}

// UserStats returns the user's lifetime download count and byte total
func (r *StatsRepo) UserStats(userID int64) (int, int64, error) {
	var count int
	var size sql.NullInt64
	query := `SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM download_stats WHERE user_id = $1`
	if err := r.db.QueryRow(query, userID).Scan(&count, &size); err != nil {
		return 0, 0, err
	}
	return count, size.Int64, nil
}

// SystemStats returns the aggregate snapshot for the admin panel
func (r *StatsRepo) SystemStats() (*domain.SystemStats, error) {
	var s domain.SystemStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE last_used > NOW() - INTERVAL '30 days'),
			(SELECT COUNT(*) FROM users WHERE is_premium = TRUE),
			(SELECT COUNT(*) FROM users WHERE is_pro = TRUE),
			(SELECT COUNT(*) FROM users WHERE is_admin = TRUE),
			(SELECT COUNT(*) FROM download_stats),
			(SELECT COALESCE(SUM(file_size), 0) FROM download_stats),
			(SELECT COUNT(*) FROM premium_payments WHERE status = 'pending')
	`
	err := r.db.QueryRow(query).Scan(
		&s.TotalUsers, &s.ActiveUsers, &s.PremiumUsers, &s.ProUsers,
		&s.AdminUsers, &s.TotalDownloads, &s.TotalSize, &s.PendingPayments,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
