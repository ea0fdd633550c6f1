package postgres

import (
	"database/sql"

	"restrictedbot/internal/domain"
)

// PaymentRepo implements repository.PaymentRepository
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo creates a new payment repository
func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// AddPayment records a user-submitted payment as pending
func (r *PaymentRepo) AddPayment(userID int64, method string, amount float64, transactionID string) error {
	query := `
		INSERT INTO premium_payments (user_id, payment_method, amount, transaction_id)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(query, userID, method, amount, transactionID)
	return err
}

// ListPending returns all payments awaiting admin verification
func (r *PaymentRepo) ListPending() ([]domain.Payment, error) {
	query := `
		SELECT id, user_id, payment_method, amount, transaction_id, status, created_at, verified_at
		FROM premium_payments
		WHERE status = 'pending'
		ORDER BY created_at
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Method, &p.Amount,
			&p.TransactionID, &p.Status, &p.CreatedAt, &p.VerifiedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// VerifyPayment marks a payment verified and returns the paying user
func (r *PaymentRepo) VerifyPayment(paymentID int) (int64, error) {
	var userID int64
	err := r.db.QueryRow(
		`SELECT user_id FROM premium_payments WHERE id = $1`, paymentID,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	_, err = r.db.Exec(
		`UPDATE premium_payments SET status = 'verified', verified_at = NOW() WHERE id = $1`,
		paymentID,
	)
	if err != nil {
		return 0, err
	}
	return userID, nil
}
