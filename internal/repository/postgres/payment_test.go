package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"restrictedbot/internal/domain"
)

func TestPaymentRepo_AddPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepo(db)

	mock.ExpectExec("INSERT INTO premium_payments").
		WithArgs(int64(1), "bitcoin", 5.0, "tx123").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.AddPayment(1, "bitcoin", 5.0, "tx123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepo(db)

	created := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "payment_method", "amount", "transaction_id",
		"status", "created_at", "verified_at",
	}).
		AddRow(1, int64(10), "mtn", 5.0, "tx1", "pending", created, nil).
		AddRow(2, int64(20), "usdt", 15.0, "tx2", "pending", created, nil)

	mock.ExpectQuery("SELECT (.+) FROM premium_payments").
		WillReturnRows(rows)

	payments, err := repo.ListPending()

	assert.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, domain.PaymentPending, payments[0].Status)
	assert.Equal(t, int64(20), payments[1].UserID)
	assert.Equal(t, 15.0, payments[1].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_VerifyPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepo(db)

	mock.ExpectQuery("SELECT user_id FROM premium_payments").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(42)))
	mock.ExpectExec("UPDATE premium_payments SET status = 'verified'").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	userID, err := repo.VerifyPayment(1)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_VerifyPayment_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepo(db)

	mock.ExpectQuery("SELECT user_id FROM premium_payments").
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.VerifyPayment(99)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
