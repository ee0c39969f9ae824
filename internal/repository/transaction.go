package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/pledgeline/pledgeline/internal/model"
)

type TransactionRepository interface {
	Create(txn *model.Transaction) error
	ByGoal(goalID string) ([]model.Transaction, error)
	ByUser(userID string) ([]model.Transaction, error)
}

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(txn *model.Transaction) error {
	return insertTransaction(r.db, txn)
}

func insertTransaction(db sqlx.Execer, txn *model.Transaction) error {
	query := `INSERT INTO transactions (id, goal_id, user_id, amount, transaction_type, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.Exec(query,
		txn.ID,
		txn.GoalID,
		txn.UserID,
		txn.Amount,
		txn.TransactionType,
		txn.Status,
		txn.CreatedAt,
	)

	return err
}

func (r *transactionRepository) ByGoal(goalID string) ([]model.Transaction, error) {
	var txns []model.Transaction
	query := `SELECT * FROM transactions WHERE goal_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&txns, query, goalID)
	if err != nil {
		return nil, err
	}

	return txns, nil
}

func (r *transactionRepository) ByUser(userID string) ([]model.Transaction, error) {
	var txns []model.Transaction
	query := `SELECT * FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&txns, query, userID)
	if err != nil {
		return nil, err
	}

	return txns, nil
}
