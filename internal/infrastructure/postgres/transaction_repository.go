package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"budgetcoach/internal/domain/transaction"
)

const transactionColumns = `id, user_id, date, description, category, amount, type`

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := s.Scan(&t.ID, &t.UserID, &t.Date, &t.Description, &t.Category, &t.Amount, &t.Type)
	if err != nil {
		return nil, err
	}
	t.Date = t.Date.UTC()
	return &t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions (id, user_id, date, description, category, amount, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.UserID, params.Date, params.Description,
		params.Category, params.Amount, params.Type,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListByUserID pages with a keyset on (date, id). A NULL limit is LIMIT ALL.
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID string, limit int, after string) ([]*transaction.Transaction, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	var (
		rows *sql.Rows
		err  error
	)
	if after == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+transactionColumns+`
			FROM transactions
			WHERE user_id = $1
			ORDER BY date DESC, id DESC
			LIMIT $2`, userID, lim)
	} else {
		if _, err := r.GetByID(ctx, after); err != nil {
			return nil, err
		}
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+transactionColumns+`
			FROM transactions
			WHERE user_id = $1
			  AND (date, id) < (SELECT date, id FROM transactions WHERE id = $2)
			ORDER BY date DESC, id DESC
			LIMIT $3`, userID, after, lim)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var list []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return list, nil
}

func (r *TransactionRepository) Replace(ctx context.Context, id string, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := `
		UPDATE transactions
		SET user_id = $2, date = $3, description = $4, category = $5, amount = $6, type = $7
		WHERE id = $1
		RETURNING ` + transactionColumns

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query,
		id, params.UserID, params.Date, params.Description,
		params.Category, params.Amount, params.Type,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transaction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to replace transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(result, transaction.ErrNotFound)
}

func (r *TransactionRepository) DeleteAllByUserID(ctx context.Context, userID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// requireAffected returns notFound when the statement touched no row
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var _ transaction.Repository = (*TransactionRepository)(nil)
