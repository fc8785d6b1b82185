package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"budgetcoach/internal/domain/budget"
)

const budgetColumns = `id, user_id, category, amount, spent, color`

type BudgetRepository struct {
	db *DB
}

func NewBudgetRepository(db *DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget
	if err := s.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Spent, &b.Color); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error) {
	query := `
		INSERT INTO budgets (id, user_id, category, amount, spent, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + budgetColumns

	b, err := scanBudget(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.UserID, params.Category, params.Amount, params.Spent, params.Color,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*budget.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) ListByUserID(ctx context.Context, userID string) ([]*budget.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = $1
		ORDER BY category, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var list []*budget.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}
	return list, nil
}

func (r *BudgetRepository) UpdateSpent(ctx context.Context, id string, spent float64) (*budget.Budget, error) {
	return r.updateSpent(ctx, `UPDATE budgets SET spent = $2 WHERE id = $1 RETURNING `+budgetColumns, id, spent)
}

// AdjustSpent increments in place so concurrent adjustments add up. The
// guard in the WHERE clause keeps spent from going below zero.
func (r *BudgetRepository) AdjustSpent(ctx context.Context, id string, delta float64) (*budget.Budget, error) {
	b, err := r.updateSpent(ctx, `
		UPDATE budgets SET spent = spent + $2
		WHERE id = $1 AND spent + $2 >= 0
		RETURNING `+budgetColumns, id, delta)
	if !errors.Is(err, budget.ErrNotFound) {
		return b, err
	}

	// no row matched, tell a missing budget apart from a rejected delta
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, budget.ErrNegativeSpent
}

func (r *BudgetRepository) updateSpent(ctx context.Context, query, id string, value float64) (*budget.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, query, id, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireAffected(result, budget.ErrNotFound)
}

func (r *BudgetRepository) DeleteAllByUserID(ctx context.Context, userID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete budgets: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

var _ budget.Repository = (*BudgetRepository)(nil)
