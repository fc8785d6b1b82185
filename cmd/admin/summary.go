package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"budgetcoach/internal/domain/analytics"
	"budgetcoach/internal/domain/budget"
	"budgetcoach/internal/domain/coach"
	"budgetcoach/internal/domain/transaction"
)

func summaryCmd(opts *options) *cobra.Command {
	var (
		userID   string
		question string
	)

	cmd := &cobra.Command{
		Use:     "summary",
		Short:   "Print a user's spending summary and budget totals",
		Example: "  admin summary --user-id=abc123\n  admin summary --user-id=abc123 --ask \"how can I save?\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			txs, err := transaction.NewService(backend.Transactions, nil).All(ctx, userID)
			if err != nil {
				return err
			}
			budgets, err := budget.NewService(backend.Budgets, nil).List(ctx, userID)
			if err != nil {
				return err
			}

			return printSummary(ctx, os.Stdout, userID, txs, budgets, question)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID to summarize")
	cmd.Flags().StringVar(&question, "ask", "", "Question for the coach, answered from the summary")
	cmd.MarkFlagRequired("user-id")
	return cmd
}

func printSummary(ctx context.Context, w io.Writer, userID string, txs []*transaction.Transaction, budgets []*budget.Budget, question string) error {
	snap := analytics.Summarize(txs)
	avg := snap.Average
	if math.IsNaN(avg) {
		avg = 0
	}

	fmt.Fprintf(w, "=== User %s ===\n", userID)
	fmt.Fprintf(w, "  Transactions:   %d\n", snap.Count)
	fmt.Fprintf(w, "  Total:          %.2f\n", snap.Total)
	fmt.Fprintf(w, "  Average:        %.2f\n", avg)
	if top, ok := analytics.TopCategory(snap.ByCategory); ok {
		fmt.Fprintf(w, "  Top category:   %s\n", top)
	}

	categories := make([]string, 0, len(snap.ByCategory))
	for c := range snap.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(w, "    %-20s %10.2f\n", c, snap.ByCategory[c])
	}

	totals := analytics.Totals(budgets)
	fmt.Fprintf(w, "  Budgets:        %d\n", len(budgets))
	fmt.Fprintf(w, "    allocated %.2f, spent %.2f, remaining %.2f\n", totals.Allocated, totals.Spent, totals.Remaining)
	for _, b := range budgets {
		p := analytics.BudgetProgress(b)
		marker := ""
		if p.OverBudget {
			marker = " (over budget)"
		}
		fmt.Fprintf(w, "    %-20s %.2f / %.2f  %.0f%%%s\n", b.Category, b.Spent, b.Amount, p.Percent, marker)
	}

	if question == "" {
		return nil
	}

	reply, err := coach.Respond(ctx, question, snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nCoach [%s]: %s\n", reply.Topic, reply.Message)
	return nil
}
