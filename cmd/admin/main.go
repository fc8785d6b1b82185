package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budgetcoach/internal/domain/user"
	"budgetcoach/internal/infrastructure/storage"
	"budgetcoach/internal/interfaces/jobs"
	"budgetcoach/internal/shared/config"
	"budgetcoach/internal/shared/logging"
)

// DefaultWorkerCount is the number of users processed concurrently
const DefaultWorkerCount = 4

type options struct {
	workers int
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Budget Coach admin CLI - maintenance commands for user data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", DefaultWorkerCount, "Number of concurrent workers")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Minute, "Timeout for the operation (e.g. 5m, 1h)")

	rootCmd.AddCommand(seedCmd(opts))
	rootCmd.AddCommand(teardownCmd(opts))
	rootCmd.AddCommand(summaryCmd(opts))

	return rootCmd
}

func seedCmd(opts *options) *cobra.Command {
	var userIDs []string

	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Store the sample transactions and budgets for existing users",
		Example: "  admin seed --user-id=abc123\n  admin seed --user-id=abc123,def456 --workers=8",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd.Context(), opts, userIDs, func(users *user.Service, ids []string) []jobs.Job {
				now := time.Now()
				var list []jobs.Job
				for _, id := range ids {
					list = append(list, jobs.NewSeedJob(id, users, now))
				}
				return list
			})
		},
	}

	cmd.Flags().StringSliceVar(&userIDs, "user-id", nil, "User ID(s) to seed (comma-separated for multiple)")
	cmd.MarkFlagRequired("user-id")
	return cmd
}

func teardownCmd(opts *options) *cobra.Command {
	var (
		userIDs       []string
		deleteAccount bool
	)

	cmd := &cobra.Command{
		Use:     "teardown",
		Short:   "Remove every transaction and budget of users",
		Example: "  admin teardown --user-id=abc123\n  admin teardown --user-id=abc123 --delete-account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd.Context(), opts, userIDs, func(users *user.Service, ids []string) []jobs.Job {
				var list []jobs.Job
				for _, id := range ids {
					list = append(list, jobs.NewTeardownJob(id, users, deleteAccount))
				}
				return list
			})
		},
	}

	cmd.Flags().StringSliceVar(&userIDs, "user-id", nil, "User ID(s) to tear down (comma-separated for multiple)")
	cmd.Flags().BoolVar(&deleteAccount, "delete-account", false, "Also delete the user accounts")
	cmd.MarkFlagRequired("user-id")
	return cmd
}

// withUsers opens the storage backend and runs the jobs built by build on a
// worker pool. Any failed job fails the command.
func withUsers(ctx context.Context, opts *options, userIDs []string, build func(*user.Service, []string) []jobs.Job) error {
	userIDs = cleanIDs(userIDs)
	if len(userIDs) == 0 {
		return fmt.Errorf("must specify at least one --user-id")
	}

	backend, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	users := user.NewService(backend.Users, backend.Transactions, backend.Budgets, nil, backend.Verifier())

	start := time.Now()
	ok, failed := jobs.Run(ctx, opts.workers, build(users, userIDs))
	fmt.Printf("Processed %d user(s) in %v: %d succeeded, %d failed\n", len(userIDs), time.Since(start).Round(time.Millisecond), ok, failed)

	if failed > 0 {
		return fmt.Errorf("%d job(s) failed", failed)
	}
	return nil
}

func openBackend(ctx context.Context) (*storage.Backend, error) {
	cfg, err := config.LoadStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	if cfg.Storage.Backend == config.BackendMemory {
		fmt.Fprintln(os.Stderr, "Warning: STORAGE_BACKEND=memory, changes are lost when the command exits")
	}
	return storage.Open(ctx, cfg)
}

func cleanIDs(ids []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
