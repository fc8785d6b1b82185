package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/user"
)

// AccountService is the part of user.Service the account jobs use
type AccountService interface {
	SeedSampleData(ctx context.Context, userID string, now time.Time) (*user.Seed, error)
	PurgeData(ctx context.Context, userID string) (*user.Teardown, error)
	DeleteAccount(ctx context.Context, userID string) (*user.Teardown, error)
}

// SeedJob stores the demo ledger and budgets for one user
type SeedJob struct {
	userID   string
	accounts AccountService
	now      time.Time
}

func NewSeedJob(userID string, accounts AccountService, now time.Time) *SeedJob {
	return &SeedJob{userID: userID, accounts: accounts, now: now}
}

func (j *SeedJob) Execute(ctx context.Context) error {
	seed, err := j.accounts.SeedSampleData(ctx, j.userID, j.now)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      j.userID,
		"transactions": seed.Transactions,
		"budgets":      seed.Budgets,
	}).Info("Sample data seeded")
	return nil
}

func (j *SeedJob) UserID() string { return j.userID }

func (j *SeedJob) Description() string {
	return fmt.Sprintf("Seed sample data for user %s", j.userID)
}

// TeardownJob removes a user's transactions and budgets. With deleteUser
// the account itself is removed too.
type TeardownJob struct {
	userID     string
	accounts   AccountService
	deleteUser bool
}

func NewTeardownJob(userID string, accounts AccountService, deleteUser bool) *TeardownJob {
	return &TeardownJob{userID: userID, accounts: accounts, deleteUser: deleteUser}
}

func (j *TeardownJob) Execute(ctx context.Context) error {
	var (
		res *user.Teardown
		err error
	)
	if j.deleteUser {
		res, err = j.accounts.DeleteAccount(ctx, j.userID)
	} else {
		res, err = j.accounts.PurgeData(ctx, j.userID)
	}
	if err != nil {
		return fmt.Errorf("teardown failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      j.userID,
		"transactions": res.Transactions,
		"budgets":      res.Budgets,
		"account":      j.deleteUser,
	}).Info("User data removed")
	return nil
}

func (j *TeardownJob) UserID() string { return j.userID }

func (j *TeardownJob) Description() string {
	if j.deleteUser {
		return fmt.Sprintf("Delete account of user %s", j.userID)
	}
	return fmt.Sprintf("Remove data of user %s", j.userID)
}
