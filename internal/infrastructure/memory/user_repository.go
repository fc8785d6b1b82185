package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetcoach/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*user.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, params user.CreateUserParams) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := user.NormalizeEmail(params.Email)
	if _, ok := r.byEmail[email]; ok {
		return nil, user.ErrEmailTaken
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := r.byID[id]; ok {
		return nil, user.ErrEmailTaken
	}

	u := &user.User{
		ID:           id,
		Email:        email,
		DisplayName:  params.DisplayName,
		Provider:     params.Provider,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[id] = u
	r.byEmail[email] = id

	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

var _ user.Repository = (*UserRepository)(nil)
