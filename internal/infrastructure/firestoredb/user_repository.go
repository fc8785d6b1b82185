package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"budgetcoach/internal/domain/user"
)

type userDoc struct {
	Email        string    `firestore:"email"`
	DisplayName  string    `firestore:"displayName,omitempty"`
	Provider     string    `firestore:"provider"`
	PasswordHash string    `firestore:"passwordHash,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

func decodeUser(snap *firestore.DocumentSnapshot) (*user.User, error) {
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
	}
	return &user.User{
		ID:           snap.Ref.ID,
		Email:        d.Email,
		DisplayName:  d.DisplayName,
		Provider:     d.Provider,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// UserRepository stores users keyed by their ID. Firestore has no unique
// index, so email uniqueness is checked inside a transaction.
type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) col() *firestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	ref := r.col().NewDoc()
	if params.ID != "" {
		ref = r.col().Doc(params.ID)
	}

	doc := userDoc{
		Email:        user.NormalizeEmail(params.Email),
		DisplayName:  params.DisplayName,
		Provider:     params.Provider,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(r.col().Where(fieldEmail, "==", doc.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return user.ErrEmailTaken
		}
		return tx.Create(ref, doc)
	})
	if errors.Is(err, user.ErrEmailTaken) || isAlreadyExists(err) {
		return nil, user.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user.User{
		ID:           ref.ID,
		Email:        doc.Email,
		DisplayName:  doc.DisplayName,
		Provider:     doc.Provider,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return decodeUser(snap)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	docs, err := collect(r.col().Where(fieldEmail, "==", user.NormalizeEmail(email)).Limit(1).Documents(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, user.ErrNotFound
	}
	return decodeUser(docs[0])
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return user.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

var _ user.Repository = (*UserRepository)(nil)
