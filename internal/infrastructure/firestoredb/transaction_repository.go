package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"

	"budgetcoach/internal/domain/transaction"
)

// docDateLayout matches the ISO strings the web client stores, so documents
// from both writers sort together on the date field.
const docDateLayout = "2006-01-02T15:04:05.000Z"

// transactionDoc.Date holds a string on write. Reads also accept Firestore
// timestamps.
type transactionDoc struct {
	UserID      string  `firestore:"userId"`
	Date        any     `firestore:"date"`
	Description string  `firestore:"description"`
	Category    string  `firestore:"category"`
	Amount      float64 `firestore:"amount"`
	Type        string  `firestore:"type,omitempty"`
}

func formatDocDate(t time.Time) string {
	return t.UTC().Format(docDateLayout)
}

// parseDocDate reads a stored date: an ISO 8601 string with or without a
// time part, or a timestamp.
func parseDocDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, d); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", d)
	case nil:
		return time.Time{}, errors.New("date is missing")
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func newTransactionDoc(p transaction.CreateParams) transactionDoc {
	return transactionDoc{
		UserID:      p.UserID,
		Date:        formatDocDate(p.Date),
		Description: p.Description,
		Category:    p.Category,
		Amount:      p.Amount,
		Type:        p.Type,
	}
}

func (d transactionDoc) toDomain(id string) (*transaction.Transaction, error) {
	date, err := parseDocDate(d.Date)
	if err != nil {
		return nil, err
	}
	return &transaction.Transaction{
		ID:          id,
		UserID:      d.UserID,
		Date:        date,
		Description: d.Description,
		Category:    d.Category,
		Amount:      d.Amount,
		Type:        d.Type,
	}, nil
}

func decodeTransaction(snap *firestore.DocumentSnapshot) (*transaction.Transaction, error) {
	var d transactionDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", snap.Ref.ID, err)
	}
	t, err := d.toDomain(snap.Ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", snap.Ref.ID, err)
	}
	return t, nil
}

type TransactionRepository struct {
	client *firestore.Client
}

func NewTransactionRepository(client *firestore.Client) *TransactionRepository {
	return &TransactionRepository{client: client}
}

func (r *TransactionRepository) col() *firestore.CollectionRef {
	return r.client.Collection(transactionsCollection)
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	doc := newTransactionDoc(params)
	ref, _, err := r.col().Add(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}
	return doc.toDomain(ref.ID)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, transaction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return decodeTransaction(snap)
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID string, limit int, after string) ([]*transaction.Transaction, error) {
	q := r.col().Where(fieldUserID, "==", userID).OrderBy(fieldDate, firestore.Desc)

	if after != "" {
		cursor, err := r.col().Doc(after).Get(ctx)
		if isNotFound(err) {
			return nil, transaction.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load cursor: %w", err)
		}
		q = q.StartAfter(cursor)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	docs, err := collect(q.Documents(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	list := make([]*transaction.Transaction, 0, len(docs))
	for _, snap := range docs {
		t, err := decodeTransaction(snap)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Skipping unreadable transaction")
			continue
		}
		list = append(list, t)
	}
	return list, nil
}

func (r *TransactionRepository) Replace(ctx context.Context, id string, params transaction.CreateParams) (*transaction.Transaction, error) {
	ref := r.col().Doc(id)
	doc := newTransactionDoc(params)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isNotFound(err) {
				return transaction.ErrNotFound
			}
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to replace transaction: %w", err)
	}
	return doc.toDomain(id)
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return transaction.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) DeleteAllByUserID(ctx context.Context, userID string) (int, error) {
	return deleteWhereUser(ctx, r.client, transactionsCollection, userID)
}

var _ transaction.Repository = (*TransactionRepository)(nil)
