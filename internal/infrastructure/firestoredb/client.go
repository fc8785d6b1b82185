// Package firestoredb implements the domain repositories on Cloud Firestore.
// Collections and field names match the documents written by the web client.
package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names
const (
	transactionsCollection = "transactions"
	budgetsCollection      = "budgets"
	usersCollection        = "users"
)

// Field paths used in queries
const (
	fieldUserID   = "userId"
	fieldDate     = "date"
	fieldCategory = "category"
	fieldSpent    = "spent"
	fieldEmail    = "email"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// collect drains a document iterator
func collect(it *firestore.DocumentIterator) ([]*firestore.DocumentSnapshot, error) {
	defer it.Stop()

	var docs []*firestore.DocumentSnapshot
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

// deleteWhereUser removes every document of the collection owned by userID
// through a BulkWriter and returns the number of deleted documents.
func deleteWhereUser(ctx context.Context, client *firestore.Client, collection, userID string) (int, error) {
	docs, err := collect(client.Collection(collection).Where(fieldUserID, "==", userID).Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to queue delete of %s/%s: %w", collection, doc.Ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	if firstErr != nil {
		return deleted, fmt.Errorf("failed to delete %s: %w", collection, firstErr)
	}
	return deleted, nil
}
