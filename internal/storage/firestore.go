package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dgellow/shop-admin/internal/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStorage keeps the login log in a Google Cloud Firestore collection,
// one document per Google subject.
type FirestoreStorage struct {
	client     *firestore.Client
	projectID  string
	collection string
}

var _ LoginStore = (*FirestoreStorage)(nil)

// LoginDoc represents a login record document in Firestore
type LoginDoc struct {
	Subject    string    `firestore:"sub"`
	Email      string    `firestore:"email"`
	Name       string    `firestore:"name,omitempty"`
	FirstSeen  time.Time `firestore:"first_seen"`
	LastSeen   time.Time `firestore:"last_seen"`
	LoginCount int64     `firestore:"login_count"`
}

func (d LoginDoc) record() LoginRecord {
	return LoginRecord(d)
}

// NewFirestoreStorage creates a new Firestore storage instance
func NewFirestoreStorage(ctx context.Context, projectID, database, collection string) (*FirestoreStorage, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection is required")
	}

	var client *firestore.Client
	var err error

	if database != "" && database != "(default)" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, database)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	log.LogInfoWithFields("storage", "Connected to Firestore", map[string]any{
		"project":    projectID,
		"database":   database,
		"collection": collection,
	})

	return &FirestoreStorage{
		client:     client,
		projectID:  projectID,
		collection: collection,
	}, nil
}

// RecordLogin creates or refreshes the record for subject in one transaction
func (s *FirestoreStorage) RecordLogin(ctx context.Context, subject, email, name string) error {
	ref := s.client.Collection(s.collection).Doc(subject)
	now := time.Now()

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return tx.Set(ref, LoginDoc{
				Subject:    subject,
				Email:      email,
				Name:       name,
				FirstSeen:  now,
				LastSeen:   now,
				LoginCount: 1,
			})
		}
		if err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "email", Value: email},
			{Path: "name", Value: name},
			{Path: "last_seen", Value: now},
			{Path: "login_count", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// GetLogin returns the record for subject
func (s *FirestoreStorage) GetLogin(ctx context.Context, subject string) (*LoginRecord, error) {
	doc, err := s.client.Collection(s.collection).Doc(subject).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrLoginNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get login: %w", err)
	}

	var loginDoc LoginDoc
	if err := doc.DataTo(&loginDoc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login: %w", err)
	}
	record := loginDoc.record()
	return &record, nil
}

// ListLogins returns all records, most recent login first
func (s *FirestoreStorage) ListLogins(ctx context.Context) ([]LoginRecord, error) {
	iter := s.client.Collection(s.collection).OrderBy("last_seen", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	records := []LoginRecord{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate logins: %w", err)
		}

		var loginDoc LoginDoc
		if err := doc.DataTo(&loginDoc); err != nil {
			log.LogError("Failed to unmarshal login (sub: %s): %v", doc.Ref.ID, err)
			continue
		}
		records = append(records, loginDoc.record())
	}

	return records, nil
}

// Close closes the Firestore client
func (s *FirestoreStorage) Close() error {
	return s.client.Close()
}
