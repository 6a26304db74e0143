package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-sitrep/types"
)

const sitrepsCollection = "sitreps"
const latestDocPath = "meta/latest"

// firestoreClient is a singleton Firestore client instance.
var (
	firestoreClient *firestore.Client
	firestoreOnce   sync.Once
	firestoreErr    error
)

// InitFirestore initializes and returns a Firestore client from the
// base64-encoded service account in FIREBASE_CREDENTIALS.
func InitFirestore() (*firestore.Client, error) {
	firestoreOnce.Do(func() {
		encodedCreds := os.Getenv("FIREBASE_CREDENTIALS")
		if encodedCreds == "" {
			firestoreErr = fmt.Errorf("FIREBASE_CREDENTIALS environment variable not set")
			return
		}

		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			firestoreErr = fmt.Errorf("failed to decode Firestore credentials: %w", err)
			return
		}

		opt := option.WithCredentialsJSON(creds)
		app, err := firebase.NewApp(context.Background(), nil, opt)
		if err != nil {
			firestoreErr = fmt.Errorf("error initializing Firebase app: %w", err)
			return
		}

		firestoreClient, firestoreErr = app.Firestore(context.Background())
	})

	return firestoreClient, firestoreErr
}

// CloseFirestore closes the Firestore client.
func CloseFirestore() {
	if firestoreClient != nil {
		firestoreClient.Close()
	}
}

// FirestoreStore keeps SITREP documents in the 'sitreps' collection, keyed
// by incident id, with a meta/latest pointer document.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Save(ctx context.Context, sitrep types.Sitrep) error {
	if sitrep.IncidentID == "" {
		return fmt.Errorf("cannot save sitrep with empty incident id")
	}

	if _, err := s.client.Collection(sitrepsCollection).Doc(sitrep.IncidentID).Set(ctx, sitrep); err != nil {
		return fmt.Errorf("saving sitrep %s: %w", sitrep.IncidentID, err)
	}
	if _, err := s.client.Doc(latestDocPath).Set(ctx, map[string]any{"incident_id": sitrep.IncidentID}); err != nil {
		return fmt.Errorf("updating latest sitrep pointer: %w", err)
	}

	log.Printf("Saved sitrep %s to collection '%s'", sitrep.IncidentID, sitrepsCollection)
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, incidentID string) (types.Sitrep, error) {
	docSnap, err := s.client.Collection(sitrepsCollection).Doc(incidentID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return types.Sitrep{}, ErrSitrepNotFound
	}
	if err != nil {
		return types.Sitrep{}, fmt.Errorf("getting sitrep %s: %w", incidentID, err)
	}

	var sitrep types.Sitrep
	if err := docSnap.DataTo(&sitrep); err != nil {
		return types.Sitrep{}, fmt.Errorf("converting document %s to sitrep: %w", incidentID, err)
	}
	return sitrep, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]types.SitrepSummary, error) {
	summaries := []types.SitrepSummary{}

	iter := s.client.Collection(sitrepsCollection).
		OrderBy("Audit.CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating sitreps collection: %w", err)
		}

		var sitrep types.Sitrep
		if err := doc.DataTo(&sitrep); err != nil {
			log.Printf("Warning: error converting document %s to sitrep: %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		summaries = append(summaries, summaryOf(sitrep))
	}

	return summaries, nil
}
