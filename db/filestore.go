package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go-sitrep/types"
)

const latestFilename = "sitrep.json"

// FileStore keeps one JSON file per SITREP under Dir, plus sitrep.json as
// the latest pointer.
type FileStore struct {
	Dir string

	mu sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "sitreps"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sitrep dir %s: %w", dir, err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) Save(ctx context.Context, sitrep types.Sitrep) error {
	if sitrep.IncidentID == "" {
		return fmt.Errorf("cannot save sitrep with empty incident id")
	}

	raw, err := json.MarshalIndent(sitrep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sitrep %s: %w", sitrep.IncidentID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir, sitrep.IncidentID+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing sitrep %s: %w", sitrep.IncidentID, err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, latestFilename), raw, 0o644); err != nil {
		return fmt.Errorf("writing latest sitrep pointer: %w", err)
	}

	log.Printf("Saved sitrep %s to %s", sitrep.IncidentID, path)
	return nil
}

func (s *FileStore) Get(ctx context.Context, incidentID string) (types.Sitrep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(s.Dir, incidentID+".json"))
	if os.IsNotExist(err) {
		return types.Sitrep{}, ErrSitrepNotFound
	}
	if err != nil {
		return types.Sitrep{}, fmt.Errorf("reading sitrep %s: %w", incidentID, err)
	}

	var sitrep types.Sitrep
	if err := json.Unmarshal(raw, &sitrep); err != nil {
		return types.Sitrep{}, fmt.Errorf("decoding sitrep %s: %w", incidentID, err)
	}
	return sitrep, nil
}

func (s *FileStore) List(ctx context.Context) ([]types.SitrepSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading sitrep dir %s: %w", s.Dir, err)
	}

	summaries := []types.SitrepSummary{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == latestFilename || !strings.HasSuffix(name, ".json") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(s.Dir, name))
		if err != nil {
			log.Printf("Warning: skipping unreadable sitrep file %s: %v", name, err)
			continue
		}
		var sitrep types.Sitrep
		if err := json.Unmarshal(raw, &sitrep); err != nil {
			log.Printf("Warning: skipping malformed sitrep file %s: %v", name, err)
			continue
		}
		summaries = append(summaries, summaryOf(sitrep))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}
