package db

import (
	"context"
	"errors"

	"go-sitrep/types"
)

// ErrSitrepNotFound is returned by Get when no SITREP has that incident id.
var ErrSitrepNotFound = errors.New("sitrep not found")

// Store persists SITREPs. Save also updates the "latest" pointer so the most
// recent SITREP is retrievable without knowing its id.
type Store interface {
	Save(ctx context.Context, sitrep types.Sitrep) error
	Get(ctx context.Context, incidentID string) (types.Sitrep, error)
	List(ctx context.Context) ([]types.SitrepSummary, error)
}

func summaryOf(sitrep types.Sitrep) types.SitrepSummary {
	return types.SitrepSummary{
		IncidentID: sitrep.IncidentID,
		Title:      sitrep.CanonicalTitle,
		Status:     sitrep.Status,
		Location:   sitrep.Location.Name,
		CreatedAt:  sitrep.Audit.CreatedAt,
	}
}
