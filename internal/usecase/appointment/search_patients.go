package appointment

import (
	"context"
	"strings"

	"github.com/carelink/clinic-scheduler/internal/cache"
	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/models"
)

// SearchPatients backs the scheduling typeahead. Results are cached
// briefly per facility+term; debouncing and cancellation of superseded
// searches belong to the caller.
type SearchPatients struct {
	repo  domain.Repository
	cache *cache.PatientSearch
}

func NewSearchPatients(
	repo domain.Repository,
	cache *cache.PatientSearch,
) *SearchPatients {
	return &SearchPatients{
		repo:  repo,
		cache: cache,
	}
}

func (uc *SearchPatients) Execute(
	ctx context.Context,
	facilityID uint,
	term string,
) ([]models.Patient, error) {

	// Empty term yields an empty result, not an error.
	if strings.TrimSpace(term) == "" {
		return []models.Patient{}, nil
	}

	if patients, ok := uc.cache.Get(ctx, facilityID, term); ok {
		return patients, nil
	}

	patients, err := uc.repo.SearchPatients(ctx, facilityID, term)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(ctx, facilityID, term, patients)
	return patients, nil
}
