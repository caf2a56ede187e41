package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/carelink/clinic-scheduler/internal/models"
)

// PatientSearch caches typeahead results per facility+term for a short
// window, so a user re-typing the same prefix does not hammer the
// database. Every failure degrades to a miss; the cache is never a
// hard dependency.
type PatientSearch struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPatientSearch(rdb *redis.Client) *PatientSearch {
	return &PatientSearch{
		rdb: rdb,
		ttl: 30 * time.Second,
	}
}

func key(facilityID uint, term string) string {
	return fmt.Sprintf("patient_search:%d:%s", facilityID, strings.ToLower(strings.TrimSpace(term)))
}

func (c *PatientSearch) Get(ctx context.Context, facilityID uint, term string) ([]models.Patient, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key(facilityID, term)).Bytes()
	if err != nil {
		return nil, false
	}

	var patients []models.Patient
	if err := json.Unmarshal(raw, &patients); err != nil {
		return nil, false
	}
	return patients, true
}

func (c *PatientSearch) Set(ctx context.Context, facilityID uint, term string, patients []models.Patient) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(patients)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key(facilityID, term), raw, c.ttl)
}
