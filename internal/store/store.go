// Package store supplies the engine's external collaborators: the catalog
// source and the profile store. Both hand out already-fetched snapshots;
// the recommendation engine itself never touches storage.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/banking/retirement-service/internal/domain"
)

var (
	// ErrNotFound indicates the requested profile does not exist
	ErrNotFound = errors.New("profile not found")

	// ErrAlreadyExists indicates a profile with the same email already exists
	ErrAlreadyExists = errors.New("profile already exists")
)

// ProfileStore supplies customer profile records by identifier
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domain.CustomerProfile, error)
	GetByEmail(ctx context.Context, email string) (*domain.CustomerProfile, error)
	Create(ctx context.Context, profile *domain.CustomerProfile) error
	Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*domain.CustomerProfile, error)
}

// updatableSections are the profile sections a PUT may touch. Anything else
// in the patch is ignored.
var updatableSections = []string{
	"personal_details",
	"financial_profile",
	"risk_profile",
	"financial_goals",
	"product_eligibility",
	"regulatory_compliance",
	"cognitive_digital_accessibility",
	"product_offerings",
	"tax_efficiency",
}

// mergeProfile applies a section patch to a profile. Keys inside each patched
// section are merged over the existing section, matching the original
// shallow per-section merge, and the result is decoded back into the typed
// profile. The input profile is not modified.
func mergeProfile(profile *domain.CustomerProfile, patch map[string]json.RawMessage) (*domain.CustomerProfile, []string, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}

	var touched []string
	for _, section := range updatableSections {
		incoming, ok := patch[section]
		if !ok {
			continue
		}
		merged, err := mergeSection(doc[section], incoming)
		if err != nil {
			return nil, nil, err
		}
		doc[section] = merged
		touched = append(touched, section)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, err
	}

	var updated domain.CustomerProfile
	if err := json.Unmarshal(out, &updated); err != nil {
		return nil, nil, err
	}
	return &updated, touched, nil
}

// mergeSection merges the keys of incoming over existing. A non-object on
// either side falls back to the incoming value wholesale.
func mergeSection(existing, incoming json.RawMessage) (json.RawMessage, error) {
	var base map[string]json.RawMessage
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &base); err != nil {
			base = nil
		}
	}
	if base == nil {
		base = map[string]json.RawMessage{}
	}

	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(incoming, &overlay); err != nil {
		return incoming, nil
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}
