package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

// FileProfileStore keeps customer profiles in memory, seeded from a directory
// of <customerID>.json documents at startup. Registrations and updates live
// in memory only, like the original deployment.
type FileProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*domain.CustomerProfile
	log      *logger.Logger
}

// LoadFileProfileStore reads every *.json file in dir; the file name (minus
// extension) is the customer ID. Unreadable or malformed files are skipped
// with a warning rather than failing startup.
func LoadFileProfileStore(dir string, log *logger.Logger) (*FileProfileStore, error) {
	s := &FileProfileStore{
		profiles: make(map[string]*domain.CustomerProfile),
		log:      log.Named("profile_store"),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Warn("customer data directory not found, starting empty",
				logger.StringField("dir", dir))
			return s, nil
		}
		return nil, fmt.Errorf("reading customer data directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("skipping unreadable profile file",
				logger.StringField("path", path), logger.ErrorField(err))
			continue
		}

		var profile domain.CustomerProfile
		if err := json.Unmarshal(data, &profile); err != nil {
			s.log.Warn("skipping malformed profile file",
				logger.StringField("path", path), logger.ErrorField(err))
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		profile.ID = id
		s.profiles[id] = &profile
	}

	s.log.ProfilesLoaded(dir, len(s.profiles))
	return s, nil
}

// GetByID returns the profile for the given customer ID
func (s *FileProfileStore) GetByID(ctx context.Context, id string) (*domain.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return profile, nil
}

// GetByEmail scans for a profile with the given contact email
func (s *FileProfileStore) GetByEmail(ctx context.Context, email string) (*domain.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, profile := range s.profiles {
		if profile.Email() == email {
			return profile, nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new profile. The profile must carry an ID and a contact
// email not already in use.
func (s *FileProfileStore) Create(ctx context.Context, profile *domain.CustomerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := profile.Email()
	for _, existing := range s.profiles {
		if email != "" && existing.Email() == email {
			return ErrAlreadyExists
		}
	}

	s.profiles[profile.ID] = profile
	return nil
}

// Update merges the allowed sections of the patch into the stored profile
// and returns the updated record
func (s *FileProfileStore) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*domain.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated, sections, err := mergeProfile(profile, patch)
	if err != nil {
		return nil, fmt.Errorf("merging profile update: %w", err)
	}
	updated.ID = id
	updated.PasswordHash = profile.PasswordHash

	s.profiles[id] = updated
	s.log.ProfileUpdated(id, sections)
	return updated, nil
}

// Len returns the number of loaded profiles
func (s *FileProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
