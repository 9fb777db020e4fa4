package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

// PostgresProfileStore backs the profile store with a customers table
// carrying the profile document as JSONB.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresProfileStore connects to PostgreSQL and verifies the connection
func NewPostgresProfileStore(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*PostgresProfileStore, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresProfileStore{
		pool: pool,
		log:  log.Named("postgres_profile_store"),
	}, nil
}

// Close releases the connection pool
func (s *PostgresProfileStore) Close() {
	s.pool.Close()
}

// GetByID returns the profile for the given customer ID
func (s *PostgresProfileStore) GetByID(ctx context.Context, id string) (*domain.CustomerProfile, error) {
	const query = `SELECT profile FROM customers WHERE id = $1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	return decodeProfile(id, raw)
}

// GetByEmail returns the profile with the given contact email
func (s *PostgresProfileStore) GetByEmail(ctx context.Context, email string) (*domain.CustomerProfile, error) {
	const query = `SELECT id, profile FROM customers WHERE email = $1`

	var id string
	var raw []byte
	err := s.pool.QueryRow(ctx, query, email).Scan(&id, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile by email: %w", err)
	}

	return decodeProfile(id, raw)
}

// Create inserts a new profile row
func (s *PostgresProfileStore) Create(ctx context.Context, profile *domain.CustomerProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	const query = `
		INSERT INTO customers (id, email, profile, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (email) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, profile.ID, profile.Email(), raw)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Update merges the allowed sections of the patch into the stored profile
// and persists the result
func (s *PostgresProfileStore) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*domain.CustomerProfile, error) {
	profile, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, sections, err := mergeProfile(profile, patch)
	if err != nil {
		return nil, fmt.Errorf("merging profile update: %w", err)
	}
	updated.ID = id
	updated.PasswordHash = profile.PasswordHash

	raw, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}

	const query = `UPDATE customers SET profile = $2, email = $3, updated_at = now() WHERE id = $1`
	if _, err := s.pool.Exec(ctx, query, id, raw, updated.Email()); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.log.ProfileUpdated(id, sections)
	return updated, nil
}

func decodeProfile(id string, raw []byte) (*domain.CustomerProfile, error) {
	var profile domain.CustomerProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", id, err)
	}
	profile.ID = id
	return &profile, nil
}
