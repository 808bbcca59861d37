package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/skyblock-api/models"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	// Upsert creates the profile on first sighting or refreshes its
	// mutable fields (name, game mode, deletion flag cleared) in place.
	Upsert(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, profileID string) (*models.Profile, error)
	FlagDeleted(ctx context.Context, profileID string) error
	// MergeCraftedMinions merges the given minion bitstrings into the
	// profile's jsonb map in a single statement, so two concurrent
	// ingestions cannot lose each other's keys.
	MergeCraftedMinions(ctx context.Context, profileID string, minions map[string]string) error
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (profile_id, profile_name, game_mode, is_deleted, crafted_minions, last_updated)
		VALUES ($1, $2, $3, FALSE, '{}'::jsonb, NOW())
		ON CONFLICT (profile_id) DO UPDATE SET
			profile_name = EXCLUDED.profile_name,
			game_mode    = EXCLUDED.game_mode,
			is_deleted   = FALSE,
			last_updated = NOW()
		RETURNING last_updated`

	err := r.db.QueryRowContext(ctx, query,
		profile.ProfileID,
		profile.ProfileName,
		profile.GameMode,
	).Scan(&profile.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.ProfileID, err)
	}

	profile.IsDeleted = false
	return nil
}

func (r *postgresProfileRepository) FindByID(ctx context.Context, profileID string) (*models.Profile, error) {
	query := `
		SELECT profile_id, profile_name, game_mode, is_deleted, crafted_minions, last_updated
		FROM profiles
		WHERE profile_id = $1`

	var p models.Profile
	var minions []byte
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&p.ProfileID,
		&p.ProfileName,
		&p.GameMode,
		&p.IsDeleted,
		&minions,
		&p.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile %s: %w", profileID, err)
	}

	p.CraftedMinions = make(map[string]string)
	if err := unmarshalJSONB(minions, &p.CraftedMinions); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresProfileRepository) FlagDeleted(ctx context.Context, profileID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET is_deleted = TRUE WHERE profile_id = $1`, profileID)
	if err != nil {
		return fmt.Errorf("failed to flag profile %s deleted: %w", profileID, err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) MergeCraftedMinions(ctx context.Context, profileID string, minions map[string]string) error {
	if len(minions) == 0 {
		return nil
	}

	data, err := marshalJSONB(minions)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET crafted_minions = crafted_minions || $2::jsonb WHERE profile_id = $1`,
		profileID, data)
	if err != nil {
		return fmt.Errorf("failed to merge crafted minions for profile %s: %w", profileID, err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}
