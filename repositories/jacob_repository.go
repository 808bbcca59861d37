package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/skyblock-api/models"
	"github.com/Dosada05/skyblock-api/skyblock"
)

var ErrJacobDataNotFound = errors.New("jacob data not found")

type JacobRepository interface {
	FindByMember(ctx context.Context, memberID string) (*models.JacobData, error)
	// Upsert creates the row or overwrites medal inventory and perk
	// levels; earned counters are untouched here.
	Upsert(ctx context.Context, jacob *models.JacobData) error
	TouchContestsUpdated(ctx context.Context, memberID string) error
	// RecomputeEarnedMedals rebuilds the earned counters from the
	// member's persisted participations in one statement. Idempotent by
	// construction, safe to run after every ingestion.
	RecomputeEarnedMedals(ctx context.Context, memberID string) error
}

type postgresJacobRepository struct {
	db *sql.DB
}

func NewPostgresJacobRepository(db *sql.DB) JacobRepository {
	return &postgresJacobRepository{db: db}
}

func (r *postgresJacobRepository) FindByMember(ctx context.Context, memberID string) (*models.JacobData, error) {
	query := `
		SELECT profile_member_id, medals_gold, medals_silver, medals_bronze,
		       perk_double_drops, perk_level_cap,
		       earned_gold, earned_silver, earned_bronze, contests_last_updated
		FROM jacob_data
		WHERE profile_member_id = $1`

	var j models.JacobData
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(
		&j.ProfileMemberID,
		&j.MedalsGold, &j.MedalsSilver, &j.MedalsBronze,
		&j.PerkDoubleDrops, &j.PerkLevelCap,
		&j.EarnedGold, &j.EarnedSilver, &j.EarnedBronze,
		&j.ContestsLastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJacobDataNotFound
		}
		return nil, fmt.Errorf("failed to find jacob data for member %s: %w", memberID, err)
	}
	return &j, nil
}

func (r *postgresJacobRepository) Upsert(ctx context.Context, jacob *models.JacobData) error {
	query := `
		INSERT INTO jacob_data (profile_member_id, medals_gold, medals_silver, medals_bronze,
		                        perk_double_drops, perk_level_cap,
		                        earned_gold, earned_silver, earned_bronze, contests_last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, to_timestamp(0))
		ON CONFLICT (profile_member_id) DO UPDATE SET
			medals_gold       = EXCLUDED.medals_gold,
			medals_silver     = EXCLUDED.medals_silver,
			medals_bronze     = EXCLUDED.medals_bronze,
			perk_double_drops = EXCLUDED.perk_double_drops,
			perk_level_cap    = EXCLUDED.perk_level_cap`

	_, err := r.db.ExecContext(ctx, query,
		jacob.ProfileMemberID,
		jacob.MedalsGold, jacob.MedalsSilver, jacob.MedalsBronze,
		jacob.PerkDoubleDrops, jacob.PerkLevelCap,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert jacob data for member %s: %w", jacob.ProfileMemberID, err)
	}
	return nil
}

func (r *postgresJacobRepository) TouchContestsUpdated(ctx context.Context, memberID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jacob_data SET contests_last_updated = NOW() WHERE profile_member_id = $1`, memberID)
	if err != nil {
		return fmt.Errorf("failed to touch contests timestamp for member %s: %w", memberID, err)
	}
	return checkAffectedRows(result, ErrJacobDataNotFound)
}

func (r *postgresJacobRepository) RecomputeEarnedMedals(ctx context.Context, memberID string) error {
	query := `
		UPDATE jacob_data SET
			earned_gold   = s.gold,
			earned_silver = s.silver,
			earned_bronze = s.bronze
		FROM (
			SELECT
				COUNT(*) FILTER (WHERE medal_earned = $2) AS gold,
				COUNT(*) FILTER (WHERE medal_earned = $3) AS silver,
				COUNT(*) FILTER (WHERE medal_earned = $4) AS bronze
			FROM contest_participations
			WHERE profile_member_id = $1
		) s
		WHERE profile_member_id = $1`

	result, err := r.db.ExecContext(ctx, query, memberID,
		skyblock.MedalGold, skyblock.MedalSilver, skyblock.MedalBronze)
	if err != nil {
		return fmt.Errorf("failed to recompute earned medals for member %s: %w", memberID, err)
	}
	return checkAffectedRows(result, ErrJacobDataNotFound)
}
