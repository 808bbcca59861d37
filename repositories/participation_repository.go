package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/skyblock-api/models"
	"github.com/lib/pq"
)

var (
	ErrParticipationNotFound = errors.New("contest participation not found")
	ErrParticipationConflict = errors.New("participation already exists for this member and contest")
)

type ParticipationRepository interface {
	Find(ctx context.Context, memberID string, contestID int64) (*models.ContestParticipation, error)
	// Create inserts a new participation; the (member, contest) pair is
	// unique and a duplicate returns ErrParticipationConflict.
	Create(ctx context.Context, p *models.ContestParticipation) error
	Update(ctx context.Context, p *models.ContestParticipation) error
	ListByContest(ctx context.Context, contestID int64) ([]models.ContestParticipation, error)
	// ListByPlayer returns the player's full contest history across all
	// profile memberships, newest contest first.
	ListByPlayer(ctx context.Context, playerUUID string) ([]models.ContestParticipation, error)
}

type postgresParticipationRepository struct {
	db *sql.DB
}

func NewPostgresParticipationRepository(db *sql.DB) ParticipationRepository {
	return &postgresParticipationRepository{db: db}
}

func (r *postgresParticipationRepository) Find(ctx context.Context, memberID string, contestID int64) (*models.ContestParticipation, error) {
	query := `
		SELECT profile_member_id, jacob_contest_id, collected, position, medal_earned
		FROM contest_participations
		WHERE profile_member_id = $1 AND jacob_contest_id = $2`

	var p models.ContestParticipation
	err := r.db.QueryRowContext(ctx, query, memberID, contestID).Scan(
		&p.ProfileMemberID, &p.JacobContestID, &p.Collected, &p.Position, &p.MedalEarned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, fmt.Errorf("failed to find participation %s/%d: %w", memberID, contestID, err)
	}
	return &p, nil
}

func (r *postgresParticipationRepository) Create(ctx context.Context, p *models.ContestParticipation) error {
	query := `
		INSERT INTO contest_participations (profile_member_id, jacob_contest_id, collected, position, medal_earned)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		p.ProfileMemberID, p.JacobContestID, p.Collected, p.Position, p.MedalEarned)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrParticipationConflict
		}
		return fmt.Errorf("failed to create participation %s/%d: %w", p.ProfileMemberID, p.JacobContestID, err)
	}
	return nil
}

func (r *postgresParticipationRepository) Update(ctx context.Context, p *models.ContestParticipation) error {
	query := `
		UPDATE contest_participations
		SET collected = $3, position = $4, medal_earned = $5
		WHERE profile_member_id = $1 AND jacob_contest_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		p.ProfileMemberID, p.JacobContestID, p.Collected, p.Position, p.MedalEarned)
	if err != nil {
		return fmt.Errorf("failed to update participation %s/%d: %w", p.ProfileMemberID, p.JacobContestID, err)
	}
	return checkAffectedRows(result, ErrParticipationNotFound)
}

func (r *postgresParticipationRepository) ListByContest(ctx context.Context, contestID int64) ([]models.ContestParticipation, error) {
	query := `
		SELECT cp.profile_member_id, cp.jacob_contest_id, cp.collected, cp.position, cp.medal_earned,
		       pm.player_uuid, COALESCE(ma.name, '')
		FROM contest_participations cp
		JOIN profile_members pm ON pm.id = cp.profile_member_id
		LEFT JOIN minecraft_accounts ma ON ma.id = pm.player_uuid
		WHERE cp.jacob_contest_id = $1
		ORDER BY cp.position`

	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations for contest %d: %w", contestID, err)
	}
	defer rows.Close()

	var participations []models.ContestParticipation
	for rows.Next() {
		var p models.ContestParticipation
		if err := rows.Scan(
			&p.ProfileMemberID, &p.JacobContestID, &p.Collected, &p.Position, &p.MedalEarned,
			&p.PlayerUUID, &p.PlayerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participation row: %w", err)
		}
		participations = append(participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participation rows: %w", err)
	}

	return participations, nil
}

func (r *postgresParticipationRepository) ListByPlayer(ctx context.Context, playerUUID string) ([]models.ContestParticipation, error) {
	query := `
		SELECT cp.profile_member_id, cp.jacob_contest_id, cp.collected, cp.position, cp.medal_earned,
		       jc.timestamp, jc.crop
		FROM contest_participations cp
		JOIN profile_members pm ON pm.id = cp.profile_member_id
		JOIN jacob_contests jc ON jc.id = cp.jacob_contest_id
		WHERE pm.player_uuid = $1
		ORDER BY jc.timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query, playerUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations for player %s: %w", playerUUID, err)
	}
	defer rows.Close()

	var participations []models.ContestParticipation
	for rows.Next() {
		var p models.ContestParticipation
		if err := rows.Scan(
			&p.ProfileMemberID, &p.JacobContestID, &p.Collected, &p.Position, &p.MedalEarned,
			&p.Timestamp, &p.Crop,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participation row: %w", err)
		}
		p.PlayerUUID = playerUUID
		participations = append(participations, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participation rows: %w", err)
	}

	return participations, nil
}
