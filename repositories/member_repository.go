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
	ErrMemberNotFound       = errors.New("profile member not found")
	ErrMemberProfileInvalid = errors.New("profile member references unknown profile")
)

type MemberRepository interface {
	FindByProfileAndPlayer(ctx context.Context, profileID, playerUUID string) (*models.ProfileMember, error)
	// Upsert creates the (profile, player) member or refreshes its
	// selected flag, clears was_removed and bumps last_updated. The
	// member's ID is populated either way.
	Upsert(ctx context.Context, member *models.ProfileMember) error
	UpdateCollections(ctx context.Context, memberID string, collections map[string]int64) error
	UpdateSkills(ctx context.Context, memberID string, skills models.Skills) error
	// ReplacePets discards the member's full pet list and rebuilds it.
	ReplacePets(ctx context.Context, memberID string, pets []models.Pet) error
	ListByPlayer(ctx context.Context, playerUUID string) ([]models.ProfileMember, error)
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

func (r *postgresMemberRepository) FindByProfileAndPlayer(ctx context.Context, profileID, playerUUID string) (*models.ProfileMember, error) {
	query := `
		SELECT id, player_uuid, profile_id, is_selected, was_removed, collections, skills, last_updated
		FROM profile_members
		WHERE profile_id = $1 AND player_uuid = $2`

	m, err := scanMember(r.db.QueryRowContext(ctx, query, profileID, playerUUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member %s/%s: %w", profileID, playerUUID, err)
	}
	return m, nil
}

func (r *postgresMemberRepository) Upsert(ctx context.Context, member *models.ProfileMember) error {
	query := `
		INSERT INTO profile_members (id, player_uuid, profile_id, is_selected, was_removed, collections, skills, last_updated)
		VALUES (gen_random_uuid(), $1, $2, $3, FALSE, '{}'::jsonb, '{}'::jsonb, NOW())
		ON CONFLICT (profile_id, player_uuid) DO UPDATE SET
			is_selected  = EXCLUDED.is_selected,
			was_removed  = FALSE,
			last_updated = NOW()
		RETURNING id, last_updated`

	err := r.db.QueryRowContext(ctx, query,
		member.PlayerUUID,
		member.ProfileID,
		member.IsSelected,
	).Scan(&member.ID, &member.LastUpdated)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMemberProfileInvalid
		}
		return fmt.Errorf("failed to upsert member %s/%s: %w", member.ProfileID, member.PlayerUUID, err)
	}

	member.WasRemoved = false
	return nil
}

func (r *postgresMemberRepository) UpdateCollections(ctx context.Context, memberID string, collections map[string]int64) error {
	data, err := marshalJSONB(collections)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE profile_members SET collections = $2::jsonb WHERE id = $1`, memberID, data)
	if err != nil {
		return fmt.Errorf("failed to update collections for member %s: %w", memberID, err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) UpdateSkills(ctx context.Context, memberID string, skills models.Skills) error {
	data, err := marshalJSONB(skills)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE profile_members SET skills = $2::jsonb WHERE id = $1`, memberID, data)
	if err != nil {
		return fmt.Errorf("failed to update skills for member %s: %w", memberID, err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) ReplacePets(ctx context.Context, memberID string, pets []models.Pet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin pets transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pets WHERE profile_member_id = $1`, memberID); err != nil {
		return fmt.Errorf("failed to clear pets for member %s: %w", memberID, err)
	}

	query := `
		INSERT INTO pets (profile_member_id, uuid, type, tier, exp, active, held_item, candy_used, skin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, pet := range pets {
		if _, err := tx.ExecContext(ctx, query,
			memberID, pet.UUID, pet.Type, pet.Tier, pet.Exp, pet.Active,
			pet.HeldItem, pet.CandyUsed, pet.Skin,
		); err != nil {
			return fmt.Errorf("failed to insert pet for member %s: %w", memberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pets for member %s: %w", memberID, err)
	}
	return nil
}

func (r *postgresMemberRepository) ListByPlayer(ctx context.Context, playerUUID string) ([]models.ProfileMember, error) {
	query := `
		SELECT id, player_uuid, profile_id, is_selected, was_removed, collections, skills, last_updated
		FROM profile_members
		WHERE player_uuid = $1
		ORDER BY last_updated DESC`

	rows, err := r.db.QueryContext(ctx, query, playerUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members for player %s: %w", playerUUID, err)
	}
	defer rows.Close()

	var members []models.ProfileMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member rows: %w", err)
	}

	return members, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (*models.ProfileMember, error) {
	var m models.ProfileMember
	var collections, skills []byte

	if err := row.Scan(
		&m.ID,
		&m.PlayerUUID,
		&m.ProfileID,
		&m.IsSelected,
		&m.WasRemoved,
		&collections,
		&skills,
		&m.LastUpdated,
	); err != nil {
		return nil, err
	}

	m.Collections = make(map[string]int64)
	if err := unmarshalJSONB(collections, &m.Collections); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(skills, &m.Skills); err != nil {
		return nil, err
	}

	return &m, nil
}
