package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"time"

	"github.com/Dosada05/skyblock-api/models"
)

var ErrAccountNotFound = errors.New("minecraft account not found")

// AccountRepository is the identity-resolution collaborator: a member is
// only ingested once its player UUID resolves to a known account.
type AccountRepository interface {
	FindByID(ctx context.Context, uuid string) (*models.MinecraftAccount, error)
	Upsert(ctx context.Context, account *models.MinecraftAccount) error
	// ListStale returns UUIDs of accounts not refreshed within olderThan,
	// oldest first, capped so one scheduler run stays bounded.
	ListStale(ctx context.Context, olderThan time.Duration) ([]string, error)
}

type postgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) AccountRepository {
	return &postgresAccountRepository{db: db}
}

func (r *postgresAccountRepository) FindByID(ctx context.Context, uuid string) (*models.MinecraftAccount, error) {
	var a models.MinecraftAccount
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, last_updated FROM minecraft_accounts WHERE id = $1`, uuid,
	).Scan(&a.ID, &a.Name, &a.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", uuid, err)
	}
	return &a, nil
}

func (r *postgresAccountRepository) Upsert(ctx context.Context, account *models.MinecraftAccount) error {
	query := `
		INSERT INTO minecraft_accounts (id, name, last_updated)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name         = EXCLUDED.name,
			last_updated = NOW()
		RETURNING last_updated`

	if err := r.db.QueryRowContext(ctx, query, account.ID, account.Name).Scan(&account.LastUpdated); err != nil {
		return fmt.Errorf("failed to upsert account %s: %w", account.ID, err)
	}
	return nil
}

func (r *postgresAccountRepository) ListStale(ctx context.Context, olderThan time.Duration) ([]string, error) {
	query := `
		SELECT id FROM minecraft_accounts
		WHERE last_updated < NOW() - $1::interval
		ORDER BY last_updated ASC
		LIMIT 200`

	rows, err := r.db.QueryContext(ctx, query, fmt.Sprintf("%d seconds", int64(olderThan.Seconds())))
	if err != nil {
		return nil, fmt.Errorf("failed to list stale accounts: %w", err)
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stale account id: %w", err)
		}
		uuids = append(uuids, id)
	}
	return uuids, rows.Err()
}
