package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/skyblock-api/models"
	"github.com/Dosada05/skyblock-api/skyblock"
)

var ErrContestNotFound = errors.New("contest not found")

type ContestRepository interface {
	// FindOrCreateContest resolves the (timestamp, crop) contest, creating
	// the owning event and the contest row as needed. Upserts by natural
	// key, so concurrent ingestions converge on the same rows.
	FindOrCreateContest(ctx context.Context, timestamp int64, crop skyblock.Crop) (*models.JacobContest, error)
	FindByKeyParts(ctx context.Context, timestamp int64, crop skyblock.Crop) (*models.JacobContest, error)
	ListAt(ctx context.Context, timestamp int64) ([]models.JacobContest, error)
	ListBetween(ctx context.Context, start, end int64) ([]models.JacobContest, error)
}

type postgresContestRepository struct {
	db *sql.DB
}

func NewPostgresContestRepository(db *sql.DB) ContestRepository {
	return &postgresContestRepository{db: db}
}

func (r *postgresContestRepository) FindOrCreateContest(ctx context.Context, timestamp int64, crop skyblock.Crop) (*models.JacobContest, error) {
	// The DO UPDATE no-op makes RETURNING yield the row on conflict too.
	eventQuery := `
		INSERT INTO contest_events (timestamp)
		VALUES ($1)
		ON CONFLICT (timestamp) DO UPDATE SET timestamp = EXCLUDED.timestamp
		RETURNING id`

	var eventID int64
	if err := r.db.QueryRowContext(ctx, eventQuery, timestamp).Scan(&eventID); err != nil {
		return nil, fmt.Errorf("failed to upsert contest event at %d: %w", timestamp, err)
	}

	contestQuery := `
		INSERT INTO jacob_contests (event_id, timestamp, crop)
		VALUES ($1, $2, $3)
		ON CONFLICT (timestamp, crop) DO UPDATE SET event_id = EXCLUDED.event_id
		RETURNING id`

	contest := &models.JacobContest{
		EventID:   eventID,
		Timestamp: timestamp,
		Crop:      crop,
	}
	if err := r.db.QueryRowContext(ctx, contestQuery, eventID, timestamp, crop).Scan(&contest.ID); err != nil {
		return nil, fmt.Errorf("failed to upsert contest %d/%s: %w", timestamp, crop.Name(), err)
	}

	return contest, nil
}

func (r *postgresContestRepository) FindByKeyParts(ctx context.Context, timestamp int64, crop skyblock.Crop) (*models.JacobContest, error) {
	query := `
		SELECT id, event_id, timestamp, crop
		FROM jacob_contests
		WHERE timestamp = $1 AND crop = $2`

	var c models.JacobContest
	err := r.db.QueryRowContext(ctx, query, timestamp, crop).Scan(&c.ID, &c.EventID, &c.Timestamp, &c.Crop)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to find contest %d/%s: %w", timestamp, crop.Name(), err)
	}
	return &c, nil
}

func (r *postgresContestRepository) ListAt(ctx context.Context, timestamp int64) ([]models.JacobContest, error) {
	return r.list(ctx, `
		SELECT id, event_id, timestamp, crop
		FROM jacob_contests
		WHERE timestamp = $1
		ORDER BY crop`, timestamp)
}

func (r *postgresContestRepository) ListBetween(ctx context.Context, start, end int64) ([]models.JacobContest, error) {
	return r.list(ctx, `
		SELECT id, event_id, timestamp, crop
		FROM jacob_contests
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp, crop`, start, end)
}

func (r *postgresContestRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.JacobContest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	defer rows.Close()

	var contests []models.JacobContest
	for rows.Next() {
		var c models.JacobContest
		if err := rows.Scan(&c.ID, &c.EventID, &c.Timestamp, &c.Crop); err != nil {
			return nil, fmt.Errorf("failed to scan contest row: %w", err)
		}
		contests = append(contests, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contest rows: %w", err)
	}

	return contests, nil
}
