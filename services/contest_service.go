package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/skyblock-api/models"
	"github.com/Dosada05/skyblock-api/repositories"
	"github.com/Dosada05/skyblock-api/skyblock"
)

// ContestService serves the read paths over persisted contest records.
type ContestService struct {
	contests       repositories.ContestRepository
	participations repositories.ParticipationRepository
	members        repositories.MemberRepository
	logger         *slog.Logger
}

func NewContestService(
	contests repositories.ContestRepository,
	participations repositories.ParticipationRepository,
	members repositories.MemberRepository,
	logger *slog.Logger,
) *ContestService {
	return &ContestService{
		contests:       contests,
		participations: participations,
		members:        members,
		logger:         logger,
	}
}

// GetContestsAt returns every contest at one event timestamp with its
// participations. An unknown timestamp yields an empty slice, not an
// error.
func (s *ContestService) GetContestsAt(ctx context.Context, timestamp int64) ([]models.JacobContest, error) {
	// Integer division truncates toward zero, so timestamps just before
	// the epoch still land in year 0; the first valid year is 1.
	if skyblock.DateFromUnix(timestamp).Year < 1 {
		return nil, ErrInvalidTimestamp
	}

	contests, err := s.contests.ListAt(ctx, timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to load contests at %d: %w", timestamp, err)
	}

	for i := range contests {
		participations, err := s.participations.ListByContest(ctx, contests[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load participations for contest %d: %w", contests[i].ID, err)
		}
		contests[i].Participations = participations
	}

	return contests, nil
}

// GetContestByKey resolves one contest from its wire-format key.
func (s *ContestService) GetContestByKey(ctx context.Context, key string) (*models.JacobContest, error) {
	timestamp, crop, ok := skyblock.DecodeContestKey(key)
	if !ok {
		return nil, ErrInvalidContestKey
	}

	contest, err := s.contests.FindByKeyParts(ctx, timestamp, crop)
	if err != nil {
		if errors.Is(err, repositories.ErrContestNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("failed to load contest %s: %w", key, err)
	}

	participations, err := s.participations.ListByContest(ctx, contest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participations for contest %s: %w", key, err)
	}
	contest.Participations = participations

	return contest, nil
}

// GetContestsInMonth groups one in-game month's contests by day
// (1-based). year and month are 1-based display values.
func (s *ContestService) GetContestsInMonth(ctx context.Context, year, month int) (map[int][]models.JacobContest, error) {
	if year < 1 || month < 1 || month > int(skyblock.MonthsPerYear) {
		return nil, ErrInvalidTimestamp
	}

	start := skyblock.TimeFromDate(year-1, month-1, 0)
	end := skyblock.TimeFromDate(year-1, month, 0)

	contests, err := s.contests.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load contests for %d/%d: %w", year, month, err)
	}

	byDay := make(map[int][]models.JacobContest)
	for _, contest := range contests {
		day := skyblock.DateFromUnix(contest.Timestamp).Day + 1
		byDay[day] = append(byDay[day], contest)
	}

	return byDay, nil
}

// GetPlayerContestHistory returns the player's participations across all
// profile memberships, newest first.
func (s *ContestService) GetPlayerContestHistory(ctx context.Context, playerUUID string) ([]models.ContestParticipation, error) {
	memberships, err := s.members.ListByPlayer(ctx, playerUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships for player %s: %w", playerUUID, err)
	}
	if len(memberships) == 0 {
		return nil, ErrPlayerNotFound
	}

	history, err := s.participations.ListByPlayer(ctx, playerUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contest history for player %s: %w", playerUUID, err)
	}

	return history, nil
}
