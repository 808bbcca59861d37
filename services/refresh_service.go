package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/skyblock-api/hypixel"
	"github.com/Dosada05/skyblock-api/models"
	"github.com/Dosada05/skyblock-api/repositories"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the rate-limited upstream collaborator.
type Fetcher interface {
	FetchProfiles(ctx context.Context, uuid string) (*hypixel.RawProfilesResponse, error)
	FetchPlayer(ctx context.Context, uuid string) (*hypixel.RawPlayerResponse, error)
}

// RefreshService pulls fresh snapshots for known accounts and feeds them
// through the ingestion pipeline. Accounts fan out concurrently; members
// within one snapshot stay sequential inside IngestionService.
type RefreshService struct {
	fetcher     Fetcher
	ingestion   *IngestionService
	accounts    repositories.AccountRepository
	hub         Broadcaster // optional, may be nil
	logger      *slog.Logger
	concurrency int
}

func NewRefreshService(fetcher Fetcher, ingestion *IngestionService, accounts repositories.AccountRepository, hub Broadcaster, concurrency int, logger *slog.Logger) *RefreshService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RefreshService{
		fetcher:     fetcher,
		ingestion:   ingestion,
		accounts:    accounts,
		hub:         hub,
		logger:      logger,
		concurrency: concurrency,
	}
}

// RefreshPlayer fetches and ingests one player's snapshot. The player
// record itself is refreshed first so identity resolution succeeds for
// the focal player on first sight.
func (s *RefreshService) RefreshPlayer(ctx context.Context, uuid string) ([]*models.Profile, error) {
	player, err := s.fetcher.FetchPlayer(ctx, uuid)
	if err != nil {
		if errors.Is(err, hypixel.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	account := &models.MinecraftAccount{
		ID:   player.Player.UUID,
		Name: player.Player.DisplayName,
	}
	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to refresh account %s: %w", uuid, err)
	}

	snapshot, err := s.fetcher.FetchProfiles(ctx, uuid)
	if err != nil {
		if errors.Is(err, hypixel.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	profiles, err := s.ingestion.IngestSnapshot(ctx, snapshot, account.ID)
	if err != nil {
		return profiles, err
	}

	if s.hub != nil && len(profiles) > 0 {
		s.hub.BroadcastEvent("PROFILE_INGESTED", map[string]interface{}{
			"player_uuid": account.ID,
			"profiles":    len(profiles),
		})
	}

	return profiles, nil
}

// RefreshAccounts refreshes a batch of players with bounded concurrency.
// Per-player failures are logged, they do not abort the batch.
func (s *RefreshService) RefreshAccounts(ctx context.Context, uuids []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, uuid := range uuids {
		uuid := uuid
		g.Go(func() error {
			if _, err := s.RefreshPlayer(ctx, uuid); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.Error("failed to refresh player",
					slog.String("player", uuid), slog.Any("error", err))
			}
			return nil
		})
	}

	return g.Wait()
}
