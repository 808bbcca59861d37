package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/skyblock-api/hypixel"
	"github.com/Dosada05/skyblock-api/models"
	"github.com/Dosada05/skyblock-api/repositories"
	"github.com/Dosada05/skyblock-api/skyblock"
	"github.com/Dosada05/skyblock-api/storage"
)

// Contest entries below this collected amount are treated as noise from
// the upstream API and never persisted.
const contestNoiseFloor = 100

// IngestionService normalizes raw Hypixel snapshots into the persisted
// profile/member/contest graph. Members are processed sequentially within
// one snapshot so concurrent writes to the same profile's minion map
// cannot race inside a single call; each member commits independently
// (per-member atomic, not snapshot atomic).
type IngestionService struct {
	profiles       repositories.ProfileRepository
	members        repositories.MemberRepository
	accounts       repositories.AccountRepository
	jacob          repositories.JacobRepository
	contests       repositories.ContestRepository
	participations repositories.ParticipationRepository
	archiver       storage.SnapshotArchiver // optional, may be nil
	logger         *slog.Logger
}

func NewIngestionService(
	profiles repositories.ProfileRepository,
	members repositories.MemberRepository,
	accounts repositories.AccountRepository,
	jacob repositories.JacobRepository,
	contests repositories.ContestRepository,
	participations repositories.ParticipationRepository,
	archiver storage.SnapshotArchiver,
	logger *slog.Logger,
) *IngestionService {
	return &IngestionService{
		profiles:       profiles,
		members:        members,
		accounts:       accounts,
		jacob:          jacob,
		contests:       contests,
		participations: participations,
		archiver:       archiver,
		logger:         logger,
	}
}

// IngestSnapshot upserts every profile in the snapshot. focalPlayerUUID
// marks whose "selected" flag the snapshot describes; it may be empty.
// Member-level failures are logged and isolated, they never abort the
// snapshot.
func (s *IngestionService) IngestSnapshot(ctx context.Context, snapshot *hypixel.RawProfilesResponse, focalPlayerUUID string) ([]*models.Profile, error) {
	if snapshot == nil || !snapshot.Success || len(snapshot.Profiles) == 0 {
		return nil, nil
	}

	focalPlayerUUID = strings.ReplaceAll(focalPlayerUUID, "-", "")

	if s.archiver != nil {
		if err := s.archiver.ArchiveSnapshot(ctx, focalPlayerUUID, snapshot); err != nil {
			s.logger.Warn("failed to archive snapshot",
				slog.String("player", focalPlayerUUID), slog.Any("error", err))
		}
	}

	profiles := make([]*models.Profile, 0, len(snapshot.Profiles))
	for i := range snapshot.Profiles {
		profile, err := s.ingestProfile(ctx, &snapshot.Profiles[i], focalPlayerUUID)
		if err != nil {
			return profiles, err
		}
		if profile != nil {
			profiles = append(profiles, profile)
		}
	}

	s.flagVanishedProfiles(ctx, focalPlayerUUID, profiles)

	return profiles, nil
}

// flagVanishedProfiles marks profiles the focal player was known on that
// no longer appear in the snapshot. The flag is soft: a later sighting of
// the profile clears it through the regular upsert.
func (s *IngestionService) flagVanishedProfiles(ctx context.Context, focalPlayerUUID string, current []*models.Profile) {
	if focalPlayerUUID == "" {
		return
	}

	seen := make(map[string]struct{}, len(current))
	for _, p := range current {
		seen[p.ProfileID] = struct{}{}
	}

	memberships, err := s.members.ListByPlayer(ctx, focalPlayerUUID)
	if err != nil {
		s.logger.Error("failed to list memberships for deletion sweep",
			slog.String("player", focalPlayerUUID), slog.Any("error", err))
		return
	}

	for _, m := range memberships {
		if _, ok := seen[m.ProfileID]; ok {
			continue
		}
		if err := s.profiles.FlagDeleted(ctx, m.ProfileID); err != nil {
			s.logger.Error("failed to flag vanished profile",
				slog.String("profile", m.ProfileID), slog.Any("error", err))
		}
	}
}

func (s *IngestionService) ingestProfile(ctx context.Context, raw *hypixel.RawProfileData, focalPlayerUUID string) (*models.Profile, error) {
	if len(raw.Members) == 0 {
		return nil, nil
	}

	// Hyphens shouldn't be included anyways, but just in case Hypixel
	// pulls another fast one.
	profileID := strings.ReplaceAll(raw.ProfileID, "-", "")

	profile := &models.Profile{
		ProfileID:   profileID,
		ProfileName: raw.CuteName,
		GameMode:    raw.GameMode,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to upsert profile %s: %w", profileID, err)
	}

	// Minion bitstrings merge profile-wide across all members, seeded
	// from the stored map so set bits are never lost.
	stored, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload profile %s: %w", profileID, err)
	}
	profile.CraftedMinions = stored.CraftedMinions
	if profile.CraftedMinions == nil {
		profile.CraftedMinions = make(map[string]string)
	}

	// Deterministic member order within one call.
	memberIDs := make([]string, 0, len(raw.Members))
	for id := range raw.Members {
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	for _, rawID := range memberIDs {
		memberData := raw.Members[rawID]
		playerUUID := strings.ReplaceAll(rawID, "-", "")
		selected := playerUUID == focalPlayerUUID && raw.Selected

		if err := s.ingestMember(ctx, profile, playerUUID, &memberData, selected); err != nil {
			// Persistence failures abandon this member only; siblings in
			// the same snapshot still proceed.
			s.logger.Error("failed to ingest profile member",
				slog.String("profile", profileID),
				slog.String("player", playerUUID),
				slog.Any("error", err))
		}
	}

	if err := s.profiles.MergeCraftedMinions(ctx, profileID, profile.CraftedMinions); err != nil {
		s.logger.Error("failed to merge crafted minions",
			slog.String("profile", profileID), slog.Any("error", err))
	}

	return profile, nil
}

func (s *IngestionService) ingestMember(ctx context.Context, profile *models.Profile, playerUUID string, raw *hypixel.RawMemberData, selected bool) error {
	// Resolve identity first; a player that no longer exists is skipped
	// without error and retried naturally by a future snapshot.
	if _, err := s.accounts.FindByID(ctx, playerUUID); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			s.logger.Debug("skipping member with unresolved account",
				slog.String("profile", profile.ProfileID),
				slog.String("player", playerUUID))
			return nil
		}
		return fmt.Errorf("identity resolution: %w", err)
	}

	existing, err := s.members.FindByProfileAndPlayer(ctx, profile.ProfileID, playerUUID)
	if err != nil && !errors.Is(err, repositories.ErrMemberNotFound) {
		return fmt.Errorf("member lookup: %w", err)
	}

	member := &models.ProfileMember{
		PlayerUUID: playerUUID,
		ProfileID:  profile.ProfileID,
		IsSelected: selected,
	}
	if err := s.members.Upsert(ctx, member); err != nil {
		return fmt.Errorf("member upsert: %w", err)
	}

	if raw.Collection != nil {
		if err := s.members.UpdateCollections(ctx, member.ID, raw.Collection); err != nil {
			return fmt.Errorf("collections merge: %w", err)
		}
	}

	if skills, changed := mergeSkills(existing, raw); changed {
		if err := s.members.UpdateSkills(ctx, member.ID, skills); err != nil {
			return fmt.Errorf("skills merge: %w", err)
		}
	}

	// Pets are a replace-set: the stored list is rebuilt from the raw
	// payload on every ingestion.
	if err := s.members.ReplacePets(ctx, member.ID, convertPets(member.ID, raw.Pets)); err != nil {
		return fmt.Errorf("pets replace: %w", err)
	}

	if err := s.ingestJacob(ctx, member, raw.Jacob); err != nil {
		return fmt.Errorf("jacob merge: %w", err)
	}

	for _, token := range raw.CraftedGenerators {
		minionType, tier, ok := skyblock.SplitMinionToken(token)
		if !ok {
			continue
		}
		profile.CraftedMinions[minionType] = skyblock.RecordMinionTier(profile.CraftedMinions[minionType], tier)
	}

	return nil
}

// mergeSkills overwrites skill branches only when the raw payload carries
// them; a snapshot with the skill API disabled preserves stored values.
func mergeSkills(existing *models.ProfileMember, raw *hypixel.RawMemberData) (models.Skills, bool) {
	var skills models.Skills
	if existing != nil {
		skills = existing.Skills
	}

	// Combat is the canary: when it is absent the upstream skill API is
	// off for this member and nothing may be overwritten.
	if raw.ExperienceSkillCombat == nil {
		return skills, false
	}

	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&skills.Combat, raw.ExperienceSkillCombat)
	apply(&skills.Mining, raw.ExperienceSkillMining)
	apply(&skills.Foraging, raw.ExperienceSkillForaging)
	apply(&skills.Fishing, raw.ExperienceSkillFishing)
	apply(&skills.Enchanting, raw.ExperienceSkillEnchanting)
	apply(&skills.Alchemy, raw.ExperienceSkillAlchemy)
	apply(&skills.Taming, raw.ExperienceSkillTaming)
	apply(&skills.Carpentry, raw.ExperienceSkillCarpentry)
	apply(&skills.Runecrafting, raw.ExperienceSkillRunecrafting)
	apply(&skills.Social, raw.ExperienceSkillSocial)
	apply(&skills.Farming, raw.ExperienceSkillFarming)

	return skills, true
}

func convertPets(memberID string, raw []hypixel.RawPetData) []models.Pet {
	pets := make([]models.Pet, 0, len(raw))
	for _, pet := range raw {
		pets = append(pets, models.Pet{
			ProfileMemberID: memberID,
			UUID:            pet.UUID,
			Type:            pet.Type,
			Tier:            pet.Tier,
			Exp:             pet.Exp,
			Active:          pet.Active,
			HeldItem:        pet.HeldItem,
			CandyUsed:       int16(pet.CandyUsed),
			Skin:            pet.Skin,
		})
	}
	return pets
}

func (s *IngestionService) ingestJacob(ctx context.Context, member *models.ProfileMember, raw *hypixel.RawJacobData) error {
	existing, err := s.jacob.FindByMember(ctx, member.ID)
	if err != nil && !errors.Is(err, repositories.ErrJacobDataNotFound) {
		return fmt.Errorf("jacob lookup: %w", err)
	}

	jacob := &models.JacobData{ProfileMemberID: member.ID}
	if existing != nil {
		*jacob = *existing
	}

	// Medal inventory and perks only overwrite when supplied.
	if raw != nil {
		if raw.MedalsInventory != nil {
			jacob.MedalsGold = raw.MedalsInventory.Gold
			jacob.MedalsSilver = raw.MedalsInventory.Silver
			jacob.MedalsBronze = raw.MedalsInventory.Bronze
		}
		if raw.Perks != nil {
			if raw.Perks.DoubleDrops != nil {
				jacob.PerkDoubleDrops = *raw.Perks.DoubleDrops
			}
			if raw.Perks.FarmingLevelCap != nil {
				jacob.PerkLevelCap = *raw.Perks.FarmingLevelCap
			}
		}
	}

	if err := s.jacob.Upsert(ctx, jacob); err != nil {
		return fmt.Errorf("jacob upsert: %w", err)
	}

	if raw == nil || len(raw.Contests) == 0 {
		return nil
	}

	for key, contest := range raw.Contests {
		if err := s.ingestContest(ctx, member, key, contest); err != nil {
			return err
		}
	}

	if err := s.jacob.TouchContestsUpdated(ctx, member.ID); err != nil {
		return fmt.Errorf("jacob touch: %w", err)
	}

	// Earned counters are derived, never trusted as a running tally:
	// re-ingesting the same snapshot cannot double-count.
	if err := s.jacob.RecomputeEarnedMedals(ctx, member.ID); err != nil {
		return fmt.Errorf("earned medal recompute: %w", err)
	}

	return nil
}

func (s *IngestionService) ingestContest(ctx context.Context, member *models.ProfileMember, key string, raw hypixel.RawJacobContest) error {
	if raw.Collected < contestNoiseFloor {
		return nil
	}

	timestamp, crop, ok := skyblock.DecodeContestKey(key)
	if !ok {
		s.logger.Warn("skipping contest with malformed key",
			slog.String("player", member.PlayerUUID), slog.String("key", key))
		return nil
	}

	contest, err := s.contests.FindOrCreateContest(ctx, timestamp, crop)
	if err != nil {
		return fmt.Errorf("contest upsert %s: %w", key, err)
	}

	position := -1
	if raw.Position != nil {
		position = *raw.Position
	}

	participation := &models.ContestParticipation{
		ProfileMemberID: member.ID,
		JacobContestID:  contest.ID,
		Collected:       raw.Collected,
		Position:        position,
		MedalEarned:     skyblock.EvaluateMedal(raw.Medal, raw.Position, raw.Participants),
	}

	_, err = s.participations.Find(ctx, member.ID, contest.ID)
	switch {
	case err == nil:
		if err := s.participations.Update(ctx, participation); err != nil {
			return fmt.Errorf("participation update %s: %w", key, err)
		}
	case errors.Is(err, repositories.ErrParticipationNotFound):
		if err := s.participations.Create(ctx, participation); err != nil {
			// A concurrent ingestion may have created it between the
			// lookup and the insert; fall back to an update.
			if errors.Is(err, repositories.ErrParticipationConflict) {
				return s.participations.Update(ctx, participation)
			}
			return fmt.Errorf("participation create %s: %w", key, err)
		}
	default:
		return fmt.Errorf("participation lookup %s: %w", key, err)
	}

	return nil
}
