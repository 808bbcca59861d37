package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/skyblock-api/models"
	"github.com/Dosada05/skyblock-api/repositories"
	"github.com/Dosada05/skyblock-api/skyblock"
)

// In-memory repository fakes backing the service tests. They mimic the
// postgres implementations' observable behavior, including sentinel
// errors and upsert semantics.

type fakeProfileRepo struct {
	profiles map[string]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *models.Profile) error {
	stored, ok := r.profiles[profile.ProfileID]
	if !ok {
		stored = &models.Profile{
			ProfileID:      profile.ProfileID,
			CraftedMinions: make(map[string]string),
		}
		r.profiles[profile.ProfileID] = stored
	}
	stored.ProfileName = profile.ProfileName
	stored.GameMode = profile.GameMode
	stored.IsDeleted = false
	stored.LastUpdated = time.Now()
	profile.LastUpdated = stored.LastUpdated
	return nil
}

func (r *fakeProfileRepo) FindByID(_ context.Context, profileID string) (*models.Profile, error) {
	stored, ok := r.profiles[profileID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	clone := *stored
	clone.CraftedMinions = make(map[string]string, len(stored.CraftedMinions))
	for k, v := range stored.CraftedMinions {
		clone.CraftedMinions[k] = v
	}
	return &clone, nil
}

func (r *fakeProfileRepo) FlagDeleted(_ context.Context, profileID string) error {
	stored, ok := r.profiles[profileID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	stored.IsDeleted = true
	return nil
}

func (r *fakeProfileRepo) MergeCraftedMinions(_ context.Context, profileID string, minions map[string]string) error {
	stored, ok := r.profiles[profileID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	for k, v := range minions {
		stored.CraftedMinions[k] = v
	}
	return nil
}

type fakeMemberRepo struct {
	members map[string]*models.ProfileMember // keyed profileID+"/"+playerUUID
	pets    map[string][]models.Pet
	nextID  int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members: make(map[string]*models.ProfileMember),
		pets:    make(map[string][]models.Pet),
	}
}

func memberKey(profileID, playerUUID string) string {
	return profileID + "/" + playerUUID
}

func (r *fakeMemberRepo) byID(memberID string) *models.ProfileMember {
	for _, m := range r.members {
		if m.ID == memberID {
			return m
		}
	}
	return nil
}

func (r *fakeMemberRepo) FindByProfileAndPlayer(_ context.Context, profileID, playerUUID string) (*models.ProfileMember, error) {
	stored, ok := r.members[memberKey(profileID, playerUUID)]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeMemberRepo) Upsert(_ context.Context, member *models.ProfileMember) error {
	key := memberKey(member.ProfileID, member.PlayerUUID)
	stored, ok := r.members[key]
	if !ok {
		r.nextID++
		stored = &models.ProfileMember{
			ID:          fmt.Sprintf("member-%d", r.nextID),
			PlayerUUID:  member.PlayerUUID,
			ProfileID:   member.ProfileID,
			Collections: make(map[string]int64),
		}
		r.members[key] = stored
	}
	stored.IsSelected = member.IsSelected
	stored.WasRemoved = false
	stored.LastUpdated = time.Now()
	member.ID = stored.ID
	return nil
}

func (r *fakeMemberRepo) UpdateCollections(_ context.Context, memberID string, collections map[string]int64) error {
	stored := r.byID(memberID)
	if stored == nil {
		return repositories.ErrMemberNotFound
	}
	for k, v := range collections {
		stored.Collections[k] = v
	}
	return nil
}

func (r *fakeMemberRepo) UpdateSkills(_ context.Context, memberID string, skills models.Skills) error {
	stored := r.byID(memberID)
	if stored == nil {
		return repositories.ErrMemberNotFound
	}
	stored.Skills = skills
	return nil
}

func (r *fakeMemberRepo) ReplacePets(_ context.Context, memberID string, pets []models.Pet) error {
	if r.byID(memberID) == nil {
		return repositories.ErrMemberNotFound
	}
	r.pets[memberID] = pets
	return nil
}

func (r *fakeMemberRepo) ListByPlayer(_ context.Context, playerUUID string) ([]models.ProfileMember, error) {
	var out []models.ProfileMember
	for _, m := range r.members {
		if m.PlayerUUID == playerUUID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAccountRepo struct {
	accounts map[string]*models.MinecraftAccount
}

func newFakeAccountRepo(uuids ...string) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[string]*models.MinecraftAccount)}
	for _, id := range uuids {
		r.accounts[id] = &models.MinecraftAccount{ID: id, Name: "player-" + id}
	}
	return r
}

func (r *fakeAccountRepo) FindByID(_ context.Context, uuid string) (*models.MinecraftAccount, error) {
	account, ok := r.accounts[uuid]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return account, nil
}

func (r *fakeAccountRepo) Upsert(_ context.Context, account *models.MinecraftAccount) error {
	account.LastUpdated = time.Now()
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) ListStale(_ context.Context, _ time.Duration) ([]string, error) {
	return nil, nil
}

type fakeJacobRepo struct {
	data           map[string]*models.JacobData
	participations *fakeParticipationRepo
	recomputes     int
}

func newFakeJacobRepo(participations *fakeParticipationRepo) *fakeJacobRepo {
	return &fakeJacobRepo{
		data:           make(map[string]*models.JacobData),
		participations: participations,
	}
}

func (r *fakeJacobRepo) FindByMember(_ context.Context, memberID string) (*models.JacobData, error) {
	stored, ok := r.data[memberID]
	if !ok {
		return nil, repositories.ErrJacobDataNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeJacobRepo) Upsert(_ context.Context, jacob *models.JacobData) error {
	stored, ok := r.data[jacob.ProfileMemberID]
	if !ok {
		stored = &models.JacobData{ProfileMemberID: jacob.ProfileMemberID}
		r.data[jacob.ProfileMemberID] = stored
	}
	stored.MedalsGold = jacob.MedalsGold
	stored.MedalsSilver = jacob.MedalsSilver
	stored.MedalsBronze = jacob.MedalsBronze
	stored.PerkDoubleDrops = jacob.PerkDoubleDrops
	stored.PerkLevelCap = jacob.PerkLevelCap
	return nil
}

func (r *fakeJacobRepo) TouchContestsUpdated(_ context.Context, memberID string) error {
	stored, ok := r.data[memberID]
	if !ok {
		return repositories.ErrJacobDataNotFound
	}
	stored.ContestsLastUpdated = time.Now()
	return nil
}

func (r *fakeJacobRepo) RecomputeEarnedMedals(_ context.Context, memberID string) error {
	stored, ok := r.data[memberID]
	if !ok {
		return repositories.ErrJacobDataNotFound
	}
	r.recomputes++
	stored.EarnedGold, stored.EarnedSilver, stored.EarnedBronze = 0, 0, 0
	for _, p := range r.participations.rows {
		if p.ProfileMemberID != memberID {
			continue
		}
		switch p.MedalEarned {
		case skyblock.MedalGold:
			stored.EarnedGold++
		case skyblock.MedalSilver:
			stored.EarnedSilver++
		case skyblock.MedalBronze:
			stored.EarnedBronze++
		}
	}
	return nil
}

type fakeContestRepo struct {
	contests map[string]*models.JacobContest // keyed timestamp/crop
	nextID   int64
}

func newFakeContestRepo() *fakeContestRepo {
	return &fakeContestRepo{contests: make(map[string]*models.JacobContest)}
}

func contestKey(timestamp int64, crop skyblock.Crop) string {
	return fmt.Sprintf("%d/%d", timestamp, crop)
}

func (r *fakeContestRepo) FindOrCreateContest(_ context.Context, timestamp int64, crop skyblock.Crop) (*models.JacobContest, error) {
	key := contestKey(timestamp, crop)
	if stored, ok := r.contests[key]; ok {
		clone := *stored
		return &clone, nil
	}
	r.nextID++
	stored := &models.JacobContest{ID: r.nextID, Timestamp: timestamp, Crop: crop}
	r.contests[key] = stored
	clone := *stored
	return &clone, nil
}

func (r *fakeContestRepo) FindByKeyParts(_ context.Context, timestamp int64, crop skyblock.Crop) (*models.JacobContest, error) {
	stored, ok := r.contests[contestKey(timestamp, crop)]
	if !ok {
		return nil, repositories.ErrContestNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeContestRepo) ListAt(_ context.Context, timestamp int64) ([]models.JacobContest, error) {
	var out []models.JacobContest
	for _, c := range r.contests {
		if c.Timestamp == timestamp {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Crop < out[j].Crop })
	return out, nil
}

func (r *fakeContestRepo) ListBetween(_ context.Context, start, end int64) ([]models.JacobContest, error) {
	var out []models.JacobContest
	for _, c := range r.contests {
		if c.Timestamp >= start && c.Timestamp < end {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].Crop < out[j].Crop
	})
	return out, nil
}

type fakeParticipationRepo struct {
	rows map[string]*models.ContestParticipation // keyed memberID/contestID
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{rows: make(map[string]*models.ContestParticipation)}
}

func participationKey(memberID string, contestID int64) string {
	return fmt.Sprintf("%s/%d", memberID, contestID)
}

func (r *fakeParticipationRepo) Find(_ context.Context, memberID string, contestID int64) (*models.ContestParticipation, error) {
	stored, ok := r.rows[participationKey(memberID, contestID)]
	if !ok {
		return nil, repositories.ErrParticipationNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeParticipationRepo) Create(_ context.Context, p *models.ContestParticipation) error {
	key := participationKey(p.ProfileMemberID, p.JacobContestID)
	if _, ok := r.rows[key]; ok {
		return repositories.ErrParticipationConflict
	}
	clone := *p
	r.rows[key] = &clone
	return nil
}

func (r *fakeParticipationRepo) Update(_ context.Context, p *models.ContestParticipation) error {
	key := participationKey(p.ProfileMemberID, p.JacobContestID)
	if _, ok := r.rows[key]; !ok {
		return repositories.ErrParticipationNotFound
	}
	clone := *p
	r.rows[key] = &clone
	return nil
}

func (r *fakeParticipationRepo) ListByContest(_ context.Context, contestID int64) ([]models.ContestParticipation, error) {
	var out []models.ContestParticipation
	for _, p := range r.rows {
		if p.JacobContestID == contestID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeParticipationRepo) ListByPlayer(_ context.Context, playerUUID string) ([]models.ContestParticipation, error) {
	var out []models.ContestParticipation
	for _, p := range r.rows {
		if p.PlayerUUID == playerUUID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}
