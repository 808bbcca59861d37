package models

import (
	"time"

	"github.com/Dosada05/skyblock-api/skyblock"
)

// JacobData aggregates a member's farming-contest state: the medal
// inventory reported by the upstream API, perk levels, and the running
// earned-medal counters maintained by the ingestion pipeline.
type JacobData struct {
	ProfileMemberID string `json:"-" db:"profile_member_id"`

	MedalsGold   int `json:"medals_gold" db:"medals_gold"`
	MedalsSilver int `json:"medals_silver" db:"medals_silver"`
	MedalsBronze int `json:"medals_bronze" db:"medals_bronze"`

	PerkDoubleDrops int `json:"perk_double_drops" db:"perk_double_drops"`
	PerkLevelCap    int `json:"perk_level_cap" db:"perk_level_cap"`

	// Earned counters are derived from participations; see
	// JacobRepository.RecomputeEarnedMedals.
	EarnedGold   int `json:"earned_gold" db:"earned_gold"`
	EarnedSilver int `json:"earned_silver" db:"earned_silver"`
	EarnedBronze int `json:"earned_bronze" db:"earned_bronze"`

	ContestsLastUpdated time.Time `json:"contests_last_updated" db:"contests_last_updated"`

	Contests []ContestParticipation `json:"contests,omitempty" db:"-"`
}

// JacobContest is one (timestamp, crop) pair, unique on that composite
// key. The owning event row (one per timestamp, three contests each in
// the steady-state calendar) stays internal to the contest repository.
type JacobContest struct {
	ID        int64         `json:"id" db:"id"`
	EventID   int64         `json:"-" db:"event_id"`
	Timestamp int64         `json:"timestamp" db:"timestamp"`
	Crop      skyblock.Crop `json:"crop" db:"crop"`

	Participations []ContestParticipation `json:"participations,omitempty" db:"-"`
}

// Key renders the wire-format contest key for this contest.
func (c JacobContest) Key() string {
	return skyblock.EncodeContestKey(c.Timestamp, c.Crop)
}

// ContestParticipation is a member's result in one contest. At most one
// row exists per (member, contest); rows are only created through the
// ingestion pipeline.
type ContestParticipation struct {
	ProfileMemberID string                `json:"-" db:"profile_member_id"`
	JacobContestID  int64                 `json:"-" db:"jacob_contest_id"`
	Collected       int64                 `json:"collected" db:"collected"`
	Position        int                   `json:"position" db:"position"`
	MedalEarned     skyblock.ContestMedal `json:"medal" db:"medal_earned"`

	// Заполняются при выборке истории (не мапятся напрямую)
	Timestamp  int64         `json:"timestamp,omitempty" db:"-"`
	Crop       skyblock.Crop `json:"crop,omitempty" db:"-"`
	PlayerUUID string        `json:"player_uuid,omitempty" db:"-"`
	PlayerName string        `json:"player_name,omitempty" db:"-"`
}
