package models

import "time"

// Profile is one SkyBlock profile (an island shared by up to several
// players). Profiles are created on first sighting and mutated in place
// afterwards; they are never physically deleted, only flagged.
type Profile struct {
	ProfileID   string  `json:"profile_id" db:"profile_id"`
	ProfileName string  `json:"profile_name" db:"profile_name"`
	GameMode    *string `json:"game_mode,omitempty" db:"game_mode"`
	IsDeleted   bool    `json:"is_deleted" db:"is_deleted"`

	// CraftedMinions maps a minion type ("SUGAR_CANE") to the crafted-tier
	// bitstring ("111011101"). Stored as jsonb, merged profile-wide across
	// all members.
	CraftedMinions map[string]string `json:"crafted_minions" db:"crafted_minions"`

	LastUpdated time.Time `json:"last_updated" db:"last_updated"`

	// Связанные сущности (не мапятся напрямую)
	Members []ProfileMember `json:"members,omitempty" db:"-"`
}

// ProfileMember is one player's participation in a profile. Exactly one
// member row exists per (player, profile) pair.
type ProfileMember struct {
	ID         string `json:"id" db:"id"`
	PlayerUUID string `json:"player_uuid" db:"player_uuid"`
	ProfileID  string `json:"profile_id" db:"profile_id"`
	IsSelected bool   `json:"is_selected" db:"is_selected"`
	WasRemoved bool   `json:"was_removed" db:"was_removed"`

	// Collections maps a collection item tag to the collected amount.
	Collections map[string]int64 `json:"collections" db:"collections"`
	Skills      Skills           `json:"skills" db:"skills"`

	LastUpdated time.Time `json:"last_updated" db:"last_updated"`

	Jacob *JacobData `json:"jacob,omitempty" db:"-"`
	Pets  []Pet      `json:"pets,omitempty" db:"-"`

	Account *MinecraftAccount `json:"account,omitempty" db:"-"`
}

// Skills holds raw skill experience. A zero value means the upstream
// payload never exposed the skill APIs for this member.
type Skills struct {
	Combat       float64 `json:"combat"`
	Mining       float64 `json:"mining"`
	Foraging     float64 `json:"foraging"`
	Fishing      float64 `json:"fishing"`
	Enchanting   float64 `json:"enchanting"`
	Alchemy      float64 `json:"alchemy"`
	Taming       float64 `json:"taming"`
	Carpentry    float64 `json:"carpentry"`
	Runecrafting float64 `json:"runecrafting"`
	Social       float64 `json:"social"`
	Farming      float64 `json:"farming"`
}

// Pet rows are a replace-set: every ingestion rebuilds the full list for
// a member from the raw payload.
type Pet struct {
	ID              int64   `json:"-" db:"id"`
	ProfileMemberID string  `json:"-" db:"profile_member_id"`
	UUID            *string `json:"uuid,omitempty" db:"uuid"`
	Type            string  `json:"type" db:"type"`
	Tier            string  `json:"tier" db:"tier"`
	Exp             float64 `json:"exp" db:"exp"`
	Active          bool    `json:"active" db:"active"`
	HeldItem        *string `json:"held_item,omitempty" db:"held_item"`
	CandyUsed       int16   `json:"candy_used" db:"candy_used"`
	Skin            *string `json:"skin,omitempty" db:"skin"`
}

// MinecraftAccount is the resolved external identity of a player.
type MinecraftAccount struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}
