package hypixel

// Raw wire structs for the Hypixel API. Field names follow the upstream
// JSON exactly; pointers distinguish "absent" from zero where the
// ingestion pipeline must preserve prior values.

type RawProfilesResponse struct {
	Success  bool             `json:"success"`
	Profiles []RawProfileData `json:"profiles"`
}

type RawProfileData struct {
	ProfileID string                   `json:"profile_id"`
	CuteName  string                   `json:"cute_name"`
	GameMode  *string                  `json:"game_mode,omitempty"`
	Selected  bool                     `json:"selected"`
	Members   map[string]RawMemberData `json:"members"`
}

type RawMemberData struct {
	Collection        map[string]int64 `json:"collection,omitempty"`
	CraftedGenerators []string         `json:"crafted_generators,omitempty"`
	Jacob             *RawJacobData    `json:"jacob2,omitempty"`
	Pets              []RawPetData     `json:"pets,omitempty"`

	ExperienceSkillCombat       *float64 `json:"experience_skill_combat,omitempty"`
	ExperienceSkillMining       *float64 `json:"experience_skill_mining,omitempty"`
	ExperienceSkillForaging     *float64 `json:"experience_skill_foraging,omitempty"`
	ExperienceSkillFishing      *float64 `json:"experience_skill_fishing,omitempty"`
	ExperienceSkillEnchanting   *float64 `json:"experience_skill_enchanting,omitempty"`
	ExperienceSkillAlchemy      *float64 `json:"experience_skill_alchemy,omitempty"`
	ExperienceSkillTaming       *float64 `json:"experience_skill_taming,omitempty"`
	ExperienceSkillCarpentry    *float64 `json:"experience_skill_carpentry,omitempty"`
	ExperienceSkillRunecrafting *float64 `json:"experience_skill_runecrafting,omitempty"`
	ExperienceSkillSocial       *float64 `json:"experience_skill_social2,omitempty"`
	ExperienceSkillFarming      *float64 `json:"experience_skill_farming,omitempty"`
}

type RawJacobData struct {
	MedalsInventory *RawMedalsInventory        `json:"medals_inv,omitempty"`
	Perks           *RawJacobPerks             `json:"perks,omitempty"`
	Contests        map[string]RawJacobContest `json:"contests,omitempty"`
}

type RawMedalsInventory struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

type RawJacobPerks struct {
	DoubleDrops     *int `json:"double_drops,omitempty"`
	FarmingLevelCap *int `json:"farming_level_cap,omitempty"`
}

type RawJacobContest struct {
	Collected    int64   `json:"collected"`
	Position     *int    `json:"claimed_position,omitempty"`
	Participants *int    `json:"claimed_participants,omitempty"`
	Medal        *string `json:"claimed_medal,omitempty"`
}

type RawPetData struct {
	UUID      *string `json:"uuid"`
	Type      string  `json:"type"`
	Tier      string  `json:"tier"`
	Exp       float64 `json:"exp"`
	Active    bool    `json:"active"`
	HeldItem  *string `json:"heldItem,omitempty"`
	CandyUsed int     `json:"candyUsed"`
	Skin      *string `json:"skin,omitempty"`
}

type RawPlayerResponse struct {
	Success bool           `json:"success"`
	Player  *RawPlayerData `json:"player"`
}

type RawPlayerData struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"displayname"`
}
