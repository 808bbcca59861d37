package skyblock

// ContestMedal is the tier earned by one contest participation.
type ContestMedal int

const (
	MedalNone ContestMedal = iota
	MedalBronze
	MedalSilver
	MedalGold
)

func (m ContestMedal) String() string {
	switch m {
	case MedalGold:
		return "gold"
	case MedalSilver:
		return "silver"
	case MedalBronze:
		return "bronze"
	default:
		return "none"
	}
}

// EvaluateMedal computes the medal tier for a participation. An explicit
// medal label from the upstream payload wins outright; otherwise the tier
// is derived from the claimed position against percentile thresholds of
// the participant count. Ties at a threshold favor the higher medal.
func EvaluateMedal(label *string, position, participants *int) ContestMedal {
	if label != nil {
		switch *label {
		case "gold":
			return MedalGold
		case "silver":
			return MedalSilver
		case "bronze":
			return MedalBronze
		default:
			return MedalNone
		}
	}

	if position == nil || participants == nil {
		return MedalNone
	}

	pos := float64(*position)
	n := float64(*participants)

	switch {
	case pos <= n*0.05+1:
		return MedalGold
	case pos <= n*0.25+1:
		return MedalSilver
	case pos <= n*0.6+1:
		return MedalBronze
	default:
		return MedalNone
	}
}
