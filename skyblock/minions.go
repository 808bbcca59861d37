package skyblock

import "strings"

// RecordMinionTier marks tier (1-based) as crafted in the compact
// bitstring, e.g. "111011101" records tiers 1-9 with 4 and 8 missing.
// The string only ever grows and set bits are never cleared; recording an
// already-set tier is a no-op.
func RecordMinionTier(bits string, tier int) string {
	if tier < 1 {
		return bits
	}

	if len(bits) < tier {
		// Pad the gap with zeros, then append the new tier.
		return bits + strings.Repeat("0", tier-len(bits)-1) + "1"
	}

	return bits[:tier-1] + "1" + bits[tier:]
}

// SplitMinionToken splits a crafted-generator token like "SUGAR_CANE_9"
// into its minion type and tier. The tier suffix starts after the last
// underscore. Tokens without an underscore or a numeric suffix return
// ok=false.
func SplitMinionToken(token string) (minionType string, tier int, ok bool) {
	idx := strings.LastIndex(token, "_")
	if idx <= 0 || idx == len(token)-1 {
		return "", 0, false
	}

	tier = 0
	for _, r := range token[idx+1:] {
		if r < '0' || r > '9' {
			return "", 0, false
		}
		tier = tier*10 + int(r-'0')
	}
	if tier < 1 {
		return "", 0, false
	}

	return token[:idx], tier, true
}
