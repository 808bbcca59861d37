package skyblock

import (
	"fmt"
	"strconv"
	"strings"
)

// Contest keys are the upstream wire format for one (timestamp, crop)
// pair: "<year>:<month>_<day>:<CROP_TAG>", with 1-based date components,
// e.g. "285:2_11:CACTUS". The crop tag may itself contain a colon
// (INK_SACK:3), so only the first two colons delimit fields.

// EncodeContestKey renders the key for a contest starting at the given
// unix timestamp.
func EncodeContestKey(timestamp int64, crop Crop) string {
	d := DateFromUnix(timestamp)
	return fmt.Sprintf("%d:%d_%d:%s", d.Year+1, d.Month+1, d.Day+1, crop.Tag())
}

// DecodeContestKey parses a contest key back into its timestamp and crop.
// Malformed keys and unknown crop tags return ok=false.
func DecodeContestKey(key string) (timestamp int64, crop Crop, ok bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return 0, 0, false
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, 0, false
	}

	monthDay := strings.SplitN(parts[1], "_", 2)
	if len(monthDay) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(monthDay[0])
	if err != nil || month < 1 || month > int(MonthsPerYear) {
		return 0, 0, false
	}
	day, err := strconv.Atoi(monthDay[1])
	if err != nil || day < 1 || day > int(DaysPerMonth) {
		return 0, 0, false
	}

	crop, found := CropFromTag(parts[2])
	if !found {
		return 0, 0, false
	}

	return TimeFromDate(year-1, month-1, day-1), crop, true
}
