package skyblock

import "time"

// In-game calendar constants. One SkyBlock day lasts 20 real minutes,
// a month is 31 days and a year is 12 months.
const (
	Epoch         int64 = 1560275700
	SecondsPerDay int64 = 1200
	DaysPerMonth  int64 = 31
	MonthsPerYear int64 = 12

	SecondsPerMonth = SecondsPerDay * DaysPerMonth
	SecondsPerYear  = SecondsPerMonth * MonthsPerYear

	// ContestsPerYear is the number of contest events in one full year
	// (one every third day). Each event runs three crops.
	ContestsPerYear = 124
	CropsPerContest = 3
)

// Date is a point in the in-game calendar. Year, Month and Day are
// zero-based; add one for display.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateFromUnix converts a real-world unix timestamp to the in-game date.
func DateFromUnix(unix int64) Date {
	elapsed := unix - Epoch
	return Date{
		Year:  int(elapsed / SecondsPerYear),
		Month: int(elapsed % SecondsPerYear / SecondsPerMonth),
		Day:   int(elapsed % SecondsPerMonth / SecondsPerDay),
	}
}

// Now returns the current in-game date.
func Now() Date {
	return DateFromUnix(time.Now().Unix())
}

// TimeFromDate returns the unix timestamp at which the given zero-based
// in-game date begins.
func TimeFromDate(year, month, day int) int64 {
	return Epoch + int64(year)*SecondsPerYear + int64(month)*SecondsPerMonth + int64(day)*SecondsPerDay
}

// Unix returns the timestamp at which the date begins.
func (d Date) Unix() int64 {
	return TimeFromDate(d.Year, d.Month, d.Day)
}
