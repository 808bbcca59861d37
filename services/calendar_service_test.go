package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/skyblock-api/cache"
	"github.com/Dosada05/skyblock-api/skyblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	events []string
}

func (b *fakeBroadcaster) BroadcastEvent(eventType string, _ interface{}) {
	b.events = append(b.events, eventType)
}

type calendarFixture struct {
	svc      *CalendarService
	contests *fakeContestRepo
	hub      *fakeBroadcaster
	year     int // internal (zero-based) season year the fixture clock sits in
}

func newCalendarFixture(t *testing.T) *calendarFixture {
	t.Helper()
	f := &calendarFixture{
		contests: newFakeContestRepo(),
		hub:      &fakeBroadcaster{},
		year:     150,
	}
	f.svc = NewCalendarService(cache.New(1), f.contests, f.hub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc.now = func() time.Time {
		return time.Unix(skyblock.TimeFromDate(f.year, 2, 5), 0)
	}
	return f
}

// validCalendar builds a full 124-slot season: one event every third day,
// crops rotated so every slot holds three distinct valid names.
func (f *calendarFixture) validCalendar() map[int64][]string {
	names := []string{
		"Cactus", "Carrot", "Cocoa Beans", "Melon", "Mushroom",
		"Nether Wart", "Potato", "Pumpkin", "Sugar Cane", "Wheat",
	}
	slots := make(map[int64][]string, skyblock.ContestsPerYear)
	for i := 0; i < skyblock.ContestsPerYear; i++ {
		dayIndex := i * 3
		ts := skyblock.TimeFromDate(f.year, dayIndex/31, dayIndex%31)
		slots[ts] = []string{names[i%10], names[(i+1)%10], names[(i+2)%10]}
	}
	return slots
}

func TestSubmitCalendarReachesQuorum(t *testing.T) {
	f := newCalendarFixture(t)
	slots := f.validCalendar()

	for i := 0; i < submissionQuorum-1; i++ {
		result, err := f.svc.SubmitCalendar(context.Background(), fmt.Sprintf("10.0.0.%d", i+1), false, slots)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), result.Votes)
		assert.False(t, result.Finalized)
	}

	result, err := f.svc.SubmitCalendar(context.Background(), "10.0.0.5", false, slots)
	require.NoError(t, err)
	assert.True(t, result.Finalized)
	assert.Equal(t, int64(submissionQuorum), result.Votes)
	assert.Equal(t, []string{"CALENDAR_FINALIZED"}, f.hub.events)

	calendar, err := f.svc.GetCalendar(context.Background(), f.year+1)
	require.NoError(t, err)
	assert.True(t, calendar.Complete)
	assert.Equal(t, skyblock.ContestsPerYear*skyblock.CropsPerContest, calendar.Count)
	assert.Len(t, calendar.Contests, skyblock.ContestsPerYear)
}

func TestSubmitCalendarHashIgnoresCropOrder(t *testing.T) {
	f := newCalendarFixture(t)
	slots := f.validCalendar()

	_, err := f.svc.SubmitCalendar(context.Background(), "10.0.0.1", false, slots)
	require.NoError(t, err)

	// Same calendar, crops listed back to front: must land on the same
	// ballot.
	reversed := make(map[int64][]string, len(slots))
	for ts, crops := range slots {
		reversed[ts] = []string{crops[2], crops[1], crops[0]}
	}
	result, err := f.svc.SubmitCalendar(context.Background(), "10.0.0.2", false, reversed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Votes)
}

func TestSubmitCalendarDisagreementStallsQuorum(t *testing.T) {
	f := newCalendarFixture(t)

	for i := 0; i < submissionQuorum; i++ {
		slots := f.validCalendar()
		// Tamper one slot so every submission hashes differently.
		ts := skyblock.TimeFromDate(f.year, 0, 0)
		slots[ts] = []string{"Wheat", "Cactus", []string{"Carrot", "Melon", "Potato", "Pumpkin", "Mushroom"}[i]}

		result, err := f.svc.SubmitCalendar(context.Background(), fmt.Sprintf("10.0.0.%d", i+1), false, slots)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Votes)
		assert.False(t, result.Finalized)
	}
}

func TestSubmitCalendarRejectsRepeatOrigin(t *testing.T) {
	f := newCalendarFixture(t)
	slots := f.validCalendar()

	_, err := f.svc.SubmitCalendar(context.Background(), "10.0.0.1", false, slots)
	require.NoError(t, err)

	_, err = f.svc.SubmitCalendar(context.Background(), "10.0.0.1", false, slots)
	assert.ErrorIs(t, err, ErrSubmissionDuplicate)

	// Different content from the same origin changes nothing.
	different := f.validCalendar()
	different[skyblock.TimeFromDate(f.year, 0, 0)] = []string{"Wheat", "Melon", "Potato"}
	_, err = f.svc.SubmitCalendar(context.Background(), "10.0.0.1", false, different)
	assert.ErrorIs(t, err, ErrSubmissionDuplicate)
}

func TestSubmitCalendarLoopbackBypassesOriginLock(t *testing.T) {
	f := newCalendarFixture(t)
	slots := f.validCalendar()

	for i := 0; i < 3; i++ {
		result, err := f.svc.SubmitCalendar(context.Background(), "127.0.0.1", true, slots)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), result.Votes)
	}
}

func TestSubmitCalendarAfterFinalizationIsIdempotent(t *testing.T) {
	f := newCalendarFixture(t)
	slots := f.validCalendar()

	for i := 0; i < submissionQuorum; i++ {
		_, err := f.svc.SubmitCalendar(context.Background(), fmt.Sprintf("10.0.0.%d", i+1), false, slots)
		require.NoError(t, err)
	}

	// Same origin again, and a brand-new origin: both accepted without a
	// duplicate error once the season is finalized.
	for _, origin := range []string{"10.0.0.1", "10.0.0.99"} {
		result, err := f.svc.SubmitCalendar(context.Background(), origin, false, slots)
		require.NoError(t, err)
		assert.True(t, result.Finalized)
	}
	assert.Len(t, f.hub.events, 1, "finalization broadcasts exactly once")
}

func TestSubmitCalendarValidation(t *testing.T) {
	f := newCalendarFixture(t)

	t.Run("wrong count", func(t *testing.T) {
		slots := f.validCalendar()
		delete(slots, skyblock.TimeFromDate(f.year, 0, 0))
		_, err := f.svc.SubmitCalendar(context.Background(), "10.0.1.1", false, slots)
		assert.ErrorIs(t, err, ErrSubmissionWrongCount)
	})

	t.Run("wrong year", func(t *testing.T) {
		slots := f.validCalendar()
		delete(slots, skyblock.TimeFromDate(f.year, 0, 0))
		slots[skyblock.TimeFromDate(f.year-1, 0, 0)] = []string{"Wheat", "Cactus", "Carrot"}
		_, err := f.svc.SubmitCalendar(context.Background(), "10.0.1.2", false, slots)
		assert.ErrorIs(t, err, ErrSubmissionWrongYear)
	})

	t.Run("unknown crop", func(t *testing.T) {
		slots := f.validCalendar()
		slots[skyblock.TimeFromDate(f.year, 0, 0)] = []string{"Wheat", "Cactus", "Corn"}
		_, err := f.svc.SubmitCalendar(context.Background(), "10.0.1.3", false, slots)
		assert.ErrorIs(t, err, ErrSubmissionInvalidCrops)
	})

	t.Run("duplicate crop", func(t *testing.T) {
		slots := f.validCalendar()
		slots[skyblock.TimeFromDate(f.year, 0, 0)] = []string{"Wheat", "Wheat", "Cactus"}
		_, err := f.svc.SubmitCalendar(context.Background(), "10.0.1.4", false, slots)
		assert.ErrorIs(t, err, ErrSubmissionInvalidCrops)
	})

	t.Run("too late in the year", func(t *testing.T) {
		late := newCalendarFixture(t)
		late.svc.now = func() time.Time {
			return time.Unix(skyblock.TimeFromDate(late.year, submissionCutoffMonth+1, 0), 0)
		}
		_, err := late.svc.SubmitCalendar(context.Background(), "10.0.1.5", false, late.validCalendar())
		assert.ErrorIs(t, err, ErrSubmissionTooLate)
	})
}

func TestGetCalendarFallsBackToPersistedContests(t *testing.T) {
	f := newCalendarFixture(t)
	pastYear := f.year - 2

	ts := skyblock.TimeFromDate(pastYear, 4, 7)
	for _, crop := range []skyblock.Crop{skyblock.CropWheat, skyblock.CropCactus, skyblock.CropMelon} {
		_, err := f.contests.FindOrCreateContest(context.Background(), ts, crop)
		require.NoError(t, err)
	}

	calendar, err := f.svc.GetCalendar(context.Background(), pastYear+1)
	require.NoError(t, err)
	assert.Equal(t, 3, calendar.Count)
	assert.False(t, calendar.Complete)
	assert.ElementsMatch(t, []string{"Wheat", "Cactus", "Melon"}, calendar.Contests[ts])
}
