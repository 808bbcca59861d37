package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/skyblock-api/models"
	"github.com/Dosada05/skyblock-api/skyblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contestFixture struct {
	svc            *ContestService
	contests       *fakeContestRepo
	participations *fakeParticipationRepo
	members        *fakeMemberRepo
}

func newContestFixture() *contestFixture {
	f := &contestFixture{
		contests:       newFakeContestRepo(),
		participations: newFakeParticipationRepo(),
		members:        newFakeMemberRepo(),
	}
	f.svc = NewContestService(f.contests, f.participations, f.members,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func TestGetContestsAtFillsParticipations(t *testing.T) {
	f := newContestFixture()
	ts := skyblock.TimeFromDate(120, 3, 9)

	wheat, err := f.contests.FindOrCreateContest(context.Background(), ts, skyblock.CropWheat)
	require.NoError(t, err)
	_, err = f.contests.FindOrCreateContest(context.Background(), ts, skyblock.CropCactus)
	require.NoError(t, err)

	require.NoError(t, f.participations.Create(context.Background(), &models.ContestParticipation{
		ProfileMemberID: "member-1",
		JacobContestID:  wheat.ID,
		Collected:       42000,
		Position:        3,
		MedalEarned:     skyblock.MedalGold,
	}))

	contests, err := f.svc.GetContestsAt(context.Background(), ts)
	require.NoError(t, err)
	require.Len(t, contests, 2)

	var found bool
	for _, c := range contests {
		if c.Crop == skyblock.CropWheat {
			found = true
			require.Len(t, c.Participations, 1)
			assert.Equal(t, int64(42000), c.Participations[0].Collected)
		}
	}
	assert.True(t, found)
}

func TestGetContestsAtRejectsPreEpochTimestamps(t *testing.T) {
	f := newContestFixture()

	// Epoch-1 computes to year 0, not a negative year, because integer
	// division truncates toward zero. Both must be rejected.
	_, err := f.svc.GetContestsAt(context.Background(), skyblock.Epoch-1)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	_, err = f.svc.GetContestsAt(context.Background(), skyblock.Epoch-10*skyblock.SecondsPerYear)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	// Year 1 is the first queryable year.
	contests, err := f.svc.GetContestsAt(context.Background(), skyblock.TimeFromDate(1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, contests)
}

func TestGetContestsAtUnknownTimestampIsEmpty(t *testing.T) {
	f := newContestFixture()
	contests, err := f.svc.GetContestsAt(context.Background(), skyblock.TimeFromDate(120, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, contests)
}

func TestGetContestByKey(t *testing.T) {
	f := newContestFixture()
	ts := skyblock.TimeFromDate(120, 3, 9)
	created, err := f.contests.FindOrCreateContest(context.Background(), ts, skyblock.CropCocoaBeans)
	require.NoError(t, err)

	contest, err := f.svc.GetContestByKey(context.Background(), created.Key())
	require.NoError(t, err)
	assert.Equal(t, created.ID, contest.ID)
	assert.Equal(t, skyblock.CropCocoaBeans, contest.Crop)

	_, err = f.svc.GetContestByKey(context.Background(), "not a key")
	assert.ErrorIs(t, err, ErrInvalidContestKey)

	missing := skyblock.EncodeContestKey(skyblock.TimeFromDate(120, 6, 6), skyblock.CropWheat)
	_, err = f.svc.GetContestByKey(context.Background(), missing)
	assert.ErrorIs(t, err, ErrContestNotFound)
}

func TestGetContestsInMonthGroupsByDisplayDay(t *testing.T) {
	f := newContestFixture()

	// Internal year 119, month 3 (zero-based) = display 120/4.
	first := skyblock.TimeFromDate(119, 3, 0)
	mid := skyblock.TimeFromDate(119, 3, 15)
	nextMonth := skyblock.TimeFromDate(119, 4, 0)

	for _, ts := range []int64{first, mid, nextMonth} {
		_, err := f.contests.FindOrCreateContest(context.Background(), ts, skyblock.CropMelon)
		require.NoError(t, err)
	}

	byDay, err := f.svc.GetContestsInMonth(context.Background(), 120, 4)
	require.NoError(t, err)
	require.Len(t, byDay, 2)
	assert.Len(t, byDay[1], 1)
	assert.Len(t, byDay[16], 1)

	_, err = f.svc.GetContestsInMonth(context.Background(), 120, 13)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestGetPlayerContestHistory(t *testing.T) {
	f := newContestFixture()

	member := &models.ProfileMember{PlayerUUID: "abc123", ProfileID: "profile-1"}
	require.NoError(t, f.members.Upsert(context.Background(), member))

	older := skyblock.TimeFromDate(118, 2, 2)
	newer := skyblock.TimeFromDate(119, 2, 2)
	for _, ts := range []int64{older, newer} {
		contest, err := f.contests.FindOrCreateContest(context.Background(), ts, skyblock.CropPumpkin)
		require.NoError(t, err)
		require.NoError(t, f.participations.Create(context.Background(), &models.ContestParticipation{
			ProfileMemberID: member.ID,
			JacobContestID:  contest.ID,
			Collected:       9000,
			PlayerUUID:      "abc123",
			Timestamp:       ts,
		}))
	}

	history, err := f.svc.GetPlayerContestHistory(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, newer, history[0].Timestamp, "newest contest first")

	_, err = f.svc.GetPlayerContestHistory(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
