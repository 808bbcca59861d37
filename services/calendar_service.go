package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/skyblock-api/cache"
	"github.com/Dosada05/skyblock-api/repositories"
	"github.com/Dosada05/skyblock-api/skyblock"
	"github.com/google/uuid"
)

const (
	// submissionQuorum is the number of identical submissions required to
	// finalize a season's calendar.
	submissionQuorum = 5

	// ballotTTL is the sliding expiry for both submitter locks and vote
	// tallies; abandoned tallies self-clean.
	ballotTTL = 5 * time.Hour

	// submissionCutoffMonth is the last zero-based in-game month that
	// still accepts calendar submissions.
	submissionCutoffMonth = 8

	canonicalKeyFormat = "contests:%d"
	submitterKeyFormat = "contestsSubmission:%s"
	ballotKeyFormat    = "contestsHash:%s"
)

// Broadcaster pushes protocol events to connected websocket clients.
type Broadcaster interface {
	BroadcastEvent(eventType string, payload interface{})
}

// SubmissionResult reports how a calendar submission was tallied.
type SubmissionResult struct {
	Votes     int64 `json:"votes"`
	Finalized bool  `json:"finalized"`
}

// YearCalendar is one season's reconstructed contest schedule. Contests
// maps each event timestamp to the display names of its three crops.
type YearCalendar struct {
	Year     int                `json:"year"`
	Count    int                `json:"count"`
	Complete bool               `json:"complete"`
	Contests map[int64][]string `json:"contests"`
}

// CalendarService runs the crowd-sourced consensus protocol over the
// in-game contest calendar. Ballots live only in the TTL cache; the
// database is never written by a submission.
type CalendarService struct {
	store    cache.Store
	contests repositories.ContestRepository
	hub      Broadcaster // optional, may be nil
	logger   *slog.Logger
	now      func() time.Time
}

func NewCalendarService(store cache.Store, contests repositories.ContestRepository, hub Broadcaster, logger *slog.Logger) *CalendarService {
	return &CalendarService{
		store:    store,
		contests: contests,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitCalendar validates and tallies one anonymous submission. origin
// identifies the submitter (a per-request random identity is substituted
// for loopback origins so local testing works); slots maps each contest
// timestamp of the current season to its three crop display names.
func (s *CalendarService) SubmitCalendar(ctx context.Context, origin string, loopback bool, slots map[int64][]string) (*SubmissionResult, error) {
	currentDate := skyblock.DateFromUnix(s.now().Unix())
	canonicalKey := fmt.Sprintf(canonicalKeyFormat, currentDate.Year)

	// Already finalized: accept idempotently, the canonical entry is
	// immutable for the rest of the season.
	if s.store.Exists(canonicalKey) {
		return &SubmissionResult{Votes: submissionQuorum, Finalized: true}, nil
	}

	if currentDate.Month > submissionCutoffMonth {
		return nil, ErrSubmissionTooLate
	}

	if len(slots) != skyblock.ContestsPerYear {
		return nil, fmt.Errorf("%w: expected %d, got %d",
			ErrSubmissionWrongCount, skyblock.ContestsPerYear, len(slots))
	}

	for timestamp, crops := range slots {
		if skyblock.DateFromUnix(timestamp).Year != currentDate.Year {
			return nil, fmt.Errorf("%w (%d)", ErrSubmissionWrongYear, currentDate.Year+1)
		}
		if !validCropSet(crops) {
			return nil, ErrSubmissionInvalidCrops
		}
	}

	submitterKey := fmt.Sprintf(submitterKeyFormat, origin)
	if loopback {
		// Random identity for localhost so the flow can be tested.
		submitterKey = fmt.Sprintf(submitterKeyFormat, uuid.NewString())
	}

	if s.store.Exists(submitterKey) {
		return nil, ErrSubmissionDuplicate
	}
	if err := s.store.Set(submitterKey, []byte("1"), ballotTTL); err != nil {
		return nil, fmt.Errorf("failed to record submitter: %w", err)
	}

	serialized := canonicalizeCalendar(slots)
	hash := sha256.Sum256(serialized)
	ballotKey := fmt.Sprintf(ballotKeyFormat, base64.StdEncoding.EncodeToString(hash[:]))

	votes, err := s.store.Increment(ballotKey, ballotTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to tally ballot: %w", err)
	}

	if votes < submissionQuorum {
		return &SubmissionResult{Votes: votes}, nil
	}

	// Quorum reached: the ballot content becomes the canonical calendar
	// until the next season begins. The write is idempotent, so replays
	// of the finalization step are harmless.
	untilNextYear := time.Duration(skyblock.TimeFromDate(currentDate.Year+1, 0, 0)-s.now().Unix()) * time.Second
	if err := s.store.Set(canonicalKey, serialized, untilNextYear); err != nil {
		return nil, fmt.Errorf("failed to finalize calendar: %w", err)
	}

	s.logger.Info("contest calendar finalized",
		slog.Int("year", currentDate.Year+1), slog.Int64("votes", votes))

	if s.hub != nil {
		s.hub.BroadcastEvent("CALENDAR_FINALIZED", map[string]interface{}{
			"year":  currentDate.Year + 1,
			"votes": votes,
		})
	}

	return &SubmissionResult{Votes: votes, Finalized: true}, nil
}

// GetCalendar resolves one season's calendar. The in-progress season is
// served from the consensus cache; past seasons derive from persisted
// contest records.
func (s *CalendarService) GetCalendar(ctx context.Context, year int) (*YearCalendar, error) {
	currentDate := skyblock.DateFromUnix(s.now().Unix())

	if currentDate.Year == year-1 {
		if data, ok := s.store.Get(fmt.Sprintf(canonicalKeyFormat, currentDate.Year)); ok {
			var contests map[int64][]string
			if err := json.Unmarshal(data, &contests); err != nil {
				s.logger.Error("failed to decode cached contests data", slog.Any("error", err))
			} else {
				return &YearCalendar{
					Year:     year,
					Count:    len(contests) * skyblock.CropsPerContest,
					Complete: len(contests) == skyblock.ContestsPerYear,
					Contests: contests,
				}, nil
			}
		}
		// In-progress season without a finalized calendar: fall through
		// to whatever partial records ingestion has produced.
	}

	start := skyblock.TimeFromDate(year-1, 0, 0)
	end := skyblock.TimeFromDate(year, 0, 0)

	records, err := s.contests.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load contests for year %d: %w", year, err)
	}

	contests := make(map[int64][]string)
	for _, record := range records {
		contests[record.Timestamp] = append(contests[record.Timestamp], record.Crop.Name())
	}

	return &YearCalendar{
		Year:     year,
		Count:    len(records),
		Complete: len(records) == skyblock.ContestsPerYear*skyblock.CropsPerContest,
		Contests: contests,
	}, nil
}

func validCropSet(crops []string) bool {
	if len(crops) != skyblock.CropsPerContest {
		return false
	}
	seen := make(map[string]struct{}, len(crops))
	for _, crop := range crops {
		if _, ok := skyblock.CropFromName(crop); !ok {
			return false
		}
		if _, dup := seen[crop]; dup {
			return false
		}
		seen[crop] = struct{}{}
	}
	return true
}

// canonicalizeCalendar renders the submission in a stable textual form:
// timestamps in numeric order, crops sorted within each slot. Submissions
// equal as sets hash to the same ballot.
func canonicalizeCalendar(slots map[int64][]string) []byte {
	timestamps := make([]int64, 0, len(slots))
	for ts := range slots {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ts := range timestamps {
		if i > 0 {
			buf.WriteByte(',')
		}
		crops := append([]string(nil), slots[ts]...)
		sort.Strings(crops)

		fmt.Fprintf(&buf, `"%d":`, ts)
		encoded, err := json.Marshal(crops)
		if err != nil {
			// Unreachable for a []string, kept for completeness.
			encoded = []byte("[]")
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')

	return buf.Bytes()
}
