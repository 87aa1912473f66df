package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/canteen-app/store"
)

// pollDateColumns are the candidate names for the date column on the polls
// table, in preference order. Deployments that predate the rename still carry
// the plain "date" column, so every lookup is tried against each in turn.
var pollDateColumns = []string{"poll_date", "date"}

// WarningPollsTableMissing tags a degraded result: the polls table itself is
// absent and attendance flows fall back to legacy (id-less) polls.
const WarningPollsTableMissing = "polls-table-missing"

// ResolvedPoll is the normalized poll record handed to callers. ID is nil only
// for legacy polls synthesized when the backing table does not exist.
type ResolvedPoll struct {
	ID       *uint  `json:"id"`
	Date     string `json:"date"`
	MealSlot string `json:"meal_slot"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	IsLegacy bool   `json:"is_legacy"`
}

type PollsResult struct {
	Polls      []ResolvedPoll `json:"polls"`
	ColumnUsed string         `json:"column_used,omitempty"`
	Warning    string         `json:"warning,omitempty"`
}

type EnsureResult struct {
	Poll       ResolvedPoll `json:"poll"`
	ColumnUsed string       `json:"column_used,omitempty"`
}

// PollResolver maps (date, meal slot) pairs to canonical polls, creating them
// lazily and tolerating schema drift on the polls table.
type PollResolver struct {
	Store store.Store
	Caps  *CapabilityCache
	Now   func() time.Time
}

func NewPollResolver(st store.Store) *PollResolver {
	return &PollResolver{
		Store: st,
		Caps:  NewCapabilityCache(),
		Now:   time.Now,
	}
}

// FetchPollsForDate lists the polls of one date, trying each candidate date
// column until the store accepts one. A missing polls table degrades to an
// empty list plus a warning instead of an error.
func (r *PollResolver) FetchPollsForDate(date string) (*PollsResult, error) {
	var lastErr error
	for _, col := range pollDateColumns {
		rows, err := r.Store.Select("polls", nil,
			map[string]any{col: date},
			store.SelectOptions{OrderBy: "meal_slot asc"})
		if err != nil {
			switch store.Classify(err) {
			case store.ClassMissingTable:
				return &PollsResult{Polls: []ResolvedPoll{}, Warning: WarningPollsTableMissing}, nil
			case store.ClassMissingColumn:
				lastErr = err
				continue
			default:
				return nil, err
			}
		}

		polls := make([]ResolvedPoll, 0, len(rows))
		for _, row := range rows {
			polls = append(polls, pollFromRow(row, col, date))
		}
		return &PollsResult{Polls: polls, ColumnUsed: col}, nil
	}

	if store.Classify(lastErr) == store.ClassMissingTable {
		return &PollsResult{Polls: []ResolvedPoll{}, Warning: WarningPollsTableMissing}, nil
	}
	return nil, lastErr
}

// EnsurePollForSlot returns the canonical poll for (date, slot), inserting it
// when absent. Repeated calls return the same poll id; a lost insert race
// against the (poll_date, meal_slot) unique index is resolved by re-fetching
// the winner's row. A missing polls table yields the legacy fallback poll.
func (r *PollResolver) EnsurePollForSlot(date, slot string) (*EnsureResult, error) {
	var lastErr error
	for _, col := range pollDateColumns {
		poll, err := r.lookupPoll(col, date, slot)
		if err != nil {
			switch store.Classify(err) {
			case store.ClassMissingTable:
				return r.legacyResult(date, slot), nil
			case store.ClassMissingColumn:
				lastErr = err
				continue
			default:
				return nil, err
			}
		}
		if poll != nil {
			return &EnsureResult{Poll: *poll, ColumnUsed: col}, nil
		}

		now := r.Now()
		payload := map[string]any{
			col:          date,
			"meal_slot":  slot,
			"title":      slotTitle(slot, date),
			"status":     "active",
			"created_at": now,
			"updated_at": now,
		}
		if err := r.Store.Insert("polls", []map[string]any{payload}); err != nil {
			switch store.Classify(err) {
			case store.ClassMissingTable:
				return r.legacyResult(date, slot), nil
			case store.ClassMissingColumn:
				lastErr = err
				continue
			case store.ClassConflict:
				// another caller created the poll first; fall through and
				// fetch their row
			default:
				return nil, err
			}
		}

		poll, err = r.lookupPoll(col, date, slot)
		if err != nil {
			if store.Classify(err) == store.ClassMissingTable {
				return r.legacyResult(date, slot), nil
			}
			return nil, err
		}
		if poll == nil {
			return nil, fmt.Errorf("poll for %s/%s not visible after insert", date, slot)
		}
		return &EnsureResult{Poll: *poll, ColumnUsed: col}, nil
	}

	if store.Classify(lastErr) == store.ClassMissingTable {
		return r.legacyResult(date, slot), nil
	}
	return nil, lastErr
}

// ResponsesSupportPollID probes whether the poll_responses table carries a
// poll_id column. The result is memoized; only an explicit Reset on the cache
// triggers a re-probe.
func (r *PollResolver) ResponsesSupportPollID() bool {
	if supported, known := r.Caps.Get(); known {
		return supported
	}

	_, err := r.Store.Select("poll_responses", []string{"poll_id"}, nil,
		store.SelectOptions{Limit: 1})
	supported := true
	if err != nil && store.Classify(err) == store.ClassMissingColumn {
		supported = false
	}
	r.Caps.Set(supported)
	return supported
}

// lookupPoll fetches at most one poll matching (col = date, meal_slot = slot).
// Zero matches is not an error; nil, nil means "not found".
func (r *PollResolver) lookupPoll(col, date, slot string) (*ResolvedPoll, error) {
	rows, err := r.Store.Select("polls", nil,
		map[string]any{col: date, "meal_slot": slot},
		store.SelectOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	poll := pollFromRow(rows[0], col, date)
	return &poll, nil
}

func (r *PollResolver) legacyResult(date, slot string) *EnsureResult {
	return &EnsureResult{
		Poll: ResolvedPoll{
			Date:     date,
			MealSlot: slot,
			Title:    slotTitle(slot, date),
			Status:   "active",
			IsLegacy: true,
		},
	}
}

// slotTitle builds the display title, e.g. "Lunch Attendance - 2024-01-01".
// Only the first character of the slot is capitalized.
func slotTitle(slot, date string) string {
	name := slot
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s Attendance - %s", name, date)
}

// pollFromRow normalizes a raw store row. The date attribute is read from
// whichever column the store actually has, falling back to the requested date
// when the stored value is empty.
func pollFromRow(row map[string]any, dateCol, requestedDate string) ResolvedPoll {
	poll := ResolvedPoll{
		Date:     requestedDate,
		MealSlot: rowString(row, "meal_slot"),
		Title:    rowString(row, "title"),
		Status:   "active",
	}
	if id, ok := rowUint(row, "id"); ok {
		poll.ID = &id
	}
	if d := rowString(row, dateCol); d != "" {
		poll.Date = d
	}
	if s := rowString(row, "status"); s != "" {
		poll.Status = s
	}
	return poll
}

func rowString(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02")
	}
	return ""
}

func rowUint(row map[string]any, key string) (uint, bool) {
	switch v := row[key].(type) {
	case uint:
		return v, true
	case uint64:
		return uint(v), true
	case int:
		return uint(v), true
	case int32:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	}
	return 0, false
}
