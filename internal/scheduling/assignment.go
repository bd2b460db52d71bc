package scheduling

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrSlotUnavailable выбранный мастер не может принять запись в это время
	ErrSlotUnavailable = errors.New("scheduling: slot unavailable")

	// ErrNoStaffAvailable ни один мастер не свободен в это время
	ErrNoStaffAvailable = errors.New("scheduling: no staff available")
)

// Shuffler источник случайной перестановки для выбора мастера
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// RandShuffler потокобезопасный Shuffler на math/rand/v2
type RandShuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandShuffler создает Shuffler с фиксированным зерном
func NewRandShuffler(seed uint64) *RandShuffler {
	return &RandShuffler{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandShuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(n, swap)
}

// AssignmentQuery запрошенный интервал записи
type AssignmentQuery struct {
	Selector        domain.StaffSelector
	Date            time.Time
	StartMinute     int
	DurationMinutes int
	Location        *time.Location
}

// ResolveStaffAssignment выбирает мастера для записи.
// Конкретный мастер проверяется на смену, перерыв и занятость, иначе ErrSlotUnavailable.
// Для "любого" берется случайный мастер из свободных, иначе ErrNoStaffAvailable.
func ResolveStaffAssignment(q AssignmentQuery, candidates []domain.WorkingWindow, busy []domain.BusyInterval, shuffler Shuffler) (string, error) {
	if q.Location == nil || q.DurationMinutes <= 0 {
		return "", fmt.Errorf("%w: location and positive duration are required", ErrInvalidQuery)
	}

	date := civil(q.Date)
	weekday := int(date.Weekday())
	start := q.StartMinute
	end := start + q.DurationMinutes
	busyByStaff := busyMinutesByStaff(busy, date, q.Location)

	fits := func(w *domain.WorkingWindow) bool {
		if w.DayOfWeek != weekday || !w.IsWorking || !w.IsValid() {
			return false
		}
		if start < w.StartMinute || end > w.EndMinute {
			return false
		}
		if w.HasBreak() && IntervalsOverlap(start, end, *w.BreakStart, *w.BreakEnd) {
			return false
		}
		return !overlapsAny(start, end, busyByStaff[w.StaffID])
	}

	if !q.Selector.IsAny() {
		for i := range candidates {
			if candidates[i].StaffID == q.Selector.StaffID && fits(&candidates[i]) {
				return q.Selector.StaffID, nil
			}
		}
		return "", ErrSlotUnavailable
	}

	seen := make(map[string]struct{})
	pool := make([]string, 0, len(candidates))
	for i := range candidates {
		id := candidates[i].StaffID
		if _, ok := seen[id]; ok {
			continue
		}
		if fits(&candidates[i]) {
			seen[id] = struct{}{}
			pool = append(pool, id)
		}
	}

	if len(pool) == 0 {
		return "", ErrNoStaffAvailable
	}

	// порядок до перестановки не зависит от порядка окон
	sort.Strings(pool)
	if shuffler != nil {
		shuffler.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	return pool[0], nil
}
