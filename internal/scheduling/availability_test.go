package scheduling

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

var testLocation = time.FixedZone("CEST", 2*3600)

// testDate будущая дата относительно testNow
var (
	testDate = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2030, 6, 1, 10, 0, 0, 0, testLocation)
)

func window(staffID string, start, end string) domain.WorkingWindow {
	s, _ := TimeToMinutes(start)
	e, _ := TimeToMinutes(end)
	return domain.WorkingWindow{
		StaffID:     staffID,
		DayOfWeek:   int(testDate.Weekday()),
		StartMinute: s,
		EndMinute:   e,
		IsWorking:   true,
	}
}

func withBreak(w domain.WorkingWindow, start, end string) domain.WorkingWindow {
	s, _ := TimeToMinutes(start)
	e, _ := TimeToMinutes(end)
	w.BreakStart = ptr.Ptr(s)
	w.BreakEnd = ptr.Ptr(e)
	return w
}

func busyLocal(staffID string, date time.Time, start, end string) domain.BusyInterval {
	s, _ := TimeToMinutes(start)
	e, _ := TimeToMinutes(end)
	return domain.BusyInterval{
		StaffID: staffID,
		Start:   StartOfDay(date, s, testLocation).UTC(),
		End:     StartOfDay(date, e, testLocation).UTC(),
	}
}

func query(selector domain.StaffSelector, duration int) SlotQuery {
	return SlotQuery{
		Date:            testDate,
		Selector:        selector,
		DurationMinutes: duration,
		StepMinutes:     30,
		BufferMinutes:   30,
		Now:             testNow,
		Location:        testLocation,
	}
}

func TestComputeAvailableSlots_ShiftWithBreak(t *testing.T) {
	windows := []domain.WorkingWindow{
		withBreak(window("s1", "09:00", "17:00"), "13:00", "14:00"),
	}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 30), windows, nil)
	require.NoError(t, err)

	assert.Contains(t, slots, "09:00")
	assert.Contains(t, slots, "12:30")
	assert.NotContains(t, slots, "13:00")
	assert.NotContains(t, slots, "13:30")
	assert.Contains(t, slots, "14:00")
	assert.Contains(t, slots, "16:30")
	assert.NotContains(t, slots, "16:45")
	assert.Equal(t, "16:30", slots[len(slots)-1])
	assert.Len(t, slots, 14)
}

func TestComputeAvailableSlots_BoundaryTouchingBookingIsNotConflict(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "17:00")}
	busy := []domain.BusyInterval{busyLocal("s1", testDate, "10:00", "10:30")}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 30), windows, busy)
	require.NoError(t, err)

	assert.NotContains(t, slots, "10:00")
	assert.Contains(t, slots, "09:30")
	assert.Contains(t, slots, "10:30")
}

func TestComputeAvailableSlots_AnyStaffUnion(t *testing.T) {
	windows := []domain.WorkingWindow{
		window("s1", "09:00", "17:00"),
		window("s2", "09:00", "17:00"),
	}
	busy := []domain.BusyInterval{busyLocal("s1", testDate, "09:00", "09:30")}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 30), windows, busy)
	require.NoError(t, err)
	assert.Contains(t, slots, "09:00")

	specific, err := ComputeAvailableSlots(query(domain.StaffSelector{StaffID: "s1"}, 30), windows, busy)
	require.NoError(t, err)
	assert.NotContains(t, specific, "09:00")
	assert.Contains(t, specific, "09:30")
}

func TestComputeAvailableSlots_PerStaffBounds(t *testing.T) {
	// смены не пересекаются: слоты не должны выходить за смену каждого мастера
	windows := []domain.WorkingWindow{
		window("morning", "09:00", "12:00"),
		window("evening", "15:00", "18:00"),
	}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 60), windows, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"09:00", "09:30", "10:00", "10:30", "11:00",
		"15:00", "15:30", "16:00", "16:30", "17:00",
	}, slots)
}

func TestComputeAvailableSlots_BusyOtherStaffIgnored(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "11:00")}
	busy := []domain.BusyInterval{busyLocal("s2", testDate, "09:00", "11:00")}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 30), windows, busy)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slots)
}

func TestComputeAvailableSlots_NobodyWorks(t *testing.T) {
	off := window("s1", "09:00", "17:00")
	off.IsWorking = false
	otherDay := window("s2", "09:00", "17:00")
	otherDay.DayOfWeek = (otherDay.DayOfWeek + 1) % 7

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 30), []domain.WorkingWindow{off, otherDay}, nil)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestComputeAvailableSlots_DurationLongerThanShift(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "10:00")}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 90), windows, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeAvailableSlots_PastDate(t *testing.T) {
	q := query(domain.AnyStaff, 30)
	q.Now = time.Date(2030, 6, 4, 8, 0, 0, 0, testLocation)

	slots, err := ComputeAvailableSlots(q, []domain.WorkingWindow{window("s1", "09:00", "17:00")}, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeAvailableSlots_TodayFilter(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "17:00")}

	q := query(domain.AnyStaff, 30)
	q.Now = time.Date(2030, 6, 3, 10, 10, 0, 0, testLocation)

	slots, err := ComputeAvailableSlots(q, windows, nil)
	require.NoError(t, err)

	// 10:10 + 30 минут буфера = 10:40, первый слот по шагу 11:00
	require.NotEmpty(t, slots)
	assert.Equal(t, "11:00", slots[0])
	assert.NotContains(t, slots, "10:30")
}

func TestComputeAvailableSlots_TodayComparedInBusinessTimezone(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "17:00")}

	// 23:30 UTC 2 июня это уже 3 июня 01:30 по времени салона
	q := query(domain.AnyStaff, 30)
	q.Now = time.Date(2030, 6, 2, 23, 30, 0, 0, time.UTC)

	slots, err := ComputeAvailableSlots(q, windows, nil)
	require.NoError(t, err)
	assert.Contains(t, slots, "09:00")

	// 15:00 UTC = 17:00 по времени салона, слотов на сегодня больше нет
	q.Now = time.Date(2030, 6, 3, 15, 0, 0, 0, time.UTC)
	slots, err = ComputeAvailableSlots(q, windows, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeAvailableSlots_FutureDateUnaffectedByNow(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "17:00")}

	early := query(domain.AnyStaff, 30)
	early.Now = time.Date(2030, 6, 2, 8, 0, 0, 0, testLocation)
	late := query(domain.AnyStaff, 30)
	late.Now = time.Date(2030, 6, 2, 23, 0, 0, 0, testLocation)

	a, err := ComputeAvailableSlots(early, windows, nil)
	require.NoError(t, err)
	b, err := ComputeAvailableSlots(late, windows, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeAvailableSlots_BusyIntervalConvertedToLocalTime(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "12:00")}
	// 08:00-09:00 UTC = 10:00-11:00 по времени салона
	busy := []domain.BusyInterval{{
		StaffID: "s1",
		Start:   time.Date(2030, 6, 3, 8, 0, 0, 0, time.UTC),
		End:     time.Date(2030, 6, 3, 9, 0, 0, 0, time.UTC),
	}}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 30), windows, busy)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "11:00", "11:30"}, slots)
}

func TestComputeAvailableSlots_CustomStep(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "10:00")}
	q := query(domain.AnyStaff, 30)
	q.StepMinutes = 15

	slots, err := ComputeAvailableSlots(q, windows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:15", "09:30"}, slots)
}

func TestComputeAvailableSlots_EndOfDayWindow(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "23:00", "24:00")}

	slots, err := ComputeAvailableSlots(query(domain.AnyStaff, 30), windows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"23:00", "23:30"}, slots)
}

func TestComputeAvailableSlots_InvalidQuery(t *testing.T) {
	q := query(domain.AnyStaff, 0)
	_, err := ComputeAvailableSlots(q, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	q = query(domain.AnyStaff, 30)
	q.Location = nil
	_, err = ComputeAvailableSlots(q, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestComputeAvailableSlots_Properties(t *testing.T) {
	rnd := rand.New(rand.NewPCG(42, 7))
	weekday := int(testDate.Weekday())

	for iteration := 0; iteration < 200; iteration++ {
		var (
			windows []domain.WorkingWindow
			busy    []domain.BusyInterval
		)

		staffCount := 1 + rnd.IntN(3)
		for s := 0; s < staffCount; s++ {
			staffID := string(rune('a' + s))
			start := rnd.IntN(20) * 30
			end := start + 60 + rnd.IntN(20)*30
			if end > domain.MinutesPerDay {
				end = domain.MinutesPerDay
			}
			w := domain.WorkingWindow{StaffID: staffID, DayOfWeek: weekday, StartMinute: start, EndMinute: end, IsWorking: true}
			if rnd.IntN(2) == 0 && end-start > 60 {
				bs := start + 30
				be := bs + 30
				w.BreakStart, w.BreakEnd = &bs, &be
			}
			windows = append(windows, w)

			for b := 0; b < rnd.IntN(4); b++ {
				bs := start + rnd.IntN(end-start)
				be := bs + 15 + rnd.IntN(60)
				busy = append(busy, domain.BusyInterval{
					StaffID: staffID,
					Start:   StartOfDay(testDate, bs, testLocation),
					End:     StartOfDay(testDate, be, testLocation),
				})
			}
		}

		duration := 15 + rnd.IntN(6)*15
		q := query(domain.AnyStaff, duration)

		slots, err := ComputeAvailableSlots(q, windows, busy)
		require.NoError(t, err)

		again, err := ComputeAvailableSlots(q, windows, busy)
		require.NoError(t, err)
		assert.Equal(t, slots, again, "pure function")

		for _, slot := range slots {
			start, err := TimeToMinutes(slot)
			require.NoError(t, err)
			end := start + duration

			// хотя бы один мастер свободен на весь интервал
			_, err = ResolveStaffAssignment(AssignmentQuery{
				Selector:        domain.AnyStaff,
				Date:            testDate,
				StartMinute:     start,
				DurationMinutes: duration,
				Location:        testLocation,
			}, windows, busy, nil)
			assert.NoError(t, err, "slot %s (%d-%d) has no free staff", slot, start, end)
		}
	}
}
