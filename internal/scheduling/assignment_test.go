package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// reverseShuffler детерминированная перестановка для тестов
type reverseShuffler struct{}

func (reverseShuffler) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func assignment(selector domain.StaffSelector, start string, duration int) AssignmentQuery {
	s, _ := TimeToMinutes(start)
	return AssignmentQuery{
		Selector:        selector,
		Date:            testDate,
		StartMinute:     s,
		DurationMinutes: duration,
		Location:        testLocation,
	}
}

func TestResolveStaffAssignment_AnyPicksFreeStaff(t *testing.T) {
	windows := []domain.WorkingWindow{
		window("s1", "09:00", "17:00"),
		window("s2", "09:00", "17:00"),
	}
	busy := []domain.BusyInterval{busyLocal("s1", testDate, "09:00", "09:30")}

	for i := 0; i < 20; i++ {
		staffID, err := ResolveStaffAssignment(assignment(domain.AnyStaff, "09:00", 30), windows, busy, NewRandShuffler(uint64(i)))
		require.NoError(t, err)
		assert.Equal(t, "s2", staffID)
	}
}

func TestResolveStaffAssignment_SpecificStaff(t *testing.T) {
	windows := []domain.WorkingWindow{
		withBreak(window("s1", "09:00", "17:00"), "13:00", "14:00"),
	}
	busy := []domain.BusyInterval{busyLocal("s1", testDate, "10:00", "10:30")}
	s1 := domain.StaffSelector{StaffID: "s1"}

	staffID, err := ResolveStaffAssignment(assignment(s1, "09:30", 30), windows, busy, nil)
	require.NoError(t, err)
	assert.Equal(t, "s1", staffID)

	tests := []struct {
		name     string
		start    string
		duration int
	}{
		{name: "busy", start: "10:00", duration: 30},
		{name: "overlaps busy tail", start: "09:45", duration: 30},
		{name: "break", start: "12:45", duration: 30},
		{name: "before shift", start: "08:30", duration: 30},
		{name: "overhangs shift end", start: "16:45", duration: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveStaffAssignment(assignment(s1, tt.start, tt.duration), windows, busy, nil)
			assert.ErrorIs(t, err, ErrSlotUnavailable)
		})
	}
}

func TestResolveStaffAssignment_UnknownStaff(t *testing.T) {
	windows := []domain.WorkingWindow{window("s1", "09:00", "17:00")}

	_, err := ResolveStaffAssignment(assignment(domain.StaffSelector{StaffID: "ghost"}, "10:00", 30), windows, nil, nil)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestResolveStaffAssignment_NoStaffAvailable(t *testing.T) {
	windows := []domain.WorkingWindow{
		window("s1", "09:00", "17:00"),
		window("s2", "09:00", "17:00"),
	}
	busy := []domain.BusyInterval{
		busyLocal("s1", testDate, "09:00", "10:00"),
		busyLocal("s2", testDate, "09:30", "10:30"),
	}

	_, err := ResolveStaffAssignment(assignment(domain.AnyStaff, "09:30", 30), windows, busy, NewRandShuffler(1))
	assert.ErrorIs(t, err, ErrNoStaffAvailable)

	_, err = ResolveStaffAssignment(assignment(domain.AnyStaff, "09:30", 30), nil, nil, NewRandShuffler(1))
	assert.ErrorIs(t, err, ErrNoStaffAvailable)
}

func TestResolveStaffAssignment_ShuffleIsInjected(t *testing.T) {
	windows := []domain.WorkingWindow{
		window("b", "09:00", "17:00"),
		window("a", "09:00", "17:00"),
		window("c", "09:00", "17:00"),
	}

	staffID, err := ResolveStaffAssignment(assignment(domain.AnyStaff, "10:00", 30), windows, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", staffID)

	staffID, err = ResolveStaffAssignment(assignment(domain.AnyStaff, "10:00", 30), windows, nil, reverseShuffler{})
	require.NoError(t, err)
	assert.Equal(t, "c", staffID)
}

func TestResolveStaffAssignment_SeededShufflerIsDeterministic(t *testing.T) {
	windows := []domain.WorkingWindow{
		window("a", "09:00", "17:00"),
		window("b", "09:00", "17:00"),
		window("c", "09:00", "17:00"),
		window("d", "09:00", "17:00"),
	}

	first, err := ResolveStaffAssignment(assignment(domain.AnyStaff, "10:00", 30), windows, nil, NewRandShuffler(99))
	require.NoError(t, err)
	second, err := ResolveStaffAssignment(assignment(domain.AnyStaff, "10:00", 30), windows, nil, NewRandShuffler(99))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	picked := make(map[string]bool)
	shuffler := NewRandShuffler(7)
	for i := 0; i < 100; i++ {
		staffID, err := ResolveStaffAssignment(assignment(domain.AnyStaff, "10:00", 30), windows, nil, shuffler)
		require.NoError(t, err)
		picked[staffID] = true
	}
	assert.Greater(t, len(picked), 1, "load is spread across staff")
}
