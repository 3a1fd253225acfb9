package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellyboard/internal/core/domain"
)

func namedRows(names ...string) []domain.Row {
	rows := make([]domain.Row, 0, len(names))
	for _, n := range names {
		rows = append(rows, domain.Row{DeviceId: n, Name: n})
	}
	return rows
}

func rowNames(rows []domain.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestSortNumericAware(t *testing.T) {
	rows := namedRows("relay 10", "relay 2", "relay 1")

	NewRowSorter("en").Sort(rows, SortState{Key: SortKeyName})

	assert.Equal(t, []string{"relay 1", "relay 2", "relay 10"}, rowNames(rows))
}

func TestSortCaseInsensitive(t *testing.T) {
	rows := namedRows("bravo", "Alpha", "charlie")

	NewRowSorter("en").Sort(rows, SortState{Key: SortKeyName})

	assert.Equal(t, []string{"Alpha", "bravo", "charlie"}, rowNames(rows))
}

func TestSortDescendingReversesAscending(t *testing.T) {
	sorter := NewRowSorter("en")

	asc := namedRows("b", "c", "a")
	sorter.Sort(asc, SortState{Key: SortKeyName})

	desc := namedRows("b", "c", "a")
	sorter.Sort(desc, SortState{Key: SortKeyName, Descending: true})

	require.Len(t, desc, 3)
	for i := range asc {
		assert.Equal(t, asc[i].Name, desc[len(desc)-1-i].Name)
	}
}

func TestSortAbsentValuesAsEmptyString(t *testing.T) {
	rows := []domain.Row{
		{DeviceId: "d1", Name: "one", Temperature: "40.0"},
		{DeviceId: "d2", Name: "two"},
		{DeviceId: "d3", Name: "three", Temperature: "21.5"},
	}

	NewRowSorter("en").Sort(rows, SortState{Key: SortKeyTemperature})

	assert.Equal(t, "d2", rows[0].DeviceId)
}

func TestSortBooleanColumns(t *testing.T) {
	rows := []domain.Row{
		{DeviceId: "d1", FirmwareUpdateAvailable: true},
		{DeviceId: "d2", FirmwareUpdateAvailable: false},
		{DeviceId: "d3", FirmwareUpdateAvailable: true},
	}

	NewRowSorter("en").Sort(rows, SortState{Key: SortKeyFirmware, Descending: true})

	assert.True(t, rows[0].FirmwareUpdateAvailable)
	assert.True(t, rows[1].FirmwareUpdateAvailable)
	assert.False(t, rows[2].FirmwareUpdateAvailable)
}

func TestSortTriStateColumn(t *testing.T) {
	rows := []domain.Row{
		{DeviceId: "on", Cloud: domain.TriTrue},
		{DeviceId: "unknown", Cloud: domain.TriUnknown},
		{DeviceId: "off", Cloud: domain.TriFalse},
	}

	NewRowSorter("en").Sort(rows, SortState{Key: SortKeyCloud})

	// unknown ("") < off ("0") < on ("1")
	assert.Equal(t, "unknown", rows[0].DeviceId)
	assert.Equal(t, "off", rows[1].DeviceId)
	assert.Equal(t, "on", rows[2].DeviceId)
}

func TestSortStateToggle(t *testing.T) {
	var s SortState
	s.Toggle(SortKeyName)
	assert.Equal(t, SortState{Key: SortKeyName, Descending: false}, s)

	s.Toggle(SortKeyName)
	assert.Equal(t, SortState{Key: SortKeyName, Descending: true}, s)

	// a different column always starts ascending
	s.Toggle(SortKeyIP)
	assert.Equal(t, SortState{Key: SortKeyIP, Descending: false}, s)
}

func TestSortUnknownLocaleFallsBackToEnglish(t *testing.T) {
	rows := namedRows("b", "a")
	NewRowSorter("??").Sort(rows, SortState{Key: SortKeyName})
	assert.Equal(t, []string{"a", "b"}, rowNames(rows))
}
