package service

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"shellyboard/internal/core/domain"
)

const DefaultSortKey = "name"

// Sortable column keys, matching the Row JSON field names.
const (
	SortKeyName        = "name"
	SortKeyModel       = "model"
	SortKeyIP          = "ip"
	SortKeyMAC         = "mac"
	SortKeyCloud       = "cloud"
	SortKeyTemperature = "temperature"
	SortKeyRSSI        = "rssi"
	SortKeyUptime      = "uptime"
	SortKeyFirmware    = "firmware"
)

func ValidSortKey(key string) bool {
	switch key {
	case SortKeyName, SortKeyModel, SortKeyIP, SortKeyMAC, SortKeyCloud,
		SortKeyTemperature, SortKeyRSSI, SortKeyUptime, SortKeyFirmware:
		return true
	}
	return false
}

// SortState is a single column+direction pair, not per-column memory.
type SortState struct {
	Key        string
	Descending bool
}

// Toggle flips the direction when the active column is clicked again and
// resets to ascending when a different column is picked.
func (s *SortState) Toggle(key string) {
	if s.Key == key {
		s.Descending = !s.Descending
		return
	}
	s.Key = key
	s.Descending = false
}

// RowSorter compares extracted string values with a locale-aware collator
// configured for case-insensitive, numeric-aware ordering ("10" sorts after
// "2").
type RowSorter struct {
	collator *collate.Collator
}

func NewRowSorter(locale string) *RowSorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &RowSorter{
		collator: collate.New(tag, collate.IgnoreCase, collate.Numeric),
	}
}

// Sort orders rows in place. There is no secondary key; ties keep whatever
// order the underlying sort leaves them in.
func (s *RowSorter) Sort(rows []domain.Row, state SortState) {
	sort.Slice(rows, func(i, j int) bool {
		c := s.collator.CompareString(sortValue(rows[i], state.Key), sortValue(rows[j], state.Key))
		if state.Descending {
			return c > 0
		}
		return c < 0
	})
}

// sortValue normalizes a column to its comparable string form: absent
// values become "", booleans become "1"/"0", everything else its display
// string.
func sortValue(r domain.Row, key string) string {
	switch key {
	case SortKeyModel:
		return r.Model
	case SortKeyIP:
		return r.IP
	case SortKeyMAC:
		return r.MAC
	case SortKeyCloud:
		return triSortValue(r.Cloud)
	case SortKeyTemperature:
		return r.Temperature
	case SortKeyRSSI:
		return r.RSSI
	case SortKeyUptime:
		return r.Uptime
	case SortKeyFirmware:
		return boolSortValue(r.FirmwareUpdateAvailable)
	default:
		return r.Name
	}
}

func boolSortValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func triSortValue(t domain.TriState) string {
	switch t {
	case domain.TriTrue:
		return "1"
	case domain.TriFalse:
		return "0"
	}
	return ""
}
