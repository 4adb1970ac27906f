package workouts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const timestampClockLayout = "2006-01-02 15:04"

// zoneOffsets maps the time zone abbreviations found in workout timestamps to their UTC offset in minutes.
// It is never written after init; callers outside the package get copies via ZoneOffsetEntries.
var zoneOffsets = map[string]int{
	"IST":  330, // India
	"UTC":  0,
	"GMT":  0,
	"EST":  -300,
	"EDT":  -240,
	"CST":  -360,
	"CDT":  -300,
	"MST":  -420,
	"MDT":  -360,
	"PST":  -480,
	"PDT":  -420,
	"BST":  60,
	"CET":  60,
	"CEST": 120,
	"EET":  120,
	"EEST": 180,
	"JST":  540,
	"AEST": 600,
	"AEDT": 660,
	"NZST": 720,
	"NZDT": 780,
}

type ZoneOffsetEntry struct {
	Zone          string `json:"zone"`
	OffsetMinutes int    `json:"offsetMinutes"`
}

// ZoneOffsetEntries returns a copy of the known abbreviations, sorted by zone.
func ZoneOffsetEntries() []ZoneOffsetEntry {
	entries := make([]ZoneOffsetEntry, 0, len(zoneOffsets))
	for zone, offset := range zoneOffsets {
		entries = append(entries, ZoneOffsetEntry{Zone: zone, OffsetMinutes: offset})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Zone < entries[j].Zone
	})
	return entries
}

// LookupZoneOffset returns the offset of a known abbreviation. The match is case sensitive.
func LookupZoneOffset(abbr string) (time.Duration, bool) {
	minutes, ok := zoneOffsets[abbr]
	if !ok {
		return 0, false
	}
	return time.Duration(minutes) * time.Minute, true
}

type ZoneKind int

const (
	ZoneUnknown ZoneKind = iota
	ZoneAbbreviation
	ZoneNumeric
)

// Timestamp is a parsed "YYYY-MM-DD HH:MM (ZONE)" workout timestamp.
type Timestamp struct {
	// Clock holds the literal date and clock fields, as if they were UTC.
	Clock  time.Time
	Zone   string
	Kind   ZoneKind
	Offset time.Duration
}

// ParseTimestamp splits a workout timestamp into its clock fields and zone marker.
// The zone is either a known abbreviation ("(EST)") or a signed hour offset ("(-04)", "+0530" and
// "+05:30" are accepted too). Unknown abbreviations resolve to a zero offset.
func ParseTimestamp(ts string) (Timestamp, error) {
	ts = strings.TrimSpace(ts)
	if len(ts) < len(timestampClockLayout) {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, ts)
	}

	clock, err := time.ParseInLocation(timestampClockLayout, ts[:len(timestampClockLayout)], time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("%w: %s", ErrInvalidTimestamp, err)
	}

	zone := strings.TrimSpace(ts[len(timestampClockLayout):])
	zone = strings.TrimSuffix(strings.TrimPrefix(zone, "("), ")")
	parsed := Timestamp{
		Clock: clock,
		Zone:  zone,
	}

	if offset, ok := LookupZoneOffset(zone); ok {
		parsed.Kind = ZoneAbbreviation
		parsed.Offset = offset
	} else if offset, ok := parseNumericOffset(zone); ok {
		parsed.Kind = ZoneNumeric
		parsed.Offset = offset
	}

	return parsed, nil
}

func parseNumericOffset(zone string) (time.Duration, bool) {
	if len(zone) < 2 || (zone[0] != '+' && zone[0] != '-') {
		return 0, false
	}
	sign := time.Duration(1)
	if zone[0] == '-' {
		sign = -1
	}

	digits := strings.ReplaceAll(zone[1:], ":", "")
	hoursPart, minutesPart := digits, ""
	if len(digits) > 2 {
		hoursPart, minutesPart = digits[:len(digits)-2], digits[len(digits)-2:]
	}

	hours, err := strconv.Atoi(hoursPart)
	if err != nil || hours > 14 {
		return 0, false
	}
	minutes := 0
	if minutesPart != "" {
		minutes, err = strconv.Atoi(minutesPart)
		if err != nil || minutes >= 60 {
			return 0, false
		}
	}

	return sign * (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), true
}

// SourceTime adjusts the literal clock fields by the zone offset.
// Abbreviation offsets are subtracted from the clock fields, numeric offsets are added.
// TODO: confirm the numeric branch sign against exports recorded with a numeric zone.
func (ts Timestamp) SourceTime() time.Time {
	switch ts.Kind {
	case ZoneAbbreviation:
		return ts.Clock.Add(-ts.Offset)
	case ZoneNumeric:
		return ts.Clock.Add(ts.Offset)
	default:
		return ts.Clock
	}
}

// HourLabel formats an hour of day (0-23) as "12am", "1am" ... "11pm".
func HourLabel(hour int) string {
	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return strconv.Itoa(hour) + suffix
}

// TimeOfDay returns the hour label of the workout as seen by a viewer in the given location.
func TimeOfDay(timestamp string, viewer *time.Location) (string, error) {
	ts, err := ParseTimestamp(timestamp)
	if err != nil {
		return "", err
	}
	if viewer == nil {
		viewer = time.Local
	}
	return HourLabel(ts.SourceTime().In(viewer).Hour()), nil
}

// CountTimesOfDay counts workouts per viewer-local hour label. Malformed timestamps are skipped.
func CountTimesOfDay(records []Record, viewer *time.Location) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		label, err := TimeOfDay(r.Timestamp(), viewer)
		if err != nil {
			continue
		}
		counts[label]++
	}
	return counts
}

// TopTimesOfDay returns the n most frequent workout hours in the viewer's location.
func TopTimesOfDay(records []Record, viewer *time.Location, n int) []Ranked {
	return Top(Rank(CountTimesOfDay(records, viewer)), n)
}
