// File: /utils/dates.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTBD is rendered for events without a calendar date.
const DateTBD = "Date TBD"

const (
	shortDateLayout    = "1/2/2006"
	displayDateTimeFmt = "1/2/2006, 3:04:05 PM"
)

// DateFormatOptions selects the parts FormatCustom renders. Empty fields are
// omitted; a zero value renders the short date.
//
//	Weekday: "long" | "short"
//	Year:    "numeric" | "2-digit"
//	Month:   "long" | "short" | "numeric" | "2-digit"
//	Day:     "numeric" | "2-digit"
type DateFormatOptions struct {
	Weekday string `json:"weekday,omitempty"`
	Year    string `json:"year,omitempty"`
	Month   string `json:"month,omitempty"`
	Day     string `json:"day,omitempty"`
}

// DateFormatter renders calendar dates (YYYY-MM-DD) in Location without ever
// running them through an instant parser, so the day never shifts.
type DateFormatter struct {
	Location *time.Location
	Now      func() time.Time
}

func NewDateFormatter(loc *time.Location) *DateFormatter {
	if loc == nil {
		loc = time.Local
	}
	return &DateFormatter{Location: loc, Now: time.Now}
}

func (f *DateFormatter) loc() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

func (f *DateFormatter) now() time.Time {
	if f.Now == nil {
		return time.Now().In(f.loc())
	}
	return f.Now().In(f.loc())
}

// calendarDate builds a local midnight from the year, month and day components
// of s. Anything after a 'T' or a space is ignored.
func (f *DateFormatter) calendarDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	datePart, _, _ := strings.Cut(s, "T")
	datePart, _, _ = strings.Cut(datePart, " ")

	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, f.loc()), true
}

// FormatForDisplay renders the short en-US form, e.g. 8/15/2025.
func (f *DateFormatter) FormatForDisplay(dateString string) string {
	date, ok := f.calendarDate(dateString)
	if !ok {
		return DateTBD
	}
	return date.Format(shortDateLayout)
}

// FormatForInput returns the YYYY-MM-DD portion for date pickers.
func (f *DateFormatter) FormatForInput(dateString string) string {
	dateString = strings.TrimSpace(dateString)
	if dateString == "" {
		return ""
	}
	datePart, _, _ := strings.Cut(dateString, "T")
	return datePart
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999-07",
}

// FormatDateTimeForDisplay is for real instants such as created_at: here the
// zone conversion is wanted. Offset-less timestamps are read as UTC.
func (f *DateFormatter) FormatDateTimeForDisplay(datetimeString string) string {
	datetimeString = strings.TrimSpace(datetimeString)
	if datetimeString == "" {
		return ""
	}
	for _, layout := range instantLayouts {
		if instant, err := time.Parse(layout, datetimeString); err == nil {
			return instant.In(f.loc()).Format(displayDateTimeFmt)
		}
	}
	return ""
}

// FormatTimeForDisplay renders an instant already held as time.Time.
func (f *DateFormatter) FormatTimeForDisplay(instant time.Time) string {
	if instant.IsZero() {
		return ""
	}
	return instant.In(f.loc()).Format(displayDateTimeFmt)
}

func (f *DateFormatter) FormatCustom(dateString string, opts DateFormatOptions) string {
	date, ok := f.calendarDate(dateString)
	if !ok {
		return DateTBD
	}
	if opts == (DateFormatOptions{}) {
		return date.Format(shortDateLayout)
	}

	var weekday string
	switch opts.Weekday {
	case "long":
		weekday = date.Weekday().String()
	case "short":
		weekday = date.Weekday().String()[:3]
	}

	day := formatNumber(date.Day(), opts.Day)
	year := formatYear(date.Year(), opts.Year)

	var body string
	switch opts.Month {
	case "long", "short":
		body = date.Month().String()
		if opts.Month == "short" {
			body = body[:3]
		}
		if day != "" {
			body += " " + day
		}
		if year != "" {
			if day != "" {
				body += ", " + year
			} else {
				body += " " + year
			}
		}
	default:
		var parts []string
		for _, part := range []string{formatNumber(int(date.Month()), opts.Month), day, year} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		body = strings.Join(parts, "/")
	}

	switch {
	case weekday == "":
		return body
	case body == "":
		return weekday
	default:
		return weekday + ", " + body
	}
}

func formatNumber(n int, style string) string {
	switch style {
	case "numeric":
		return strconv.Itoa(n)
	case "2-digit":
		return fmt.Sprintf("%02d", n)
	}
	return ""
}

func formatYear(year int, style string) string {
	if style == "2-digit" {
		return fmt.Sprintf("%02d", year%100)
	}
	return formatNumber(year, style)
}

// today is local midnight of the current day.
func (f *DateFormatter) today() time.Time {
	now := f.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, f.loc())
}

// IsInPast reports whether the date is before today. Missing dates are not past.
func (f *DateFormatter) IsInPast(dateString string) bool {
	date, ok := f.calendarDate(dateString)
	if !ok {
		return false
	}
	return date.Before(f.today())
}

// DaysFromToday is the calendar-day distance from today; DST never skews it.
func (f *DateFormatter) DaysFromToday(dateString string) (int, bool) {
	date, ok := f.calendarDate(dateString)
	if !ok {
		return 0, false
	}
	today := f.today()
	a := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24), true
}

func (f *DateFormatter) RelativeDescription(dateString string) string {
	diff, ok := f.DaysFromToday(dateString)
	if !ok {
		return DateTBD
	}
	switch {
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Tomorrow"
	case diff == -1:
		return "Yesterday"
	case diff > 1:
		return fmt.Sprintf("In %d days", diff)
	default:
		return fmt.Sprintf("%d days ago", -diff)
	}
}

// IsCalendarDate reports whether s is a real YYYY-MM-DD date.
func IsCalendarDate(s string) bool {
	if len(s) != len("2006-01-02") || strings.ContainsAny(s, "T ") {
		return false
	}
	date, ok := (&DateFormatter{Location: time.UTC}).calendarDate(s)
	if !ok {
		return false
	}
	// time.Date normalizes 2025-02-30 to March; reject that
	return date.Format("2006-01-02") == s
}
