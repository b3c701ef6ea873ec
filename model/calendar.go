package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/teranos/entigraph/errors"
)

// Precision is the finest calendar component a CalendarValue carries.
type Precision int

const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	case PrecisionHour:
		return "hour"
	case PrecisionMinute:
		return "minute"
	case PrecisionSecond:
		return "second"
	default:
		return "unknown"
	}
}

// CalendarValue is a UTC point in time known only down to Precision.
type CalendarValue struct {
	Time      time.Time
	Precision Precision
}

// NewCalendar converts t to UTC and zeroes every component finer than p.
func NewCalendar(t time.Time, p Precision) CalendarValue {
	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	if p < PrecisionSecond {
		sec = 0
	}
	if p < PrecisionMinute {
		minute = 0
	}
	if p < PrecisionHour {
		hour = 0
	}
	if p < PrecisionDay {
		day = 1
	}
	if p < PrecisionMonth {
		month = time.January
	}
	return CalendarValue{
		Time:      time.Date(year, month, day, hour, minute, sec, 0, time.UTC),
		Precision: p,
	}
}

func (v CalendarValue) Kind() Kind { return KindCalendar }

// Lexical renders the partial ISO-8601 form for the value's precision.
func (v CalendarValue) Lexical() string {
	t := v.Time.UTC()
	year := t.Year()
	var y string
	if year < 0 {
		y = fmt.Sprintf("-%04d", -year)
	} else {
		y = fmt.Sprintf("%04d", year)
	}

	switch v.Precision {
	case PrecisionYear:
		return y
	case PrecisionMonth:
		return fmt.Sprintf("%s-%02d", y, int(t.Month()))
	case PrecisionDay:
		return fmt.Sprintf("%s-%02d-%02d", y, int(t.Month()), t.Day())
	case PrecisionHour:
		return fmt.Sprintf("%s-%02d-%02dT%02dZ", y, int(t.Month()), t.Day(), t.Hour())
	case PrecisionMinute:
		return fmt.Sprintf("%s-%02d-%02dT%02d:%02dZ", y, int(t.Month()), t.Day(), t.Hour(), t.Minute())
	default:
		return fmt.Sprintf("%s-%02d-%02dT%02d:%02d:%02dZ", y, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
}

func (v CalendarValue) String() string { return v.Lexical() }

func (v CalendarValue) Equal(other Value) bool {
	o, ok := other.(CalendarValue)
	return ok && o.Precision == v.Precision && o.Time.Equal(v.Time)
}

var calendarPattern = regexp.MustCompile(
	`^(-?\d{4,})(?:-(\d{2})(?:-(\d{2})(?:T(\d{2})(?::(\d{2})(?::(\d{2}))?)?Z)?)?)?$`)

// ParseCalendar parses the lexical form produced by CalendarValue.Lexical.
// The precision is the number of components present.
func ParseCalendar(s string) (CalendarValue, error) {
	m := calendarPattern.FindStringSubmatch(s)
	if m == nil {
		return CalendarValue{}, errors.Newf("invalid calendar value %q", s)
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return CalendarValue{}, errors.Wrapf(err, "invalid calendar year in %q", s)
	}

	parts := [5]int{1, 1, 0, 0, 0}
	precision := PrecisionYear
	for i := 0; i < 5; i++ {
		if m[i+2] == "" {
			break
		}
		// two-digit groups, regexp guarantees digits
		n, _ := strconv.Atoi(m[i+2])
		parts[i] = n
		precision = Precision(int(PrecisionMonth) + i)
	}

	month, day, hour, minute, sec := parts[0], parts[1], parts[2], parts[3], parts[4]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 {
		return CalendarValue{}, errors.Newf("calendar component out of range in %q", s)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Day() != day {
		return CalendarValue{}, errors.Newf("invalid day in %q", s)
	}
	return CalendarValue{Time: t, Precision: precision}, nil
}
