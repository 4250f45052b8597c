package condition

import "time"

// Circumstances is an immutable snapshot of the temporal facts a
// condition can compare against. A fresh snapshot is taken for every
// evaluation; circumstances are never persisted.
type Circumstances struct {
	Weekday int // 0 (Sunday) through 6
	Day     int // 1–31
	Month   int // 1–12
	Year    int
	Hour    int // 0–23
	Minute  int
	Second  int

	Datetime time.Time
}

// At decomposes a single instant into circumstances.
func At(t time.Time) Circumstances {
	return Circumstances{
		Weekday:  int(t.Weekday()),
		Day:      t.Day(),
		Month:    int(t.Month()),
		Year:     t.Year(),
		Hour:     t.Hour(),
		Minute:   t.Minute(),
		Second:   t.Second(),
		Datetime: t,
	}
}

func (c Circumstances) value(t Type) int {
	switch t {
	case TypeWeekday:
		return c.Weekday
	case TypeDay:
		return c.Day
	case TypeMonth:
		return c.Month
	case TypeYear:
		return c.Year
	case TypeHour:
		return c.Hour
	case TypeMinute:
		return c.Minute
	case TypeSecond:
		return c.Second
	}
	return 0
}
