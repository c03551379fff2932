package stats

import (
	"fmt"
	"time"
)

const daySeconds int64 = 24 * 60 * 60

// Day is a calendar date with the time-of-day stripped, stored as whole
// days since the Unix epoch in UTC. Day arithmetic is plain integer
// subtraction, so two adjacent dates always differ by exactly 1 and a
// fractional gap cannot be represented.
type Day int64

// DayOf truncates t to day granularity in UTC.
func DayOf(t time.Time) Day {
	return Day(t.UTC().Truncate(24*time.Hour).Unix() / daySeconds)
}

// ParseDay accepts a date-only string ("2006-01-02") or an RFC3339
// timestamp. Anything else is rejected rather than coerced.
func ParseDay(s string) (Day, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DayOf(t), nil
	}
	return 0, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC3339", s)
}

func (d Day) Time() time.Time {
	return time.Unix(int64(d)*daySeconds, 0).UTC()
}

func (d Day) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date %s: want a quoted string", b)
	}
	parsed, err := ParseDay(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MondayOf returns the Monday of the week containing d. Weeks run Monday
// through Sunday; Sunday maps to an offset of 6.
func MondayOf(d Day) Day {
	offset := (int(d.Weekday()) - 1 + 7) % 7
	return d - Day(offset)
}
