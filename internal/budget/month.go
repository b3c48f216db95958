package budget

import (
    "fmt"
    "strconv"
    "time"
)

// Month is a calendar month in "YYYY-MM" form. The lexical ordering of the
// string form equals chronological ordering, so Months compare with < and >.
type Month string

// Date is a calendar day in "YYYY-MM-DD" form. As with Month, string
// comparison equals chronological comparison.
type Date string

// ParseMonth validates s as a "YYYY-MM" month.
func ParseMonth(s string) (Month, error) {
    if _, err := time.Parse("2006-01", s); err != nil {
        return "", fmt.Errorf("invalid month %q: %w", s, err)
    }
    return Month(s), nil
}

// ParseDate validates s as a "YYYY-MM-DD" date.
func ParseDate(s string) (Date, error) {
    if _, err := time.Parse("2006-01-02", s); err != nil {
        return "", fmt.Errorf("invalid date %q: %w", s, err)
    }
    return Date(s), nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month { return Month(t.Format("2006-01")) }

// Month returns the month containing the date.
func (d Date) Month() Month {
    if len(d) < 7 {
        return ""
    }
    return Month(d[:7])
}

// Time parses the date at midnight UTC. Zero time on malformed input.
func (d Date) Time() time.Time {
    t, _ := time.Parse("2006-01-02", string(d))
    return t
}

func (m Month) parts() (year, month int) {
    if len(m) != 7 {
        return 0, 0
    }
    year, _ = strconv.Atoi(string(m[:4]))
    month, _ = strconv.Atoi(string(m[5:]))
    return year, month
}

// Next returns the following month, rolling December into January.
func (m Month) Next() Month {
    y, mo := m.parts()
    mo++
    if mo > 12 {
        mo = 1
        y++
    }
    return Month(fmt.Sprintf("%04d-%02d", y, mo))
}

// Prev returns the preceding month, rolling January into December.
func (m Month) Prev() Month {
    y, mo := m.parts()
    mo--
    if mo < 1 {
        mo = 12
        y--
    }
    return Month(fmt.Sprintf("%04d-%02d", y, mo))
}

// FirstDay returns the first calendar day of the month.
func (m Month) FirstDay() Date { return Date(m + "-01") }

// LastDay returns the last calendar day of the month (leap-year aware).
func (m Month) LastDay() Date {
    y, mo := m.parts()
    // day 0 of the next month is the last day of this one
    t := time.Date(y, time.Month(mo)+1, 0, 0, 0, 0, 0, time.UTC)
    return Date(t.Format("2006-01-02"))
}
