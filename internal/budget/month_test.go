package budget

import "testing"

func TestMonthNextPrevRollover(t *testing.T) {
    cases := []struct {
        in   Month
        next Month
        prev Month
    }{
        {"2025-06", "2025-07", "2025-05"},
        {"2025-12", "2026-01", "2025-11"},
        {"2025-01", "2025-02", "2024-12"},
    }
    for _, c := range cases {
        if got := c.in.Next(); got != c.next {
            t.Errorf("%s.Next() = %s, want %s", c.in, got, c.next)
        }
        if got := c.in.Prev(); got != c.prev {
            t.Errorf("%s.Prev() = %s, want %s", c.in, got, c.prev)
        }
    }
}

func TestMonthDays(t *testing.T) {
    cases := []struct {
        in    Month
        first Date
        last  Date
    }{
        {"2025-01", "2025-01-01", "2025-01-31"},
        {"2025-02", "2025-02-01", "2025-02-28"},
        {"2024-02", "2024-02-01", "2024-02-29"}, // leap year
        {"2025-04", "2025-04-01", "2025-04-30"},
    }
    for _, c := range cases {
        if got := c.in.FirstDay(); got != c.first {
            t.Errorf("%s.FirstDay() = %s, want %s", c.in, got, c.first)
        }
        if got := c.in.LastDay(); got != c.last {
            t.Errorf("%s.LastDay() = %s, want %s", c.in, got, c.last)
        }
    }
}

func TestParseMonthAndDate(t *testing.T) {
    if _, err := ParseMonth("2025-07"); err != nil {
        t.Fatalf("valid month rejected: %v", err)
    }
    for _, bad := range []string{"2025-13", "2025-7", "202507", "July 2025", ""} {
        if _, err := ParseMonth(bad); err == nil {
            t.Errorf("ParseMonth(%q) accepted", bad)
        }
    }
    if _, err := ParseDate("2025-07-31"); err != nil {
        t.Fatalf("valid date rejected: %v", err)
    }
    for _, bad := range []string{"2025-02-30", "2025-07-1", "31/07/2025", ""} {
        if _, err := ParseDate(bad); err == nil {
            t.Errorf("ParseDate(%q) accepted", bad)
        }
    }
}

func TestDateMonthOrdering(t *testing.T) {
    if Date("2025-01-31").Month() != Month("2025-01") {
        t.Fatal("Date.Month() mismatch")
    }
    // Lexical comparison must equal chronological comparison.
    if !(Date("2024-12-31") < Date("2025-01-01")) {
        t.Fatal("date ordering broken across years")
    }
    if !(Month("2024-12") < Month("2025-01")) {
        t.Fatal("month ordering broken across years")
    }
}
