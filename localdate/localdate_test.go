package localdate

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestInLateEveningAndEarlyMorningAreDifferentDays(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-12", -12*3600),
		time.FixedZone("UTC-5", -5*3600),
		time.FixedZone("UTC+5:30", 5*3600+1800),
		time.FixedZone("UTC+14", 14*3600),
	}

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			evening := time.Date(2024, 3, 9, 23, 30, 0, 0, loc)
			morning := time.Date(2024, 3, 10, 0, 30, 0, 0, loc)

			e := In(evening, loc).String()
			m := In(morning, loc).String()
			if e != "2024-03-09" {
				t.Errorf("evening = %s, want 2024-03-09", e)
			}
			if m != "2024-03-10" {
				t.Errorf("morning = %s, want 2024-03-10", m)
			}
		})
	}
}

func TestInUsesWallClockNotUTC(t *testing.T) {
	// 02:00 UTC on the 10th is still the evening of the 9th in New York time.
	loc := time.FixedZone("EST", -5*3600)
	moment := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)

	if got := In(moment, loc).String(); got != "2024-03-09" {
		t.Errorf("In() = %s, want 2024-03-09", got)
	}
	if got := In(moment, time.UTC).String(); got != "2024-03-10" {
		t.Errorf("In(UTC) = %s, want 2024-03-10", got)
	}
}

func TestOfMatchesLocalWallClock(t *testing.T) {
	now := time.Now()
	want := now.Format(Layout)
	if got := Format(now); got != want {
		t.Errorf("Format(now) = %s, want %s", got, want)
	}
	if got := Weekday(now); got != int(now.Weekday()) {
		t.Errorf("Weekday(now) = %d, want %d", got, now.Weekday())
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		day  string
		want int
	}{
		{"2024-03-16", 6}, // Saturday
		{"2024-03-17", 0}, // Sunday
		{"2024-03-18", 1}, // Monday
		{"2024-03-14", 4}, // Thursday
	}
	for _, tt := range tests {
		if got := MustParse(tt.day).Weekday(); got != tt.want {
			t.Errorf("%s weekday = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("2024-02-29")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d != (Day{2024, time.February, 29}) {
		t.Errorf("Parse = %+v", d)
	}

	for _, bad := range []string{"", "2024-2-29", "2023-02-29", "2024-13-01", "20240301", "2024-03-01T00:00:00Z", "garbage!!!"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidDay) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidDay", bad, err)
		}
	}
}

func TestArithmetic(t *testing.T) {
	d := MustParse("2024-02-28")

	if got := d.AddDays(1).String(); got != "2024-02-29" {
		t.Errorf("AddDays(1) = %s", got)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("AddDays(2) = %s", got)
	}
	if got := d.AddDays(-59).String(); got != "2023-12-31" {
		t.Errorf("AddDays(-59) = %s", got)
	}
	if got := MustParse("2024-03-01").Sub(MustParse("2024-02-01")); got != 29 {
		t.Errorf("Sub = %d, want 29", got)
	}
	if got := d.DaysInMonth(); got != 29 {
		t.Errorf("DaysInMonth = %d, want 29", got)
	}
	if got := MustParse("2023-02-10").DaysInMonth(); got != 28 {
		t.Errorf("DaysInMonth 2023-02 = %d, want 28", got)
	}
	if got := MustParse("2024-03-20").StartOfWeek().String(); got != "2024-03-17" {
		t.Errorf("StartOfWeek = %s, want 2024-03-17", got)
	}
	if got := Date(2024, time.January, 32).String(); got != "2024-02-01" {
		t.Errorf("Date normalization = %s", got)
	}
}

func TestCompare(t *testing.T) {
	a := MustParse("2024-03-09")
	b := MustParse("2024-03-10")

	if !a.Before(b) || a.After(b) {
		t.Error("2024-03-09 should be before 2024-03-10")
	}
	if a.Compare(a) != 0 || a.Before(a) || a.After(a) {
		t.Error("a day is neither before nor after itself")
	}
	if MustParse("2023-12-31").Compare(MustParse("2024-01-01")) != -1 {
		t.Error("year boundary compare")
	}
}

func TestRange(t *testing.T) {
	days := Range(MustParse("2024-02-27"), MustParse("2024-03-02"))
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("len = %d, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.String() != want[i] {
			t.Errorf("days[%d] = %s, want %s", i, d, want[i])
		}
	}
	if got := Range(MustParse("2024-03-02"), MustParse("2024-03-01")); len(got) != 0 {
		t.Errorf("reversed range should be empty, got %v", got)
	}
}

func TestTextEncoding(t *testing.T) {
	type row struct {
		Day Day `json:"day"`
	}
	data, err := json.Marshal(row{Day: MustParse("2024-03-15")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"day":"2024-03-15"}` {
		t.Errorf("Marshal = %s", data)
	}

	var back row
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Day.String() != "2024-03-15" {
		t.Errorf("Unmarshal = %s", back.Day)
	}
	if err := json.Unmarshal([]byte(`{"day":"03/15/2024"}`), &back); err == nil {
		t.Error("expected error for malformed day")
	}
}
