package schedule

import (
	"errors"
	"testing"
)

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		token string
		want  Weekday
	}{
		{"M", Monday},
		{"T", Tuesday},
		{"W", Wednesday},
		{"R", Thursday},
		{"F", Friday},
		{"S", Saturday},
		{"U", Sunday},
		{"Mon", Monday},
		{"Tue", Tuesday},
		{"wed", Wednesday},
		{"THU", Thursday},
		{"Fri", Friday},
		{"Sat", Saturday},
		{"Sun", Sunday},
		// Unrecognized tokens pass through for downstream validation.
		{"Xyz", Weekday("Xyz")},
		{"", Weekday("")},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := NormalizeDay(tt.token); got != tt.want {
				t.Errorf("NormalizeDay(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestNormalizeDayIdempotent(t *testing.T) {
	for _, token := range []string{"M", "T", "W", "R", "F", "S", "U", "Mon", "Sun", "bogus"} {
		once := NormalizeDay(token)
		twice := NormalizeDay(string(once))
		if once != twice {
			t.Errorf("NormalizeDay not idempotent for %q: %q then %q", token, once, twice)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want LocalTime
	}{
		{"1:30 PM", LocalTime{Hour: 13, Minute: 30}},
		{"2:20 PM", LocalTime{Hour: 14, Minute: 20}},
		{"2:20PM", LocalTime{Hour: 14, Minute: 20}},
		{"9:05", LocalTime{Hour: 9, Minute: 5}},
		{"12:00 AM", LocalTime{Hour: 0, Minute: 0}},
		{"12:30 pm", LocalTime{Hour: 12, Minute: 30}},
		{"23:59", LocalTime{Hour: 23, Minute: 59}},
		{"1330", LocalTime{Hour: 13, Minute: 30}},
		{"130", LocalTime{Hour: 1, Minute: 30}},
		{"103000", LocalTime{Hour: 10, Minute: 30, Second: 0}},
		{"114500", LocalTime{Hour: 11, Minute: 45, Second: 0}},
		{"at 5:00 PM sharp", LocalTime{Hour: 17, Minute: 0}},
		// First left-to-right match wins.
		{"9:00 or 10:00", LocalTime{Hour: 9, Minute: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			if err != nil {
				t.Fatalf("NormalizeTime(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeTime(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTimeErrors(t *testing.T) {
	for _, in := range []string{"", "noon", "late afternoon", "99", "25:00 and 26:00"} {
		t.Run(in, func(t *testing.T) {
			if _, err := NormalizeTime(in); !errors.Is(err, ErrUnparseableTime) {
				t.Errorf("NormalizeTime(%q) err = %v, want ErrUnparseableTime", in, err)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	const refYear = 2025
	tests := []struct {
		in   string
		want Date
	}{
		{"Mar 15", Date{2025, 3, 15}},
		{"March 15, 2024", Date{2024, 3, 15}},
		{"Sep 1", Date{2025, 9, 1}},
		{"December 31", Date{2025, 12, 31}},
		{"12/15", Date{2025, 12, 15}},
		{"3/5/24", Date{2024, 3, 5}},
		{"3/5/2024", Date{2024, 3, 5}},
		// First left-to-right match wins.
		{"due 3/1 or Apr 2", Date{2025, 3, 1}},
		{"Apr 2 or 3/1", Date{2025, 4, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in, refYear)
			if err != nil {
				t.Fatalf("NormalizeDate(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateErrors(t *testing.T) {
	for _, in := range []string{"", "sometime soon", "2/30", "13/40", "Mar", "0/10"} {
		t.Run(in, func(t *testing.T) {
			if _, err := NormalizeDate(in, 2025); !errors.Is(err, ErrUnparseableDate) {
				t.Errorf("NormalizeDate(%q) err = %v, want ErrUnparseableDate", in, err)
			}
		})
	}
}
