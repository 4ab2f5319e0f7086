package core

import "testing"

func TestFormatTime(t *testing.T) {
	cases := []struct {
		sec  float64
		want string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59.9, "00:59"},
		{60, "01:00"},
		{125.4, "02:05"},
		{3661, "61:01"},
		{-3, "00:00"},
	}
	for _, c := range cases {
		if got := FormatTime(c.sec); got != c.want {
			t.Errorf("FormatTime(%v) = %q, want %q", c.sec, got, c.want)
		}
	}
}

func TestFormatTimeRange(t *testing.T) {
	if got := FormatTimeRange(125.4, 135.4); got != "02:05 - 02:15" {
		t.Errorf("FormatTimeRange(125.4, 135.4) = %q, want %q", got, "02:05 - 02:15")
	}
}
