package utils

import "testing"

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{40000, "40,000"},
		{1234567.89, "1,234,568"},
		{1000000, "1,000,000"},
		{-25000, "-25,000"},
		{999.4, "999"},
	}
	for _, c := range cases {
		if got := FormatUSD(c.in); got != c.want {
			t.Errorf("FormatUSD(%f): expected %s, got %s", c.in, c.want, got)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(0.00012345); got != "0.00012345" {
		t.Errorf("Expected 0.00012345, got %s", got)
	}
	if got := FormatPrice(1.5); got != "1.50" {
		t.Errorf("Expected 1.50, got %s", got)
	}
	if got := FormatPrice(0); got != "0.00" {
		t.Errorf("Expected 0.00, got %s", got)
	}
}
