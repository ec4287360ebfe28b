package month

import (
	"testing"
	"time"
)

func TestName_TableTests(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{name: "january", n: 1, want: "Jan"},
		{name: "july", n: 7, want: "Jul"},
		{name: "december", n: 12, want: "Dec"},
		{name: "zero", n: 0, want: ""},
		{name: "thirteen", n: 13, want: ""},
		{name: "negative", n: -1, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.n); got != tt.want {
				t.Errorf("Name(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestYearBounds(t *testing.T) {
	from, to := YearBounds(2021)

	wantFrom := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
	last := time.Date(2021, 12, 31, 23, 59, 59, 0, time.UTC)
	if !last.Before(to) || last.Before(from) {
		t.Errorf("last second of year %v must fall into [%v, %v)", last, from, to)
	}
}

func TestValidYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{year: 2021, want: true},
		{year: 1, want: true},
		{year: 9999, want: true},
		{year: 0, want: false},
		{year: 10000, want: false},
	}

	for _, tt := range tests {
		if got := ValidYear(tt.year); got != tt.want {
			t.Errorf("ValidYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}
