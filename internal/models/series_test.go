// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package models

import (
	"testing"
)

func TestParseScreen(t *testing.T) {
	tests := []struct {
		input string
		want  Screen
		ok    bool
	}{
		{"desktop", ScreenDesktop, true},
		{"tablet", ScreenTablet, true},
		{"mobile", ScreenMobile, true},
		{"Desktop", "", false},
		{"television", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := ParseScreen(tt.input)
		if tt.ok {
			if err != nil {
				t.Errorf("ParseScreen(%q) error = %v, want nil", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseScreen(%q) = %q, want %q", tt.input, got, tt.want)
			}
		} else if err == nil {
			t.Errorf("ParseScreen(%q) accepted an unknown screen", tt.input)
		}
	}
}

func TestWeekdayName(t *testing.T) {
	tests := []struct {
		number int
		want   string
	}{
		{1, "monday"},
		{7, "sunday"},
		{0, ""},
		{8, ""},
	}

	for _, tt := range tests {
		if got := WeekdayName(tt.number); got != tt.want {
			t.Errorf("WeekdayName(%d) = %q, want %q", tt.number, got, tt.want)
		}
	}
}
