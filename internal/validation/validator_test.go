// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package validation

import (
	"testing"
)

type dateRequest struct {
	StartDate string `validate:"omitempty,yyyymmdd"`
	EndDate   string `validate:"omitempty,yyyymmdd"`
}

func TestYYYYMMDDValidator(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"valid date", "20240131", true},
		{"empty passes with omitempty", "", true},
		{"leap day", "20240229", true},
		{"dashes rejected", "2024-01-31", false},
		{"impossible month", "20241301", false},
		{"impossible day", "20240230", false},
		{"too short", "202401", false},
		{"not numeric", "yyyymmdd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&dateRequest{StartDate: tt.value})
			if tt.valid && err != nil {
				t.Errorf("ValidateStruct(%q) = %v, want nil", tt.value, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("ValidateStruct(%q) = nil, want error", tt.value)
			}
		})
	}
}

func TestValidateStructReportsFields(t *testing.T) {
	type req struct {
		SeriesID int    `validate:"required,gt=0"`
		Screen   string `validate:"required,oneof=desktop tablet mobile"`
	}

	verr := ValidateStruct(&req{SeriesID: -1, Screen: "holodeck"})
	if verr == nil {
		t.Fatal("ValidateStruct accepted an invalid struct")
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("got %d field errors, want 2: %v", len(verr.Errors()), verr)
	}

	fields := map[string]bool{}
	for _, fe := range verr.Errors() {
		fields[fe.Field()] = true
	}
	if !fields["SeriesID"] || !fields["Screen"] {
		t.Errorf("fields = %v, want SeriesID and Screen", fields)
	}

	details := verr.Details()
	if _, ok := details["fields"]; !ok {
		t.Errorf("Details() = %v, want multi-field shape", details)
	}
}

func TestValidateStructSingleErrorDetails(t *testing.T) {
	type req struct {
		Limit int `validate:"gte=1"`
	}

	verr := ValidateStruct(&req{Limit: 0})
	if verr == nil {
		t.Fatal("ValidateStruct accepted an invalid struct")
	}

	details := verr.Details()
	if details["field"] != "Limit" {
		t.Errorf("details = %v, want field Limit", details)
	}
}
