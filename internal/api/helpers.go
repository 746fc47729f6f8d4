// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/seertall/seertall/internal/logging"
	"github.com/seertall/seertall/internal/models"
	"github.com/seertall/seertall/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log
// injection through attacker-controlled request values.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondValidationError sends a 400 with per-field details.
func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: verr.Error(),
			Details: verr.Details(),
		},
	})
}

// validateRequest validates a request struct, responding with a
// VALIDATION_ERROR on failure. Returns true when the request is valid.
func validateRequest(w http.ResponseWriter, v interface{}) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		respondValidationError(w, verr)
		return false
	}
	return true
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
