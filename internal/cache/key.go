// Seertall - Daily Series View Analytics
// Copyright 2026 Seertall Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seertall/seertall

package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// Key derives a deterministic cache key from an operation name and a typed
// parameter struct. Struct fields marshal in declaration order, so identical
// parameter values always produce the same key and distinct combinations
// never collide. Changing a parameter struct changes its keys, which busts
// stale entries deliberately on schema change.
func Key(operation string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to a formatted key; only reachable for unmarshalable types
		return fmt.Sprintf("%s:%v", operation, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", operation, hash[:16])
}
