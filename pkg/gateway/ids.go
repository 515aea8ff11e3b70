// Copyright 2024-2026 Aiku AI

package gateway

import "strconv"

// ParseID converts a platform snowflake string to an int64. Returns 0 for
// anything that is not a positive integer; callers treat 0 as "no id".
func ParseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// FormatID converts an int64 id back to the platform's string form.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
