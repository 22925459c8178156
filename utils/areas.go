// utils/areas.go
package utils

import "strings"

// NormalizeAreaName cleans an LAPD area name as reported by the portal:
// leading/trailing whitespace is trimmed and internal runs of whitespace are
// collapsed to a single space. Casing is preserved as published.
func NormalizeAreaName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
