package packer

import (
	"fmt"
	"strings"
)

// untitledName is substituted when a preferred page name trims to empty.
const untitledName = "Untitled"

// ResolveUniqueName returns a page name not present in existing, derived
// deterministically from preferred. The preferred name is trimmed of
// surrounding whitespace; if that leaves nothing, "Untitled" is used. A
// colliding name gets an " (Imported N)" suffix, with N counting up from
// 2 until the candidate is free.
//
// Pure function: existing is only read, and the same inputs always yield
// the same result.
func ResolveUniqueName(preferred string, existing map[string]struct{}) string {
	name := strings.TrimSpace(preferred)
	if name == "" {
		name = untitledName
	}
	if _, taken := existing[name]; !taken {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (Imported %d)", name, n)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
