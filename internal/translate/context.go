package translate

import (
	"strings"

	"github.com/ibatulanandjp/procrai/internal/document"
)

// contextRadius is the number of neighbors on each side included in the
// surrounding-text hint for one element.
const contextRadius = 2

// contextMask replaces the target element inside its own context so the
// model sees where the text sits without receiving it twice.
const contextMask = "..."

// BuildContext returns the surrounding text for the group member at
// position pos: up to two neighbors on each side in group order, with the
// target itself masked. Returns "" for a single-member group.
func BuildContext(elements []document.Element, g Group, pos int) string {
	if len(g.Members) <= 1 {
		return ""
	}

	lo := pos - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := pos + contextRadius
	if hi > len(g.Members)-1 {
		hi = len(g.Members) - 1
	}

	parts := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if i == pos {
			parts = append(parts, contextMask)
			continue
		}
		parts = append(parts, elements[g.Members[i]].Content)
	}
	return strings.Join(parts, "\n")
}
