package translate

import (
	"sort"

	"github.com/ibatulanandjp/procrai/internal/document"
)

// groupGapFactor: two consecutive elements stay in one group while their
// vertical offset is under this fraction of their average height.
const groupGapFactor = 0.5

// Group is a run of translatable elements that share a page and type and
// sit close enough together to translate with shared context. Members are
// indices into the element slice the group was built from.
type Group struct {
	Page    int
	Type    document.ElementType
	Members []int
}

// GroupElements partitions a set's elements into context groups and
// returns the translatable ones. The full sequence is visited in reading
// order (page, then top edge); a new group starts whenever the page or
// type changes, or the vertical step to the previous element reaches half
// their average height. A non-translatable element between two text runs
// therefore closes the first run even though it forms no group itself.
func GroupElements(elements []document.Element) []Group {
	if len(elements) == 0 {
		return nil
	}

	idx := make([]int, len(elements))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := &elements[idx[a]], &elements[idx[b]]
		if ea.Position.Page != eb.Position.Page {
			return ea.Position.Page < eb.Position.Page
		}
		return ea.Position.Y0 < eb.Position.Y0
	})

	var runs []Group
	cur := Group{
		Page:    elements[idx[0]].Position.Page,
		Type:    elements[idx[0]].Type,
		Members: []int{idx[0]},
	}
	for _, i := range idx[1:] {
		el := &elements[i]
		prev := &elements[cur.Members[len(cur.Members)-1]]

		if el.Position.Page == cur.Page && el.Type == cur.Type && closeEnough(prev, el) {
			cur.Members = append(cur.Members, i)
			continue
		}
		runs = append(runs, cur)
		cur = Group{Page: el.Position.Page, Type: el.Type, Members: []int{i}}
	}
	runs = append(runs, cur)

	// Non-translatable runs pass through unmodified. Within a forwarded
	// run, elements with no text contribute nothing and are dropped; a run
	// left empty is skipped, not an error.
	var groups []Group
	for _, g := range runs {
		if !g.Type.Translatable() {
			continue
		}
		var members []int
		for _, i := range g.Members {
			if elements[i].Translatable() {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}
		g.Members = members
		groups = append(groups, g)
	}
	return groups
}

func closeEnough(a, b *document.Element) bool {
	avgHeight := (a.Position.Box.Height() + b.Position.Box.Height()) / 2
	if avgHeight <= 0 {
		return false
	}
	gap := b.Position.Y0 - a.Position.Y0
	if gap < 0 {
		gap = -gap
	}
	return gap < groupGapFactor*avgHeight
}
