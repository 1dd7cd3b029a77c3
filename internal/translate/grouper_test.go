package translate

import (
	"reflect"
	"testing"

	"github.com/ibatulanandjp/procrai/internal/document"
)

func textEl(page int, y0, y1 float64, typ document.ElementType, content string) document.Element {
	return document.Element{
		Type:    typ,
		Content: content,
		Position: document.Position{
			Box:  document.Box{X0: 50, Y0: y0, X1: 400, Y1: y1},
			Page: page,
		},
	}
}

func TestGroupElements_SamePageAndType(t *testing.T) {
	elements := []document.Element{
		textEl(1, 100, 120, document.TypeText, "a"),
		textEl(1, 105, 125, document.TypeText, "b"),
	}

	groups := GroupElements(elements)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if !reflect.DeepEqual(groups[0].Members, []int{0, 1}) {
		t.Errorf("members = %v", groups[0].Members)
	}
}

func TestGroupElements_PageBoundary(t *testing.T) {
	elements := []document.Element{
		textEl(1, 100, 120, document.TypeText, "a"),
		textEl(2, 100, 120, document.TypeText, "b"),
	}
	if groups := GroupElements(elements); len(groups) != 2 {
		t.Errorf("got %d groups, want 2", len(groups))
	}
}

func TestGroupElements_TypeBoundary(t *testing.T) {
	elements := []document.Element{
		textEl(1, 100, 120, document.TypeHeading, "Title"),
		textEl(1, 103, 123, document.TypeText, "body"),
	}
	if groups := GroupElements(elements); len(groups) != 2 {
		t.Errorf("got %d groups, want 2", len(groups))
	}
}

func TestGroupElements_GapBoundary(t *testing.T) {
	// Heights are 20, so the group continues while |Δy0| < 10.
	close := []document.Element{
		textEl(1, 100, 120, document.TypeText, "a"),
		textEl(1, 109.9, 129.9, document.TypeText, "b"),
	}
	if groups := GroupElements(close); len(groups) != 1 {
		t.Errorf("gap < half height: got %d groups, want 1", len(groups))
	}

	far := []document.Element{
		textEl(1, 100, 120, document.TypeText, "a"),
		textEl(1, 110, 130, document.TypeText, "b"),
	}
	if groups := GroupElements(far); len(groups) != 2 {
		t.Errorf("gap == half height: got %d groups, want 2", len(groups))
	}
}

func TestGroupElements_ReadingOrder(t *testing.T) {
	// Input out of order; groups must follow (page, y0).
	elements := []document.Element{
		textEl(2, 100, 120, document.TypeText, "later"),
		textEl(1, 200, 220, document.TypeText, "second"),
		textEl(1, 100, 120, document.TypeText, "first"),
	}

	groups := GroupElements(elements)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	order := []int{groups[0].Members[0], groups[1].Members[0], groups[2].Members[0]}
	if !reflect.DeepEqual(order, []int{2, 1, 0}) {
		t.Errorf("group order = %v, want [2 1 0]", order)
	}
}

func TestGroupElements_SkipsNonTranslatable(t *testing.T) {
	elements := []document.Element{
		textEl(1, 100, 120, document.TypeText, "a"),
		{Type: document.TypeImage, Position: document.Position{Box: document.Box{Y0: 105, Y1: 125}, Page: 1}},
		textEl(1, 108, 128, document.TypeText, ""),
	}

	groups := GroupElements(elements)
	if len(groups) != 1 || len(groups[0].Members) != 1 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Members[0] != 0 {
		t.Errorf("member = %d, want 0", groups[0].Members[0])
	}
}

func TestGroupElements_ImageClosesTextRun(t *testing.T) {
	// An image sitting between two close text elements is a boundary even
	// though it forms no group itself: the texts land in separate groups
	// and never share a context window.
	elements := []document.Element{
		textEl(1, 10, 22, document.TypeText, "above"),
		{Type: document.TypeImage, Position: document.Position{Box: document.Box{Y0: 14, Y1: 26}, Page: 1}},
		textEl(1, 15, 27, document.TypeText, "below"),
	}

	groups := GroupElements(elements)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if !reflect.DeepEqual(groups[0].Members, []int{0}) || !reflect.DeepEqual(groups[1].Members, []int{2}) {
		t.Errorf("groups = %+v", groups)
	}
}

// Grouping twice produces the same partition: the function reads element
// geometry only, which translation does not change.
func TestGroupElements_Idempotent(t *testing.T) {
	elements := []document.Element{
		textEl(1, 100, 120, document.TypeText, "a"),
		textEl(1, 105, 125, document.TypeText, "b"),
		textEl(1, 300, 320, document.TypeText, "c"),
		textEl(2, 50, 70, document.TypeHeading, "d"),
	}

	first := GroupElements(elements)
	for i := range elements {
		elements[i].TranslatedContent = "translated"
	}
	second := GroupElements(elements)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("grouping changed between runs:\n%+v\n%+v", first, second)
	}
}

func TestGroupElements_Empty(t *testing.T) {
	if groups := GroupElements(nil); groups != nil {
		t.Errorf("got %+v, want nil", groups)
	}
}
