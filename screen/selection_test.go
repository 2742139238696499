// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/selection_test.go
// Summary: Selection geometry tests.

package screen

import "testing"

func TestSelectionSingleRowSpan(t *testing.T) {
	sel := NewSelection(Pos(5, 2))
	sel.Lead = Pos(2, 2)
	for x := 2; x <= 5; x++ {
		if !sel.Contains(Pos(x, 2)) {
			t.Fatalf("(%d,2) should be selected", x)
		}
	}
	if sel.Contains(Pos(1, 2)) || sel.Contains(Pos(6, 2)) || sel.Contains(Pos(3, 1)) {
		t.Fatal("cells outside the span selected")
	}
}

func TestSelectionLineFlowDownward(t *testing.T) {
	sel := NewSelection(Pos(5, 1))
	sel.Lead = Pos(3, 3)

	// Anchor row: from anchor.X to end of line.
	if sel.Contains(Pos(4, 1)) {
		t.Fatal("cell left of anchor on the anchor row selected")
	}
	if !sel.Contains(Pos(5, 1)) || !sel.Contains(Pos(79, 1)) {
		t.Fatal("anchor row tail should be selected")
	}
	// Middle rows: everything.
	if !sel.Contains(Pos(0, 2)) || !sel.Contains(Pos(79, 2)) {
		t.Fatal("middle row should be fully selected")
	}
	// Lead row: start of line through lead.X.
	if !sel.Contains(Pos(0, 3)) || !sel.Contains(Pos(3, 3)) {
		t.Fatal("lead row head should be selected")
	}
	if sel.Contains(Pos(4, 3)) {
		t.Fatal("cell right of lead on the lead row selected")
	}
}

func TestSelectionLineFlowUpwardMirrors(t *testing.T) {
	sel := NewSelection(Pos(3, 3))
	sel.Lead = Pos(5, 1)

	if !sel.Contains(Pos(5, 1)) || !sel.Contains(Pos(79, 1)) {
		t.Fatal("top row tail should be selected")
	}
	if sel.Contains(Pos(4, 1)) {
		t.Fatal("cell left of the top endpoint selected")
	}
	if !sel.Contains(Pos(0, 3)) || !sel.Contains(Pos(3, 3)) {
		t.Fatal("bottom row head should be selected")
	}
	if sel.Contains(Pos(4, 3)) {
		t.Fatal("cell right of the bottom endpoint selected")
	}
}

func TestSelectionRectangleShape(t *testing.T) {
	sel := NewSelection(Pos(5, 1))
	sel.Lead = Pos(3, 3)
	sel.Shape = ShapeRectangle

	if !sel.Contains(Pos(3, 1)) || !sel.Contains(Pos(5, 3)) {
		t.Fatal("rectangle corners should be selected")
	}
	if sel.Contains(Pos(2, 2)) || sel.Contains(Pos(6, 2)) {
		t.Fatal("cells outside the rectangle selected")
	}
}

func TestSelectedText(t *testing.T) {
	s := NewCanvasScreen(Size{Width: 10, Height: 5})
	rows := []string{"hello", "world", "again"}
	for y, row := range rows {
		for x, r := range row {
			s.SetChar(Pos(x, y), cell(r))
		}
	}
	s.Selection = NewSelection(Pos(3, 0))
	s.Selection.Lead = Pos(2, 2)
	if got := s.SelectedText(); got != "lo\nworld\naga" {
		t.Fatalf("SelectedText = %q", got)
	}

	s.ClearSelection()
	if s.Selection != nil || s.SelectedText() != "" {
		t.Fatal("cleared selection should yield no text")
	}
}
