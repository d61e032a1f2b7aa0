package dispatch

import "testing"

func TestResolveTable(t *testing.T) {
	billing := Context{BillingTabActive: true, RecordLoaded: true, CartNonEmpty: true, SearchHasText: true, SearchDropdownOpen: true}

	cases := []struct {
		name   string
		ev     KeyEvent
		ctx    Context
		want   Intent
		wantOK bool
	}{
		{"escape always fires", KeyEvent{Key: "Escape"}, Context{}, IntentCancelOrClose, true},
		{"ctrl+p with record", KeyEvent{Key: "p", Ctrl: true}, Context{RecordLoaded: true}, IntentPrint, true},
		{"ctrl+p uppercase", KeyEvent{Key: "P", Ctrl: true}, Context{RecordLoaded: true}, IntentPrint, true},
		{"ctrl+p without record", KeyEvent{Key: "p", Ctrl: true}, Context{}, "", false},
		{"f2 on billing tab", KeyEvent{Key: "F2"}, Context{BillingTabActive: true}, IntentFocusProductSearch, true},
		{"f2 off billing tab", KeyEvent{Key: "F2"}, Context{}, "", false},
		{"f4 with cart", KeyEvent{Key: "F4"}, Context{CartNonEmpty: true}, IntentOpenPayment, true},
		{"f4 empty cart", KeyEvent{Key: "F4"}, Context{}, "", false},
		{"enter with search text", KeyEvent{Key: "Enter"}, Context{SearchHasText: true}, IntentAddHighlightedMatch, true},
		{"enter swallowed by dropdown", KeyEvent{Key: "Enter"}, Context{SearchHasText: true, SearchSwallowsEnter: true}, "", false},
		{"enter without text", KeyEvent{Key: "Enter"}, Context{}, "", false},
		{"plus increments", KeyEvent{Key: "+"}, Context{CartNonEmpty: true}, IntentIncrementFocused, true},
		{"equals increments", KeyEvent{Key: "="}, Context{CartNonEmpty: true}, IntentIncrementFocused, true},
		{"minus decrements", KeyEvent{Key: "-"}, Context{CartNonEmpty: true}, IntentDecrementFocused, true},
		{"plus with empty cart", KeyEvent{Key: "+"}, Context{}, "", false},
		{"arrow in dropdown", KeyEvent{Key: "ArrowDown"}, Context{SearchDropdownOpen: true}, IntentMoveSearchHighlight, true},
		{"arrow without dropdown", KeyEvent{Key: "ArrowUp"}, Context{}, "", false},
		{"unbound key", KeyEvent{Key: "x"}, billing, "", false},
	}

	for _, tc := range cases {
		got, ok := Resolve(tc.ev, tc.ctx)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("%s: Resolve(%+v, %+v) = (%q, %v), want (%q, %v)", tc.name, tc.ev, tc.ctx, got, ok, tc.want, tc.wantOK)
		}
	}
}

// While a text input has focus, no intent other than cancel, print, and
// search focus may fire, whatever the rest of the context says.
func TestTextInputSuppression(t *testing.T) {
	ctx := Context{
		BillingTabActive:   true,
		RecordLoaded:       true,
		CartNonEmpty:       true,
		TextInputFocused:   true,
		SearchHasText:      true,
		SearchDropdownOpen: true,
	}

	events := []KeyEvent{
		{Key: "Escape"},
		{Key: "p", Ctrl: true},
		{Key: "F2"},
		{Key: "F4"},
		{Key: "Enter"},
		{Key: "+"},
		{Key: "="},
		{Key: "-"},
		{Key: "ArrowUp"},
		{Key: "ArrowDown"},
	}

	for _, ev := range events {
		intent, ok := Resolve(ev, ctx)
		if !ok {
			continue
		}
		switch intent {
		case IntentCancelOrClose, IntentPrint, IntentFocusProductSearch:
		default:
			t.Fatalf("intent %q fired for %+v while a text input was focused", intent, ev)
		}
	}

	if intent, ok := Resolve(KeyEvent{Key: "+"}, ctx); ok {
		t.Fatalf("plus must not fire while typing, got %q", intent)
	}
	if intent, ok := Resolve(KeyEvent{Key: "Escape"}, ctx); !ok || intent != IntentCancelOrClose {
		t.Fatalf("escape must still fire while typing, got (%q, %v)", intent, ok)
	}
}
