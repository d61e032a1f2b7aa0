// Package dispatch maps raw key events to billing intents. A fixed table
// binds each key to one intent and a guard; any view layer can drive the
// engine by resolving events here and calling the matching operation.
package dispatch

import "strings"

type Intent string

const (
	IntentCancelOrClose       Intent = "cancel_or_close"
	IntentPrint               Intent = "print"
	IntentFocusProductSearch  Intent = "focus_product_search"
	IntentOpenPayment         Intent = "open_payment"
	IntentAddHighlightedMatch Intent = "add_highlighted_match"
	IntentIncrementFocused    Intent = "increment_focused_line"
	IntentDecrementFocused    Intent = "decrement_focused_line"
	IntentMoveSearchHighlight Intent = "move_search_highlight"
)

// KeyEvent is a normalized keyboard event. Key uses the DOM KeyboardEvent
// key names ("Escape", "F2", "+", "ArrowUp", ...).
type KeyEvent struct {
	Key  string
	Ctrl bool
}

// Context carries the UI facts the guards need.
type Context struct {
	BillingTabActive   bool
	RecordLoaded       bool
	CartNonEmpty       bool
	TextInputFocused   bool
	SearchHasText      bool
	SearchDropdownOpen bool
	// SearchSwallowsEnter is set while the search widget handles Enter
	// itself for dropdown selection.
	SearchSwallowsEnter bool
}

// Resolve returns the intent bound to ev, or ok=false when no binding fires.
// While a text input has focus, only Escape, Print, and FocusProductSearch
// may fire; everything else is suppressed so single-character commands never
// corrupt user-typed values.
func Resolve(ev KeyEvent, ctx Context) (Intent, bool) {
	intent, ok := lookup(ev, ctx)
	if !ok {
		return "", false
	}
	if ctx.TextInputFocused && !allowedWhileTyping(intent) {
		return "", false
	}
	return intent, true
}

func allowedWhileTyping(intent Intent) bool {
	switch intent {
	case IntentCancelOrClose, IntentPrint, IntentFocusProductSearch:
		return true
	}
	return false
}

func lookup(ev KeyEvent, ctx Context) (Intent, bool) {
	if ev.Ctrl {
		if strings.EqualFold(ev.Key, "p") && ctx.RecordLoaded {
			return IntentPrint, true
		}
		return "", false
	}

	switch ev.Key {
	case "Escape":
		return IntentCancelOrClose, true
	case "F2":
		if ctx.BillingTabActive {
			return IntentFocusProductSearch, true
		}
	case "F4":
		if ctx.CartNonEmpty {
			return IntentOpenPayment, true
		}
	case "Enter":
		if ctx.SearchHasText && !ctx.SearchSwallowsEnter {
			return IntentAddHighlightedMatch, true
		}
	case "+", "=":
		if ctx.CartNonEmpty {
			return IntentIncrementFocused, true
		}
	case "-":
		if ctx.CartNonEmpty {
			return IntentDecrementFocused, true
		}
	case "ArrowUp", "ArrowDown":
		if ctx.SearchDropdownOpen {
			return IntentMoveSearchHighlight, true
		}
	}
	return "", false
}
