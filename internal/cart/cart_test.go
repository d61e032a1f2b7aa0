package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func product(id string, price string) domain.Product {
	return domain.Product{
		ID:           id,
		Code:         "C-" + id,
		Name:         "Product " + id,
		SellingPrice: dec(price),
		UnitID:       "uom-pc",
		Stock:        dec("100"),
		Active:       true,
	}
}

func assertInvariants(t *testing.T, c domain.Cart) {
	t.Helper()
	seen := map[string]bool{}
	for _, item := range c.Items {
		if seen[item.ProductID] {
			t.Fatalf("duplicate product id %s in cart", item.ProductID)
		}
		seen[item.ProductID] = true
		if item.Quantity.IsZero() {
			t.Fatalf("zero-quantity line for %s left in cart", item.ProductID)
		}
		expected := item.Quantity.Mul(item.UnitPrice)
		if !item.LineTotal.Equal(expected) {
			t.Fatalf("line total drift for %s: have %s, want %s", item.ProductID, item.LineTotal, expected)
		}
	}
	if c.Focused >= len(c.Items) {
		t.Fatalf("focused index %d out of range for %d items", c.Focused, len(c.Items))
	}
}

func TestAddOrMergeMergesAtFirstAddPrice(t *testing.T) {
	c := domain.EmptyCart()
	c = AddOrMerge(c, product("p1", "100"), dec("2"))

	// Catalog price changed mid-session; the merge must keep the first-add price.
	repriced := product("p1", "120")
	c = AddOrMerge(c, repriced, dec("3"))
	assertInvariants(t, c)

	if len(c.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(c.Items))
	}
	line := c.Items[0]
	if !line.Quantity.Equal(dec("5")) {
		t.Fatalf("expected merged quantity 5, got %s", line.Quantity)
	}
	if !line.UnitPrice.Equal(dec("100")) {
		t.Fatalf("expected unit price 100 from first add, got %s", line.UnitPrice)
	}
	if !line.LineTotal.Equal(dec("500")) {
		t.Fatalf("expected line total 500, got %s", line.LineTotal)
	}
}

func TestAddOrMergeDefaultsQuantityToOne(t *testing.T) {
	c := AddOrMerge(domain.EmptyCart(), product("p1", "40"), decimal.Zero)
	if !c.Items[0].Quantity.Equal(dec("1")) {
		t.Fatalf("expected default quantity 1, got %s", c.Items[0].Quantity)
	}
}

func TestAddOrMergeUnpricedProductUsesZero(t *testing.T) {
	p := product("p1", "0")
	c := AddOrMerge(domain.EmptyCart(), p, dec("3"))
	assertInvariants(t, c)
	if !c.Items[0].UnitPrice.IsZero() || !c.Items[0].LineTotal.IsZero() {
		t.Fatalf("expected zero price and total for unpriced product")
	}
}

func TestAdjustQuantityToZeroRemovesLine(t *testing.T) {
	c := AddOrMerge(domain.EmptyCart(), product("p1", "100"), dec("2"))
	c = AddOrMerge(c, product("p2", "50"), dec("1"))

	c = AdjustQuantity(c, "p1", dec("-2"))
	assertInvariants(t, c)
	if c.IndexOf("p1") >= 0 {
		t.Fatalf("expected p1 removed when quantity hit 0")
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected 1 remaining line, got %d", len(c.Items))
	}
}

func TestAdjustQuantityClampsBelowZero(t *testing.T) {
	c := AddOrMerge(domain.EmptyCart(), product("p1", "100"), dec("1"))
	c = AdjustQuantity(c, "p1", dec("-5"))
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart after over-decrement, got %d lines", len(c.Items))
	}
	if c.Focused != -1 {
		t.Fatalf("expected no focused row in empty cart, got %d", c.Focused)
	}
}

func TestSetQuantityDirect(t *testing.T) {
	c := AddOrMerge(domain.EmptyCart(), product("p1", "100"), dec("2"))

	c = SetQuantity(c, "p1", dec("7"))
	assertInvariants(t, c)
	if !c.Items[0].LineTotal.Equal(dec("700")) {
		t.Fatalf("expected line total 700, got %s", c.Items[0].LineTotal)
	}

	// Negative direct input normalizes to 0 and removes the line.
	c = SetQuantity(c, "p1", dec("-1"))
	if len(c.Items) != 0 {
		t.Fatalf("expected line removed for normalized-to-zero input")
	}
}

func TestRemoveMovesFocusToPreviousRow(t *testing.T) {
	c := domain.EmptyCart()
	c = AddOrMerge(c, product("p1", "10"), dec("1"))
	c = AddOrMerge(c, product("p2", "20"), dec("1"))
	c = AddOrMerge(c, product("p3", "30"), dec("1"))
	if c.Focused != 2 {
		t.Fatalf("expected focus on last added row, got %d", c.Focused)
	}

	c = Remove(c, "p3")
	assertInvariants(t, c)
	if c.Focused != 1 {
		t.Fatalf("expected focus to move to previous row, got %d", c.Focused)
	}
	focused, ok := c.FocusedItem()
	if !ok || focused.ProductID != "p2" {
		t.Fatalf("expected p2 focused, got %+v ok=%t", focused, ok)
	}
}

func TestRemoveUnfocusedRowKeepsFocusedItem(t *testing.T) {
	c := domain.EmptyCart()
	c = AddOrMerge(c, product("p1", "10"), dec("1"))
	c = AddOrMerge(c, product("p2", "20"), dec("1"))
	c = AddOrMerge(c, product("p3", "30"), dec("1"))

	// Focus is on p3; removing p1 shifts indexes but focus must stay on p3.
	c = Remove(c, "p1")
	focused, ok := c.FocusedItem()
	if !ok || focused.ProductID != "p3" {
		t.Fatalf("expected focus to follow p3 after removal, got %+v", focused)
	}
}

func TestSetUnitOfMeasureLeavesPriceAlone(t *testing.T) {
	c := AddOrMerge(domain.EmptyCart(), product("p1", "100"), dec("2"))
	c = SetUnitOfMeasure(c, "p1", "uom-box")
	assertInvariants(t, c)
	if c.Items[0].UnitID != "uom-box" {
		t.Fatalf("expected unit changed to uom-box, got %s", c.Items[0].UnitID)
	}
	if !c.Items[0].UnitPrice.Equal(dec("100")) || !c.Items[0].LineTotal.Equal(dec("200")) {
		t.Fatalf("unit change must not touch price or total")
	}
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	base := AddOrMerge(domain.EmptyCart(), product("p1", "100"), dec("2"))
	snapshot := base.Clone()

	_ = AddOrMerge(base, product("p2", "10"), dec("1"))
	_ = AdjustQuantity(base, "p1", dec("5"))
	_ = SetQuantity(base, "p1", dec("9"))
	_ = Remove(base, "p1")
	_ = SetUnitOfMeasure(base, "p1", "uom-box")

	if len(base.Items) != len(snapshot.Items) {
		t.Fatalf("input cart mutated: %d items vs %d", len(base.Items), len(snapshot.Items))
	}
	for i := range base.Items {
		if !base.Items[i].Quantity.Equal(snapshot.Items[i].Quantity) ||
			base.Items[i].UnitID != snapshot.Items[i].UnitID {
			t.Fatalf("input cart line %d mutated", i)
		}
	}
}

func TestUnknownProductIsNoOp(t *testing.T) {
	c := AddOrMerge(domain.EmptyCart(), product("p1", "100"), dec("2"))
	for _, mutated := range []domain.Cart{
		AdjustQuantity(c, "ghost", dec("1")),
		SetQuantity(c, "ghost", dec("1")),
		Remove(c, "ghost"),
		SetUnitOfMeasure(c, "ghost", "uom-box"),
	} {
		if len(mutated.Items) != 1 {
			t.Fatalf("unknown-product operation changed the cart")
		}
	}
}
