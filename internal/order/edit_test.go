package order

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/store"
	"billingdesk/backend/internal/store/memory"
)

func seededInvoice(t *testing.T, repo store.Repository) domain.Invoice {
	t.Helper()
	invoices, err := repo.ListInvoices(context.Background(), domain.InvoiceFilter{}, domain.Page{})
	if err != nil || len(invoices) == 0 {
		t.Fatalf("seeded invoices unavailable: %v", err)
	}
	return invoices[0]
}

func TestBeginEditLoadsInvoice(t *testing.T) {
	repo := memory.NewSeeded()
	s := NewSession(repo, nil, 0)
	inv := seededInvoice(t, repo)

	if err := s.BeginEdit(context.Background(), inv.ID); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if s.State() != StateEditing {
		t.Fatalf("expected editing, got %s", s.State())
	}
	draft := s.Draft()
	if draft.Mode != domain.DraftModeEditingExisting {
		t.Fatalf("expected editing mode, got %s", draft.Mode)
	}
	if draft.InvoiceNumber != inv.Number {
		t.Fatalf("expected invoice number %s, got %s", inv.Number, draft.InvoiceNumber)
	}
	if len(draft.Cart.Items) != len(inv.Items) {
		t.Fatalf("expected %d lines, got %d", len(inv.Items), len(draft.Cart.Items))
	}
}

func TestCancelEditRestoresSnapshotExactly(t *testing.T) {
	repo := memory.NewSeeded()
	s := NewSession(repo, nil, 0)
	inv := seededInvoice(t, repo)

	if err := s.BeginEdit(context.Background(), inv.ID); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	snapshot := s.Draft()

	s.SetDiscount(dec(t, "99"))
	s.RemoveLine(snapshot.Cart.Items[0].ProductID)
	s.SetRemarks("scratch change")

	if err := s.CancelEdit(); err != nil {
		t.Fatalf("cancel edit: %v", err)
	}
	restored := s.Draft()
	if !reflect.DeepEqual(snapshot, restored) {
		t.Fatalf("cancel must restore the pre-edit snapshot exactly\nwant: %+v\ngot:  %+v", snapshot, restored)
	}
	if s.State() != StateViewing {
		t.Fatalf("expected viewing after cancel, got %s", s.State())
	}
}

func TestCancelEditWithoutEditFails(t *testing.T) {
	s := NewSession(memory.NewSeeded(), nil, 0)
	if err := s.CancelEdit(); !errors.Is(err, store.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestSaveEditPersistsChanges(t *testing.T) {
	repo := memory.NewSeeded()
	s := NewSession(repo, nil, 0)
	inv := seededInvoice(t, repo)

	if err := s.BeginEdit(context.Background(), inv.ID); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	s.SetDiscount(dec(t, "50"))

	saved, err := s.SaveEdit(context.Background())
	if err != nil {
		t.Fatalf("save edit: %v", err)
	}
	if saved.Number != inv.Number {
		t.Fatalf("invoice number must survive edit, got %s", saved.Number)
	}
	if s.State() != StateViewing {
		t.Fatalf("successful save must return to viewing, got %s", s.State())
	}
	if !saved.Discount.Equal(dec(t, "50")) {
		t.Fatalf("expected saved discount 50, got %s", saved.Discount)
	}

	stored, err := repo.GetInvoiceByID(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if !stored.Discount.Equal(dec(t, "50")) {
		t.Fatalf("store must hold the edited discount, got %s", stored.Discount)
	}
}

type failingUpdateRepo struct {
	store.Repository
}

func (f failingUpdateRepo) UpdateInvoice(_ context.Context, _ string, _ domain.Invoice) (*domain.Invoice, error) {
	return nil, errors.New("write timeout")
}

func TestFailedSaveKeepsChangesAndEditingState(t *testing.T) {
	inner := memory.NewSeeded()
	s := NewSession(failingUpdateRepo{Repository: inner}, nil, 0)
	inv := seededInvoice(t, inner)

	if err := s.BeginEdit(context.Background(), inv.ID); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	s.SetDiscount(dec(t, "75"))

	_, err := s.SaveEdit(context.Background())
	if !errors.Is(err, store.ErrCommitFailed) {
		t.Fatalf("expected commit failure, got %v", err)
	}
	if s.State() != StateEditing {
		t.Fatalf("failed save must stay in editing, got %s", s.State())
	}
	if !s.Draft().Discount.Equal(dec(t, "75")) {
		t.Fatalf("pending changes must be retained, got discount %s", s.Draft().Discount)
	}
}

func TestViewDoesNotAllowSave(t *testing.T) {
	repo := memory.NewSeeded()
	s := NewSession(repo, nil, 0)
	inv := seededInvoice(t, repo)

	if err := s.View(context.Background(), inv.ID); err != nil {
		t.Fatalf("view: %v", err)
	}
	if s.State() != StateViewing {
		t.Fatalf("expected viewing, got %s", s.State())
	}
	if _, err := s.SaveEdit(context.Background()); !errors.Is(err, store.ErrValidationFailed) {
		t.Fatalf("saving without entering edit must fail, got %v", err)
	}
}
