package domain_test

import (
	"testing"

	"github.com/revisit-app/decks-service/internal/domain"
)

func TestDeck_CardCounterTracksCards(t *testing.T) {
	d := &domain.Deck{Author: domain.Author{ID: 1}}

	if !d.AddCard("a") || !d.AddCard("b") {
		t.Fatal("expected new cards to be added")
	}
	if d.AddCard("a") {
		t.Fatal("duplicate card must not be added")
	}
	if d.NumCards != 2 {
		t.Fatalf("expected 2 cards, got %d", d.NumCards)
	}

	if !d.RemoveCard("a") {
		t.Fatal("expected card a to be removed")
	}
	if d.RemoveCard("a") {
		t.Fatal("removing an absent card must report false")
	}
	if d.NumCards != 1 || d.Cards[0] != "b" {
		t.Fatalf("unexpected cards after removal: %v (num %d)", d.Cards, d.NumCards)
	}

	d.RemoveCard("b")
	d.RemoveCard("b")
	if d.NumCards != 0 {
		t.Fatalf("expected NumCards to stay at 0, got %d", d.NumCards)
	}
}

func TestDeck_AuthorNeverInSavedBy(t *testing.T) {
	d := &domain.Deck{Author: domain.Author{ID: 42}}

	if d.AddSave(42) {
		t.Fatal("author must not be recorded as a saver")
	}
	if !d.AddSave(7) {
		t.Fatal("expected user 7 to be recorded")
	}
	if d.AddSave(7) {
		t.Fatal("user 7 must only be recorded once")
	}
	if d.NumSaves != 1 || !d.IsSavedBy(7) || d.IsSavedBy(42) {
		t.Fatalf("unexpected saves: %v (num %d)", d.SavedBy, d.NumSaves)
	}

	if !d.RemoveSave(7) || d.RemoveSave(7) {
		t.Fatal("expected exactly one successful removal")
	}
	if d.NumSaves != 0 {
		t.Fatalf("expected 0 saves, got %d", d.NumSaves)
	}
}

func TestSavedDecks_AddRemove(t *testing.T) {
	s := &domain.SavedDecks{UserID: 7}

	if !s.Add("d1") || s.Add("d1") {
		t.Fatal("expected d1 to be added exactly once")
	}
	if !s.Remove("d1") || s.Remove("d1") {
		t.Fatal("expected d1 to be removed exactly once")
	}
	if len(s.DeckIDs) != 0 {
		t.Fatalf("expected empty list, got %v", s.DeckIDs)
	}
}

func TestUpstreamStatusError(t *testing.T) {
	err := &domain.UpstreamStatusError{Service: "user-profile", Method: "DELETE", StatusCode: 502}
	if got, want := err.Error(), "user-profile DELETE: unexpected status 502"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
