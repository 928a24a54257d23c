package service

import (
	"testing"
	"time"
)

func TestSuggestGlobAndSubstring(t *testing.T) {
	s := NewDocTypeSuggester([]DocTypeRule{
		{Pattern: "*.dwg", Type: "technical-drawing"},
		{Pattern: "bill_of_quantities", Type: "boq"},
		{Pattern: "*.pdf", Type: "tender-document"},
	}, time.Minute)

	cases := []struct {
		filename string
		want     string
		matched  bool
	}{
		{"site-plan.dwg", "technical-drawing", true},
		{"Bill_of_Quantities_v2.xlsx", "boq", true},
		{"offer.pdf", "tender-document", true},
		{"/uploads/2026/offer.pdf", "tender-document", true},
		{"notes.txt", "", false},
	}

	for _, tc := range cases {
		got, ok := s.Suggest(tc.filename)
		if ok != tc.matched || got != tc.want {
			t.Fatalf("%s: expected (%q,%v) got (%q,%v)", tc.filename, tc.want, tc.matched, got, ok)
		}
	}
}

func TestSuggestFirstRuleWins(t *testing.T) {
	s := NewDocTypeSuggester([]DocTypeRule{
		{Pattern: "annex*.pdf", Type: "annex"},
		{Pattern: "*.pdf", Type: "tender-document"},
	}, time.Minute)

	got, ok := s.Suggest("annex-3.pdf")
	if !ok || got != "annex" {
		t.Fatalf("expected annex, got %q (%v)", got, ok)
	}
}

func TestSuggestMemoizesMisses(t *testing.T) {
	s := NewDocTypeSuggester(nil, time.Minute)

	if _, ok := s.Suggest("anything.bin"); ok {
		t.Fatalf("no rules, nothing may match")
	}
	// Second lookup hits the cache and must report the same outcome.
	if _, ok := s.Suggest("anything.bin"); ok {
		t.Fatalf("cached miss must stay a miss")
	}
}
