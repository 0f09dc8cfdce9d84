package domain

import "testing"

func TestShortCodeDeterministic(t *testing.T) {
	id := "0d6cb463-94f4-4d43-a843-4f0a08f1a9cd"

	first := ShortCode(id)
	second := ShortCode(id)
	if first != second {
		t.Errorf("ShortCode not deterministic: %q vs %q", first, second)
	}
}

func TestShortCodeLength(t *testing.T) {
	ids := []string{
		"0d6cb463-94f4-4d43-a843-4f0a08f1a9cd",
		"a",
		"507f1f77bcf86cd799439011",
	}
	for _, id := range ids {
		if code := ShortCode(id); len(code) != 6 {
			t.Errorf("ShortCode(%q) = %q, want 6 characters", id, code)
		}
	}
}

func TestShortCodeDistinctIDs(t *testing.T) {
	a := ShortCode("0d6cb463-94f4-4d43-a843-4f0a08f1a9cd")
	b := ShortCode("1e7dc574-a5f5-5e54-b954-5f1b19f2b0de")
	if a == b {
		t.Errorf("distinct ids produced identical short codes: %q", a)
	}
}

func TestTicketShortCodeMatchesFunction(t *testing.T) {
	ticket := &Ticket{ID: "0d6cb463-94f4-4d43-a843-4f0a08f1a9cd"}
	if ticket.ShortCode() != ShortCode(ticket.ID) {
		t.Error("Ticket.ShortCode() disagrees with ShortCode(id)")
	}
}
