package sales

import "testing"

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PayCash, PayCard, PayCheck, PayDigital} {
		if !m.Valid() {
			t.Errorf("%s must be valid", m)
		}
	}
	for _, m := range []PaymentMethod{"", "crypto", "CASH"} {
		if m.Valid() {
			t.Errorf("%q must be invalid", m)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusPending, StatusCancelled, StatusRefunded} {
		if !s.Valid() {
			t.Errorf("%s must be valid", s)
		}
	}
	if Status("paid").Valid() {
		t.Error("paid must be invalid")
	}
}

func TestStockNote(t *testing.T) {
	if got := StockNote("INV-250314-093012-beef"); got != "Sale: INV-250314-093012-beef" {
		t.Errorf("note = %q", got)
	}
}
