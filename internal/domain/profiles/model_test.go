package profiles

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestInputNormalizeDefaults(t *testing.T) {
	in := Input{BusinessName: " Salon ", CurrencyCode: "eur"}.Normalize()
	if in.BusinessName != "Salon" || in.CurrencyCode != "EUR" {
		t.Errorf("got %+v", in)
	}
	if !in.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("exchange rate = %s, want 1", in.ExchangeRate)
	}
	if err := in.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if (Input{}).Normalize().CurrencyCode != "USD" {
		t.Error("empty currency should default to USD")
	}
}

func TestInputValidate(t *testing.T) {
	if err := (Input{CurrencyCode: "EURO", ExchangeRate: decimal.NewFromInt(1)}).Validate(); err == nil {
		t.Error("4-letter currency accepted")
	}
	if err := (Input{CurrencyCode: "EUR", ExchangeRate: decimal.NewFromInt(-2)}).Validate(); err == nil {
		t.Error("negative rate accepted")
	}
}

func TestDefault(t *testing.T) {
	id := uuid.New()
	p := Default(id, "me@example.com")
	if p.UserID != id || p.Email != "me@example.com" || p.CurrencyCode != "USD" {
		t.Errorf("got %+v", p)
	}
}
