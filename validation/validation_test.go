package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Positive("amount", decimal.Zero, v)
	NonNegative("price", decimal.NewFromInt(-1), v)
	NonNegativeInt("stock_quantity", -3, v)
	Range("tax_rate", decimal.NewFromFloat(1.5), decimal.Zero, decimal.NewFromInt(1), v)
	OneOf("role", "owner", []string{"admin", "user"}, v)
	var missing *int
	Present("invoice_id", missing, v)

	want := map[string]string{
		"name":           "required",
		"amount":         "must_be_positive",
		"price":          "must_not_be_negative",
		"stock_quantity": "must_not_be_negative",
		"tax_rate":       "out_of_range",
		"role":           "invalid_choice",
		"invoice_id":     "required",
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: expected %q got %q", field, code, v[field])
		}
	}
}

func TestValidators_Valid(t *testing.T) {
	v := Violations{}
	Required("name", "Laptop", v)
	Positive("amount", decimal.RequireFromString("0.01"), v)
	NonNegative("price", decimal.Zero, v)
	OneOf("role", "admin", []string{"admin", "user"}, v)
	if !v.Empty() {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestAddKeepsFirst(t *testing.T) {
	v := Violations{}
	v.Add("amount", "required")
	v.Add("amount", "must_be_positive")
	if v["amount"] != "required" {
		t.Errorf("expected first violation kept, got %q", v["amount"])
	}
}
