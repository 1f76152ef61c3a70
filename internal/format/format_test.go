package format

import (
	"math"
	"strings"
	"testing"

	"finsight/internal/model"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New("XYZ1", "en"); err == nil {
		t.Fatalf("invalid currency must fail")
	}
	if _, err := New("EUR", "not a locale!!"); err == nil {
		t.Fatalf("invalid locale must fail")
	}
	f, err := New("eur", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if f.Currency() != "EUR" || f.Symbol() == "" {
		t.Fatalf("unexpected currency %q symbol %q", f.Currency(), f.Symbol())
	}
}

func TestFormatter_Money(t *testing.T) {
	t.Parallel()

	f, err := New("USD", "en")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := f.Money(1234.5)
	if !strings.HasPrefix(got, f.Symbol()+" ") || !strings.HasSuffix(got, "1,234.50") {
		t.Fatalf("money: %q", got)
	}
	if f.Money(math.NaN()) != Placeholder {
		t.Fatalf("NaN must render placeholder")
	}

	jpy, err := New("JPY", "en")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := jpy.Money(1500); !strings.HasSuffix(got, "1,500") {
		t.Fatalf("JPY has no decimals: %q", got)
	}
}

func TestFormatter_Indicator(t *testing.T) {
	t.Parallel()

	f, err := New("EUR", "en")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if got := f.Indicator(model.Estimated(0.25, ""), KindPercent); got != "25.0%" {
		t.Fatalf("percent: %q", got)
	}
	if got := f.Indicator(model.Estimated(5, ""), KindNumber); got != "5.0" {
		t.Fatalf("number: %q", got)
	}
	if got := f.Indicator(model.Unavailable("x"), KindMoney); got != Placeholder {
		t.Fatalf("unresolved: %q", got)
	}
	if got := f.Indicator(model.Pending("x"), KindPercent); got != Placeholder {
		t.Fatalf("pending: %q", got)
	}
}
