package validator

import (
	"math"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31", "2025-07-07"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidEmployeeCode(t *testing.T) {
	valid := []string{"EMP001", "ap-17", "store_2_cashier"}
	invalid := []string{"", "E", "EMP 001", "EMP|001", "abcdefghijklmnopqrstuvwxyz0123456789"}
	for _, code := range valid {
		if !IsValidEmployeeCode(code) {
			t.Errorf("IsValidEmployeeCode(%q) = false, want true", code)
		}
	}
	for _, code := range invalid {
		if IsValidEmployeeCode(code) {
			t.Errorf("IsValidEmployeeCode(%q) = true, want false", code)
		}
	}
}

func TestIsValidAmount(t *testing.T) {
	valid := []float64{0, 1, 1500.75, MaxAmount}
	invalid := []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1), 1e12, 1e13, 1e15}
	for _, f := range valid {
		if !IsValidAmount(f) {
			t.Errorf("IsValidAmount(%v) = false, want true", f)
		}
	}
	for _, f := range invalid {
		if IsValidAmount(f) {
			t.Errorf("IsValidAmount(%v) = true, want false", f)
		}
	}
}

func TestPeriodBounds(t *testing.T) {
	for _, m := range []int{0, 13, -1} {
		if IsValidMonth(m) {
			t.Errorf("IsValidMonth(%d) = true, want false", m)
		}
	}
	if !IsValidMonth(7) || !IsValidYear(2025) {
		t.Error("expected July 2025 to be a valid period")
	}
	if IsValidYear(1999) {
		t.Error("IsValidYear(1999) = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "allowances.food", Message: "must be a non-negative amount no greater than 999999999999.99"},
		{Field: "month", Message: "must be between 1 and 12"},
	}
	if got := errs.Error(); got != "allowances.food: must be a non-negative amount no greater than 999999999999.99; month: must be between 1 and 12" {
		t.Errorf("Error() = %q", got)
	}
	m := errs.ToMap()
	if len(m) != 2 || m["month"] != "must be between 1 and 12" {
		t.Errorf("ToMap() = %v", m)
	}
}
