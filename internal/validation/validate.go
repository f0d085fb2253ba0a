package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field limits for a single expense record.
const (
	AmountMax = 1_000_000
	NoteMax   = 60
)

// DefaultCurrency is applied when the caller leaves currency empty.
const DefaultCurrency = "₹"

// Categories is the fixed set of allowed category labels. Free-form
// categories are not permitted.
var Categories = []string{
	"Bills",
	"Groceries",
	"Entertainment",
	"Shopping",
	"Food",
	"Study",
	"Transport",
	"Rent",
	"Health",
	"Other",
}

// Currencies is the fixed set of allowed currency symbols.
var Currencies = []string{"₹", "$", "£", "€", "¥"}

var amountMax = decimal.NewFromInt(AmountMax)

// Input is a candidate expense as submitted by the form layer, before
// anything is written to the store.
type Input struct {
	Amount   decimal.Decimal
	Currency string
	Category string
	Note     string
}

// Result maps each violated field to its first broken rule. Fields are
// checked independently so a form can show every violation at once.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// ValidateExpense checks a candidate expense against the field rules.
// It is pure: it never touches the store and the store performs no
// validation of its own.
func ValidateExpense(in Input) Result {
	errs := make(map[string]string)

	if !in.Amount.IsPositive() {
		errs["amount"] = "Amount must be greater than 0"
	} else if in.Amount.GreaterThan(amountMax) {
		errs["amount"] = "Amount too large"
	}

	if note := strings.TrimSpace(in.Note); len([]rune(note)) > NoteMax {
		errs["note"] = fmt.Sprintf("Note must be under %d characters", NoteMax)
	}

	if !contains(Categories, in.Category) {
		errs["category"] = "Unknown category"
	}

	if in.Currency != "" && !contains(Currencies, in.Currency) {
		errs["currency"] = "Unknown currency"
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
