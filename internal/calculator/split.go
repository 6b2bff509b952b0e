package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Epsilon is the tolerance for comparing money sums.
var Epsilon = decimal.New(1, -2)

var (
	ErrNonPositiveAmount    = errors.New("amount must be greater than zero")
	ErrNoParticipants       = errors.New("must have at least one participant")
	ErrDuplicateParticipant = errors.New("participants must be unique")
	ErrUnknownSplitType     = errors.New("unknown split type")
)

// SumMismatchError reports custom amounts that do not add up to the transaction amount.
type SumMismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *SumMismatchError) Error() string {
	return fmt.Sprintf("custom amounts sum to %s, expected %s", e.Actual.StringFixed(2), e.Expected.StringFixed(2))
}

// InvalidShareError reports a custom amount that is missing or negative.
type InvalidShareError struct {
	Participant string
	Reason      string
}

func (e *InvalidShareError) Error() string {
	return fmt.Sprintf("participant %s: %s", e.Participant, e.Reason)
}

// Share is one participant's portion of a transaction amount.
type Share struct {
	Participant string
	Amount      decimal.Decimal
}

// RoundMoney rounds to two decimal places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalculateShares splits amount across participants using the given strategy.
// The returned shares follow participant order.
func CalculateShares(splitType models.SplitType, amount decimal.Decimal, participants []string, custom map[string]decimal.Decimal) ([]Share, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return nil, ErrDuplicateParticipant
		}
		seen[p] = true
	}

	switch splitType {
	case models.SplitEven, "":
		return EvenSplit(amount, participants), nil
	case models.SplitCustom:
		return CustomSplit(amount, participants, custom)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, splitType)
	}
}

// EvenSplit divides amount equally. The amount is rounded to cents first and
// leftover cents go one each to the first participants, so the shares always
// add up to the rounded amount.
func EvenSplit(amount decimal.Decimal, participants []string) []Share {
	total := models.Cents(amount)
	n := int64(len(participants))
	base, rem := total/n, total%n

	shares := make([]Share, len(participants))
	for i, p := range participants {
		c := base
		if int64(i) < rem {
			c++
		}
		shares[i] = Share{Participant: p, Amount: models.FromCents(c)}
	}
	return shares
}

// CustomSplit validates explicit per-participant amounts against the total.
func CustomSplit(amount decimal.Decimal, participants []string, custom map[string]decimal.Decimal) ([]Share, error) {
	shares := make([]Share, len(participants))
	sum := decimal.Zero
	for i, p := range participants {
		a, ok := custom[p]
		if !ok {
			return nil, &InvalidShareError{Participant: p, Reason: "missing custom amount"}
		}
		if a.IsNegative() {
			return nil, &InvalidShareError{Participant: p, Reason: "custom amount cannot be negative"}
		}
		a = RoundMoney(a)
		shares[i] = Share{Participant: p, Amount: a}
		sum = sum.Add(a)
	}
	for p := range custom {
		if !contains(participants, p) {
			return nil, &InvalidShareError{Participant: p, Reason: "custom amount for non-participant"}
		}
	}
	if sum.Sub(RoundMoney(amount)).Abs().GreaterThan(Epsilon) {
		return nil, &SumMismatchError{Expected: RoundMoney(amount), Actual: sum}
	}
	return shares, nil
}

// SumShares adds up share amounts.
func SumShares(shares []Share) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
