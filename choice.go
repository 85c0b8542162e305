package bitmask

import (
	"math/big"
)

// Option is one entry of a declared choice set: either a Choice or a
// ChoiceGroup.
type Option interface {
	appendTo(flat []Choice) []Choice
}

// Choice is a named, allowed bit value. Value is usually a power of two but
// may combine several bits. A nil Value means the declaration omitted it.
type Choice struct {
	Value *big.Int
	Label string
}

func (c Choice) appendTo(flat []Choice) []Choice {
	return append(flat, c)
}

// ChoiceGroup labels a set of choices for presentation. It has no bits of
// its own.
type ChoiceGroup struct {
	Label   string
	Choices []Choice
}

func (g ChoiceGroup) appendTo(flat []Choice) []Choice {
	return append(flat, g.Choices...)
}

func (c Choice) clone() Choice {
	if c.Value != nil {
		c.Value = new(big.Int).Set(c.Value)
	}
	return c
}

func cloneChoices(choices []Choice) []Choice {
	out := make([]Choice, len(choices))
	for i, c := range choices {
		out[i] = c.clone()
	}
	return out
}

// Bit returns a Choice for value v
func Bit(v uint64, label string) Choice {
	return Choice{Value: new(big.Int).SetUint64(v), Label: label}
}

// Group returns a ChoiceGroup holding choices
func Group(label string, choices ...Choice) ChoiceGroup {
	return ChoiceGroup{Label: label, Choices: choices}
}

// Flatten expands every group in place and keeps declaration order.
func Flatten(opts []Option) []Choice {
	flat := make([]Choice, 0, len(opts))
	for _, o := range opts {
		flat = o.appendTo(flat)
	}
	return flat
}

// AllowedMask ORs together every choice value. Undeclared or negative
// values contribute nothing; CheckChoices reports them.
func AllowedMask(choices []Choice) Bitmask {
	acc := new(big.Int)
	for _, c := range choices {
		if c.Value == nil || c.Value.Sign() < 0 {
			continue
		}
		acc.Or(acc, c.Value)
	}
	return Bitmask{v: acc}
}

// CheckChoices reports configuration problems of a declared choice set. At
// most one error is returned per problem class.
func CheckChoices(opts []Option) []error {
	if len(opts) == 0 {
		return []error{&ConfigurationError{
			ID:  CheckChoicesRequired,
			Msg: "choices are required",
		}}
	}
	for _, c := range Flatten(opts) {
		if c.Value == nil || c.Value.Sign() < 0 {
			return []error{&ConfigurationError{
				ID:  CheckChoicesInvalid,
				Msg: "choices must be non-negative integers",
			}}
		}
	}
	return nil
}
