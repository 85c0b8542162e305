package bitmask

import (
	"fmt"
	"math/big"
)

// Storage widths in bytes of the classic integer-backed field variants.
const (
	SmallWidth   = 2
	DefaultWidth = 4
	BigWidth     = 8
)

// FieldConfig declares a bitmask field.
type FieldConfig struct {
	// Name is used in configuration errors and log lines only.
	Name string
	// Choices is the declared choice set. It must not be empty.
	Choices []Option
	// MaxBytes bounds the stored value to 2^(8*MaxBytes)-1. Zero means
	// unbounded.
	MaxBytes int
	// Required rejects empty values in Validate.
	Required bool
	// Editable is not interpreted by this package.
	Editable bool
}

// Check returns every configuration error of c.
func (c FieldConfig) Check() []error {
	errs := CheckChoices(c.Choices)
	if c.MaxBytes < 0 {
		errs = append(errs, &ConfigurationError{
			ID:  CheckMaxBytes,
			Msg: fmt.Sprintf("max bytes must be zero or positive, got %d", c.MaxBytes),
		})
	} else if c.MaxBytes > 0 && len(errs) == 0 {
		max := maxValue(c.MaxBytes)
		for _, choice := range Flatten(c.Choices) {
			if choice.Value.Cmp(max.bigInt()) > 0 {
				errs = append(errs, &ConfigurationError{
					ID:  CheckChoiceWidth,
					Msg: fmt.Sprintf("choice %q does not fit in %d byte(s)", choice.Label, c.MaxBytes),
				})
				break
			}
		}
	}
	for _, err := range errs {
		if ce, ok := err.(*ConfigurationError); ok {
			ce.Field = c.Name
		}
	}
	return errs
}

// Field is a validated bitmask field configuration. A Field is immutable
// once SetLogger has been called and may be shared between goroutines.
type Field struct {
	name     string
	choices  []Choice
	allowed  Bitmask
	max      *Bitmask
	width    int
	required bool
	editable bool
	log      Logger
}

// NewField checks cfg and computes the flattened choice set and the
// allowed mask once. It returns the first configuration error found.
func NewField(cfg FieldConfig) (*Field, error) {
	if errs := cfg.Check(); len(errs) > 0 {
		return nil, errs[0]
	}
	f := &Field{
		name:     cfg.Name,
		choices:  cloneChoices(Flatten(cfg.Choices)),
		width:    cfg.MaxBytes,
		required: cfg.Required,
		editable: cfg.Editable,
		log:      nopLogger{},
	}
	f.allowed = AllowedMask(f.choices)
	if cfg.MaxBytes > 0 {
		max := maxValue(cfg.MaxBytes)
		f.max = &max
	}
	return f, nil
}

func maxValue(width int) Bitmask {
	v := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
	return Bitmask{v: v.Sub(v, big.NewInt(1))}
}

// SetLogger sets the logger to use
func (f *Field) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	f.log = l
}

// Name returns the configured field name
func (f *Field) Name() string { return f.name }

// Editable returns the configured editable flag
func (f *Field) Editable() bool { return f.editable }

// Required reports whether empty values are rejected
func (f *Field) Required() bool { return f.required }

// Width returns the storage width in bytes, or zero when unbounded.
func (f *Field) Width() int { return f.width }

// AllowedMask returns the OR of every choice value
func (f *Field) AllowedMask() Bitmask { return f.allowed }

// Max returns the largest storable value, and false when unbounded.
func (f *Field) Max() (Bitmask, bool) {
	if f.max == nil {
		return Bitmask{}, false
	}
	return *f.max, true
}

// Choices returns a copy of the flattened choice set in declaration order.
// It never contains a blank entry.
func (f *Field) Choices() []Choice {
	return cloneChoices(f.choices)
}

// Validate checks v against the field. Empty values are valid unless the
// field is required.
func (f *Field) Validate(v NullBitmask) error {
	if !v.Valid {
		if f.required {
			return &ValidationError{Kind: KindRequired}
		}
		return nil
	}
	return ValidateValue(v.Bitmask, f.allowed, f.max)
}

// Clean converts raw to a mask and validates it.
func (f *Field) Clean(raw interface{}) (NullBitmask, error) {
	v, err := ToValue(raw)
	if err != nil {
		return NullBitmask{}, err
	}
	if err := f.Validate(v); err != nil {
		f.log.Debugf("%s: rejected %v: %v", f.name, v, err)
		return NullBitmask{}, err
	}
	return v, nil
}

// FromDB decodes a stored column value. A nil slice is NULL.
func (f *Field) FromDB(b []byte) NullBitmask {
	if b == nil {
		return NullBitmask{}
	}
	return Present(FromBytes(b))
}

// ToDB cleans raw and encodes it for storage. NULL encodes to a nil slice.
func (f *Field) ToDB(raw interface{}) ([]byte, error) {
	v, err := f.Clean(raw)
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		return nil, nil
	}
	b, err := Encode(v.bigInt())
	if err != nil {
		return nil, err
	}
	f.log.Debugf("%s: encoded %s as % x", f.name, v.Bitmask, b)
	return b, nil
}
