package bitmask

// ValidateValue checks v against an allowed mask and an optional maximum.
// The range is checked first. A value is valid when every set bit is
// covered by allowed, whether or not it equals a single declared choice.
func ValidateValue(v, allowed Bitmask, max *Bitmask) error {
	if max != nil && v.Cmp(*max) > 0 {
		return &ValidationError{Kind: KindOutOfRange, Value: v, Max: *max}
	}
	if disabled := v.AndNot(allowed); !disabled.IsZero() {
		return &ValidationError{Kind: KindDisabledBits, Value: v, Disabled: disabled}
	}
	return nil
}
