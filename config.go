package bitmask

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

// fileConfig is the on-disk shape of a field declaration. Choices mirror
// the declaration tuples:
//
//	"choices": [[1, "a"], ["group", [[4, "b"], [8, "c"]]]]
type fileConfig struct {
	Name     string            `json:"name"`
	MaxBytes int               `json:"max_bytes"`
	Required bool              `json:"required"`
	Editable bool              `json:"editable"`
	Choices  []json.RawMessage `json:"choices"`
}

// LoadFieldConfig reads a field declaration from path. The file is JSON
// with comments and trailing commas allowed.
func LoadFieldConfig(path string) (FieldConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FieldConfig{}, err
	}
	c, err := ParseFieldConfig(b)
	if err != nil {
		return FieldConfig{}, errors.Wrapf(err, "loading %s", path)
	}
	return c, nil
}

// ParseFieldConfig parses a field declaration. It does not check it; use
// NewField or FieldConfig.Check for that.
func ParseFieldConfig(b []byte) (FieldConfig, error) {
	std, err := hujson.Standardize(b)
	if err != nil {
		return FieldConfig{}, errors.Wrap(err, "parsing hujson")
	}
	var fc fileConfig
	if err := decode(std, &fc); err != nil {
		return FieldConfig{}, errors.Wrap(err, "parsing json")
	}
	c := FieldConfig{
		Name:     fc.Name,
		MaxBytes: fc.MaxBytes,
		Required: fc.Required,
		Editable: fc.Editable,
	}
	for i, raw := range fc.Choices {
		opt, err := parseOption(raw)
		if err != nil {
			return FieldConfig{}, errors.Wrapf(err, "choice %d", i)
		}
		c.Choices = append(c.Choices, opt)
	}
	return c, nil
}

func decode(b []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

func pair(raw json.RawMessage) (interface{}, json.RawMessage, error) {
	var p []json.RawMessage
	if err := decode(raw, &p); err != nil {
		return nil, nil, err
	}
	if len(p) != 2 {
		return nil, nil, errors.Errorf("expected a [value, label] pair, got %d element(s)", len(p))
	}
	var key interface{}
	if err := decode(p[0], &key); err != nil {
		return nil, nil, err
	}
	return key, p[1], nil
}

func parseOption(raw json.RawMessage) (Option, error) {
	key, rest, err := pair(raw)
	if err != nil {
		return nil, err
	}
	group, ok := key.(string)
	if !ok {
		return parseChoice(key, rest)
	}
	var members []json.RawMessage
	if err := decode(rest, &members); err != nil {
		return nil, errors.Wrapf(err, "group %q", group)
	}
	g := ChoiceGroup{Label: group}
	for _, m := range members {
		key, label, err := pair(m)
		if err != nil {
			return nil, errors.Wrapf(err, "group %q", group)
		}
		c, err := parseChoice(key, label)
		if err != nil {
			return nil, errors.Wrapf(err, "group %q", group)
		}
		g.Choices = append(g.Choices, c)
	}
	return g, nil
}

func parseChoice(key interface{}, rawLabel json.RawMessage) (Choice, error) {
	var label interface{}
	if err := decode(rawLabel, &label); err != nil {
		return Choice{}, err
	}
	c := Choice{Label: fmt.Sprint(label)}
	switch k := key.(type) {
	case nil:
		// left undeclared; CheckChoices reports it
	case json.Number:
		v, ok := new(big.Int).SetString(k.String(), 10)
		if !ok {
			return Choice{}, errors.Errorf("choice value %s is not an integer", k)
		}
		c.Value = v
	default:
		return Choice{}, errors.Errorf("choice value %v is not a number", key)
	}
	return c, nil
}
