package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/wjessop/bitmask"
)

// app holds the parsed command line and the field it operates on.
type app struct {
	*kingpin.Application
	out io.Writer

	configPath *string
	verbose    *bool
	field      *bitmask.Field
}

func newApp(out io.Writer) *app {
	a := &app{
		Application: kingpin.New("bitmask", "Encode, decode and validate bitmask field values"),
		out:         out,
	}
	a.configPath = a.Flag("config", "Field declaration file (JSON with comments)").Short('c').String()
	a.verbose = a.Flag("verbose", "Enable verbose log output.").Short('v').Bool()
	a.PreAction(a.setup)

	encode := a.Command("encode", "Print the stored bytes of a value as hex")
	encodeValue := encode.Arg("value", "Value to encode").Required().String()
	encode.Action(func(_ *kingpin.ParseContext) error {
		return a.encode(*encodeValue)
	})

	decode := a.Command("decode", "Decode hex stored bytes")
	decodeValue := decode.Arg("hex", "Stored bytes as hex").Required().String()
	decode.Action(func(_ *kingpin.ParseContext) error {
		return a.decode(*decodeValue)
	})

	validate := a.Command("validate", "Validate values against the field")
	validateValues := validate.Arg("values", "Values to validate").Required().Strings()
	validate.Action(func(_ *kingpin.ParseContext) error {
		return a.validate(*validateValues)
	})

	bits := a.Command("bits", "List the bits set in a value")
	bitsValue := bits.Arg("value", "Value to decompose").Required().String()
	bits.Action(func(_ *kingpin.ParseContext) error {
		return a.bits(*bitsValue)
	})

	changed := a.Command("changed", "Report whether a multi-select submission changes a value")
	initial := changed.Flag("initial", "Initial value; empty means NULL").Default("").String()
	submitted := changed.Arg("selected", "Selected bit values").Strings()
	changed.Action(func(_ *kingpin.ParseContext) error {
		return a.changed(*initial, *submitted)
	})

	return a
}

func (a *app) setup(_ *kingpin.ParseContext) error {
	if *a.verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *a.configPath == "" {
		return nil
	}
	log.Debugf("Reading field declaration from %s", *a.configPath)
	cfg, err := bitmask.LoadFieldConfig(*a.configPath)
	if err != nil {
		return err
	}
	f, err := bitmask.NewField(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid field declaration")
	}
	f.SetLogger(log.WithField("field", cfg.Name))
	a.field = f
	return nil
}

func (a *app) requireField() error {
	if a.field == nil {
		return errors.New("this command needs a field declaration, use --config")
	}
	return nil
}

func (a *app) encode(value string) error {
	var (
		b   []byte
		err error
	)
	if a.field != nil {
		b, err = a.field.ToDB(value)
	} else {
		var v bitmask.Bitmask
		if v, err = bitmask.Parse(value); err == nil {
			b, err = v.MarshalBinary()
		}
	}
	if err != nil {
		return err
	}
	if b == nil {
		fmt.Fprintln(a.out, "NULL")
		return nil
	}
	fmt.Fprintln(a.out, hex.EncodeToString(b))
	return nil
}

func (a *app) decode(s string) error {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return errors.Wrap(err, "decoding hex")
	}
	v := bitmask.FromBytes(b)
	fmt.Fprintln(a.out, v)
	if a.field != nil {
		if err := a.field.Validate(bitmask.Present(v)); err != nil {
			log.WithError(err).Warn("stored value does not validate")
		}
	}
	return nil
}

func (a *app) validate(values []string) error {
	if err := a.requireField(); err != nil {
		return err
	}
	failed := 0
	for _, s := range values {
		v, err := a.field.Clean(s)
		if err != nil {
			failed++
			fmt.Fprintf(a.out, "%s\tinvalid\t%v\n", s, err)
			continue
		}
		fmt.Fprintf(a.out, "%s\tok\t%s\n", s, v)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d value(s) invalid", failed, len(values))
	}
	return nil
}

func (a *app) bits(s string) error {
	v, err := bitmask.Parse(s)
	if err != nil {
		return err
	}
	labels := map[string]string{}
	if a.field != nil {
		for _, c := range a.field.Choices() {
			labels[c.Value.String()] = c.Label
		}
	}
	for _, bit := range v.Bits() {
		if label, ok := labels[bit.String()]; ok {
			fmt.Fprintf(a.out, "%s\t%s\n", bit, label)
			continue
		}
		fmt.Fprintln(a.out, bit)
	}
	if a.field != nil {
		log.Debugf("choices set: %s", strings.Join(v.ListDescriptions(a.field.Choices()), ", "))
	}
	return nil
}

func (a *app) changed(initial string, submitted []string) error {
	if err := a.requireField(); err != nil {
		return err
	}
	v, err := bitmask.ToValue(initial)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.field.HasChanged(v, submitted))
	return nil
}
