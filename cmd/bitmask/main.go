// Command bitmask encodes, decodes and validates bitmask field values from
// the command line.
package main

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

func main() {
	log.SetHandler(cli.Default)
	a := newApp(os.Stdout)
	if _, err := a.Parse(os.Args[1:]); err != nil {
		log.WithError(err).Fatal("bitmask failed")
	}
}
