// Command xsdclass generates PHP or Go classes from XML Schema
// documents.
//
//	xsdclass generate [-o dir] [--prefix ns] [--target php7.1|php7.0|go] schema.xsd ...
//	xsdclass dump schema.xsd ...
//
// Settings may also be read from a TOML file with --config.
package main

import (
	"log"
	"os"

	"github.com/CognitoIQ/xsdclass/xsdgen"
)

func main() {
	log.SetFlags(0)
	var cfg xsdgen.Config
	cfg.Option(xsdgen.DefaultOptions...)

	if err := cfg.GenCLI(os.Args[1:]...); err != nil {
		log.Fatal(err)
	}
}
