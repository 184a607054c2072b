// Command niidg validates RO-Crate metadata documents against the bundled
// schema profiles and inspects the schemas themselves.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	multierror "github.com/hashicorp/go-multierror"
	niidg "github.com/ivis-tsukioka/niidg"
	"github.com/ivis-tsukioka/niidg/i18n"
	"github.com/ivis-tsukioka/niidg/jsonld"
	"github.com/ivis-tsukioka/niidg/jsonschema"
	"github.com/ivis-tsukioka/niidg/profiles"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "validate":
		validateCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	case "context":
		contextCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `niidg CLI

Usage:
  niidg validate [-lang en|ja] [-q] <ro-crate-metadata.json> ...
  niidg schema [-json] <profile> [<entity>]
  niidg context <profile> <entity>

The NIIDG_GH_REPO and NIIDG_GH_REF environment variables override the
source of the per-type context URIs.`)
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var lang string
	var quiet bool
	fs.StringVar(&lang, "lang", "en", "language for violation messages (en or ja)")
	fs.BoolVar(&quiet, "q", false, "suppress per-violation output")
	_ = fs.Parse(args)
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	if err := i18n.SetLanguage(lang); err != nil {
		fatalf("%v", err)
	}
	if err := profiles.Init(); err != nil {
		fatalf("%v", err)
	}

	var result *multierror.Error
	for _, file := range files {
		err := validateFile(file)
		if err == nil {
			if !quiet {
				fmt.Printf("%s: OK\n", file)
			}
			continue
		}
		if vs, ok := niidg.AsViolations(err); ok {
			if !quiet {
				for _, v := range vs {
					fmt.Printf("%s: %s\n", file, v.Error())
				}
			}
			result = multierror.Append(result, fmt.Errorf("%s: %d violation(s)", file, len(vs)))
			continue
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
		}
		result = multierror.Append(result, fmt.Errorf("%s: %w", file, err))
	}
	if err := result.ErrorOrNil(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, err := jsonld.Unmarshal(data)
	if err != nil {
		return err
	}
	return niidg.Validate(c).AsError()
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "export as JSON Schema")
	_ = fs.Parse(args)
	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		fs.Usage()
		os.Exit(2)
	}

	if err := profiles.Init(); err != nil {
		fatalf("%v", err)
	}
	def, ok := niidg.Global().Definition(rest[0])
	if !ok {
		fatalf("unknown profile %q (have %s)", rest[0], strings.Join(niidg.Global().Profiles(), ", "))
	}

	if len(rest) == 2 {
		es := def.Entity(rest[1])
		if es == nil {
			fatalf("profile %s has no entity %s (have %s)", rest[0], rest[1], strings.Join(def.EntityNames(), ", "))
		}
		if asJSON {
			printJSON(jsonschema.Export(es))
			return
		}
		printEntity(es)
		return
	}

	if asJSON {
		printJSON(jsonschema.ExportDefinition(def))
		return
	}
	for i, es := range def.Entities {
		if i > 0 {
			fmt.Println()
		}
		printEntity(es)
	}
}

func printEntity(es *niidg.EntitySchema) {
	fmt.Printf("%s (%s, %s)\n", es.Name, es.Profile, es.Kind)
	for _, p := range es.Props {
		req := "optional"
		if p.Required {
			req = "required"
		}
		fmt.Printf("  %-24s %-36s %s\n", p.Name, p.Type.String(), req)
		for _, c := range p.Constraints {
			fmt.Printf("  %-24s %s\n", "", c.Note)
		}
	}
}

func printJSON(v any) {
	enc := gojson.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatalf("encode: %v", err)
	}
}

func contextCmd(args []string) {
	if len(args) != 2 || args[0] == "" || args[1] == "" {
		usage()
		os.Exit(2)
	}
	fmt.Println(niidg.ContextURL(args[0], args[1]))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
