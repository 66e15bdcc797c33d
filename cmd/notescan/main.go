package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/VivekBose50/ClinicalNoteTool/internal/identifier"
)

// notescan checks a note for sensitive identifiers and prints the result
// as JSON. It exits 1 when the note contains identifiers, which makes it
// usable in shell pipelines and pre-submit hooks.
func main() {
	filePath := flag.String("file", "", "Path to note file (default: read stdin)")
	flag.Parse()

	var (
		data []byte
		err  error
	)
	if *filePath != "" {
		data, err = os.ReadFile(*filePath)
		if err != nil {
			log.Fatalf("read %s: %v", *filePath, err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
	}

	result := identifier.Detect(string(data))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("encode result: %v", err)
	}

	if result.HasIdentifiers {
		for _, m := range result.Matches {
			fmt.Fprintf(os.Stderr, "%s: %q\n", m.Reason, m.Match)
		}
		os.Exit(1)
	}
}
