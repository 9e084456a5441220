// Command schemagen prints the JSON Schema of a persisted territory snapshot.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/talgya/hex-cities/internal/territory"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema (default stdout)")
	flag.Parse()

	data, err := json.MarshalIndent(buildSchema(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal schema: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if outPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := writeFile(outPath, data); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{}
	schema := reflector.Reflect(new(territory.Snapshot))
	schema.Title = "Hex Cities Territory Snapshot"
	schema.Description = "Payload of a version 1 envelope, or of the lz4 frame in a version 2 envelope"
	return schema
}

func writeFile(outPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
