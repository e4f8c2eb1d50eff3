// Package main writes the JSON schema of weighted tree dataset nodes, so
// editors and external validators can check data files before wtree reads them.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/wtree/pkg/dataset"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

func main() {
	defaults := dataset.DefaultFields()

	var (
		outputDir string
		name      string
		fields    dataset.Fields
	)

	flag.StringVar(&outputDir, "o", "docs/schemas", "Output directory for schemas")
	flag.StringVar(&name, "name", "node", "Schema file name without extension")
	flag.StringVar(&fields.Children, "children", defaults.Children, "Children field name")
	flag.StringVar(&fields.Value, "value", defaults.Value, "Value field name")
	flag.StringVar(&fields.Label, "label", defaults.Label, "Label field name")
	flag.StringVar(&fields.Key, "key", defaults.Key, "Key field name")
	flag.Parse()

	path, err := writeSchema(outputDir, name, fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated schema %s\n", path)
}

func writeSchema(dir, name string, fields dataset.Fields) (string, error) {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	var pretty bytes.Buffer

	err = json.Indent(&pretty, []byte(dataset.Schema(fields)), "", "  ")
	if err != nil {
		return "", fmt.Errorf("indent schema: %w", err)
	}

	pretty.WriteByte('\n')

	path := filepath.Join(dir, name+".schema.json")

	err = os.WriteFile(path, pretty.Bytes(), filePerm)
	if err != nil {
		return "", fmt.Errorf("write schema: %w", err)
	}

	return path, nil
}
