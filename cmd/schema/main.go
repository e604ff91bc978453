package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/umputun/ideascope/pkg/config"
)

func main() {
	schema, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("failed to generate schema: %v", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal schema: %v", err)
	}

	outputPath := "schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("failed to write schema file: %v", err)
	}
	fmt.Printf("schema written to %s\n", outputPath)
}
