// Command schema regenerates the JSON schema for the regwatch YAML
// configuration. The result is embedded by pkg/config and used to verify
// loaded config files at startup.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/regwatch/regwatch/pkg/config"
)

func main() {
	schema := jsonschema.Reflect(&config.Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("marshal config schema: %v", err)
	}

	// default path assumes a run from the repository root; go:generate in
	// pkg/config passes the local name instead
	outputPath := "pkg/config/schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("write %s: %v", outputPath, err)
	}

	fmt.Printf("config schema written to %s\n", outputPath)
}
