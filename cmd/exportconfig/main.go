package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"

	config "github.com/4chain-ag/go-dlc-settlement/pkg/appconfig"
	"github.com/google/uuid"
)

func main() {
	regenToken := flag.Bool("regen-token", false, "Generate a bearer token protecting the oracle server attestations")
	flag.BoolVar(regenToken, "t", false, "Generate a bearer token protecting the oracle server attestations (shorthand)")

	outputFile := flag.String("output-file", "config.yaml", "Output configuration file path")
	flag.StringVar(outputFile, "o", "config.yaml", "Output configuration file path (shorthand)")

	flag.Parse()

	cfg := config.Defaults()

	if *regenToken {
		token := uuid.NewString()
		cfg.OracleServer.BearerToken = token
		cfg.Oracle.HTTP.BearerToken = token
	}

	ext := strings.TrimPrefix(filepath.Ext(*outputFile), ".")
	if !slices.Contains(config.SupportedExts(), ext) {
		log.Fatalf("Unsupported output file extension: %s", ext)
	}

	if err := config.Export(&cfg, *outputFile); err != nil {
		log.Fatalf("Error writing configuration: %v\n", err)
	}

	fmt.Printf("Configuration written to %s\n", *outputFile)
}
