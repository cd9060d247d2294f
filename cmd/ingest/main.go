// Command ingest runs the pipeline against files on disk, without the HTTP
// layer. Useful for backfills and for testing mappings offline.
//
// Usage:
//
//	ingest -schema products -user admin [-offline] file1.xlsx file2.csv
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"supplysight/pkg/core/llm"
	"supplysight/pkg/core/mapping"
	"supplysight/pkg/core/pipeline"
	"supplysight/pkg/core/store"
	"supplysight/pkg/logger"
)

func main() {
	schemaType := flag.String("schema", "", "target schema type for all files")
	userID := flag.String("user", "", "owning user identifier")
	offline := flag.Bool("offline", false, "skip the mapping oracle, heuristics only")
	dryRun := flag.Bool("dry-run", false, "validate without persisting")
	database := flag.String("db", "supplysight", "mongo database name")
	flag.Parse()

	if *schemaType == "" || *userID == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ingest -schema <type> -user <id> [-offline] [-dry-run] <files...>")
		os.Exit(2)
	}

	godotenv.Load()
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var files []pipeline.UploadFile
	for _, path := range flag.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			os.Exit(1)
		}
		files = append(files, pipeline.UploadFile{
			Name:       path,
			SchemaType: *schemaType,
			Content:    content,
		})
	}

	var provider llm.Provider
	if !*offline {
		provider = &llm.GeminiProvider{}
	}
	oracle := mapping.NewOracle(provider, 45*time.Second)

	ctx := context.Background()

	var outcome *pipeline.BatchOutcome
	if *dryRun {
		orch := pipeline.New(oracle, nil, log)
		outcome = orch.Preview(ctx, *userID, files)
	} else {
		recordStore, err := store.ConnectMongo(ctx, *database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mongo connection failed: %v\n", err)
			os.Exit(1)
		}
		defer recordStore.Disconnect(ctx)
		orch := pipeline.New(oracle, recordStore, log)
		outcome = orch.Run(ctx, *userID, files)
	}

	report, _ := json.MarshalIndent(outcome, "", "  ")
	fmt.Println(string(report))

	if outcome.Status == pipeline.BatchAllFailed {
		os.Exit(1)
	}
}
