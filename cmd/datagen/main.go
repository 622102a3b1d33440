package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chaindocs/tradecore/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		corporates    = flag.Int("corporates", cfg.NumCorporates, "number of corporate parties to generate")
		banks         = flag.Int("banks", cfg.NumBanks, "number of bank parties to generate")
		trades        = flag.Int("trades", cfg.NumTrades, "number of trades to generate")
		docsPerTrade  = flag.Int("docs-per-trade", cfg.MaxDocsPerTrade, "maximum documents attached per trade")
		disputeChance = flag.Float64("dispute-chance", cfg.DisputeChance, "probability a trade ends up disputed")
		cancelChance  = flag.Float64("cancel-chance", cfg.CancelChance, "probability a trade is cancelled early")
		seed          = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir     = flag.String("output-dir", "data", "directory to write parties.json, trades.json, documents.json")
		writeStdout   = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumCorporates:   *corporates,
		NumBanks:        *banks,
		NumTrades:       *trades,
		MaxDocsPerTrade: *docsPerTrade,
		DisputeChance:   clampProbability(*disputeChance),
		CancelChance:    clampProbability(*cancelChance),
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := generator.EncodeDataset(os.Stdout, dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d parties, %d trades and %d documents into %s\n",
		len(dataset.Parties), len(dataset.Trades), len(dataset.Documents), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
