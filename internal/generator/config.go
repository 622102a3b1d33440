package generator

// Config drives the synthetic dataset generator.
type Config struct {
	NumCorporates   int
	NumBanks        int
	NumTrades       int
	MaxDocsPerTrade int
	DisputeChance   float64
	CancelChance    float64
	Seed            int64
}

// DefaultConfig returns baseline settings for a useful local dataset.
func DefaultConfig() Config {
	return Config{
		NumCorporates:   40,
		NumBanks:        5,
		NumTrades:       200,
		MaxDocsPerTrade: 4,
		DisputeChance:   0.05,
		CancelChance:    0.08,
		Seed:            42,
	}
}
