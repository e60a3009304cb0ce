package synth

import (
	"fmt"

	"github.com/remiges-tech/logharbour/logharbour"
)

// Injector appends one labeled pattern to the dataset. Injectors share the
// run's random stream and identifier allocator.
type Injector func(rnd *Random, pop Population, cfg Config, ids *IDAllocator) ([]Transaction, error)

// injectors run in this order; changing it changes every seeded dataset.
var injectors = []struct {
	pattern Pattern
	inject  Injector
}{
	{PatternStructuring, InjectStructuring},
	{PatternVelocity, InjectVelocity},
	{PatternRoundTrip, InjectRoundTrip},
}

// Generator produces complete datasets for one configuration.
type Generator struct {
	cfg    Config
	logger *logharbour.Logger
}

// NewGenerator returns a Generator for cfg. The configuration is validated
// by Generate, not here.
func NewGenerator(cfg Config, logger *logharbour.Logger) *Generator {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Generator{cfg: cfg, logger: logger.WithModule("synth")}
}

// Generate validates the configuration and builds the dataset: entities,
// base stream, the three injected patterns, then the assembled, time-ordered
// transaction table. On error no dataset is returned.
func (g *Generator) Generate() (*Dataset, error) {
	cfg := g.cfg
	if err := cfg.Validate(); err != nil {
		g.logger.Error(err).LogActivity("Invalid generator configuration", nil)
		return nil, err
	}

	rnd := NewRandom(cfg.Seed)
	ids := NewIDAllocator(0)

	pop := MakePopulation(rnd, cfg)
	g.logger.Debug0().LogActivity("Population generated", map[string]any{
		"customers": len(pop.Customers),
		"accounts":  len(pop.Accounts),
		"merchants": len(pop.Merchants),
	})

	base := BaseTransactions(rnd, pop, cfg, ids)
	g.logger.Debug0().LogActivity("Base stream generated", map[string]any{
		"transactions": len(base),
		"days":         cfg.Days,
	})

	batches := [][]Transaction{base}
	for _, inj := range injectors {
		txs, err := inj.inject(rnd, pop, cfg, ids)
		if err != nil {
			g.logger.Error(err).LogActivity("Pattern injection failed", map[string]any{
				"pattern": inj.pattern.String(),
			})
			return nil, fmt.Errorf("inject %s: %w", inj.pattern, err)
		}
		g.logger.Debug0().LogActivity("Pattern injected", map[string]any{
			"pattern":      inj.pattern.String(),
			"transactions": len(txs),
		})
		batches = append(batches, txs)
	}

	ds := &Dataset{
		Customers:    pop.Customers,
		Accounts:     pop.Accounts,
		Merchants:    pop.Merchants,
		Transactions: Assemble(batches...),
	}
	g.logger.Info().LogActivity("Dataset generated", Summarize(ds).LogData())
	return ds, nil
}
