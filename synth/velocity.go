package synth

import "time"

var velocityChannels = []string{"card", "ach"}

// Burst amounts are smaller and less skewed than the background stream.
const (
	velocityAmountMu    = 2.3
	velocityAmountSigma = 0.7
)

// InjectVelocity gives cfg.NVelocityEntities distinct accounts one burst of
// debits each. A burst sits on a single random day inside a VelocityWindow
// that starts early enough to end before midnight.
func InjectVelocity(rnd *Random, pop Population, cfg Config, ids *IDAllocator) ([]Transaction, error) {
	accounts, err := sampleAccounts(rnd, pop, cfg.NVelocityEntities, PatternVelocity)
	if err != nil {
		return nil, err
	}

	window := int(VelocityWindow / time.Second)
	var txs []Transaction
	for _, account := range accounts {
		start := randomDay(rnd, cfg).Add(rnd.Seconds(secondsPerDay - 1 - window))
		n := rnd.IntRange(velocityMinRows, velocityMaxRows)
		for j := 0; j < n; j++ {
			ts := start.Add(rnd.Seconds(window))
			amount := roundCents(rnd.LogNormal(velocityAmountMu, velocityAmountSigma))
			txs = append(txs, newTransaction(ids.Next(), ts, account, pickMerchant(rnd, pop), Debit, amount,
				rnd.Choice(velocityChannels), "Rapid purchases", PatternVelocity))
		}
	}
	return txs, nil
}
