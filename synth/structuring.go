package synth

var structuringChannels = []string{"cash", "ach"}

// InjectStructuring picks cfg.NStructuringEntities distinct accounts and gives
// each a batch of cash/ACH credits just under the reporting threshold, spread
// across the horizon. Amounts are whole cents in
// [StructuringBandLow, StructuringBandHigh], which Validate keeps below
// StructuringThreshold.
func InjectStructuring(rnd *Random, pop Population, cfg Config, ids *IDAllocator) ([]Transaction, error) {
	accounts, err := sampleAccounts(rnd, pop, cfg.NStructuringEntities, PatternStructuring)
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	for _, account := range accounts {
		n := rnd.IntRange(structuringMinRows, structuringMaxRows)
		for k := 0; k < n; k++ {
			ts := randomDay(rnd, cfg).Add(rnd.Seconds(secondsPerDay - 1))
			amount := rnd.Cents(cfg.StructuringBandLow, cfg.StructuringBandHigh)
			txs = append(txs, newTransaction(ids.Next(), ts, account, pickMerchant(rnd, pop), Credit, amount,
				rnd.Choice(structuringChannels), "Deposit", PatternStructuring))
		}
	}
	return txs, nil
}

// sampleAccounts draws k distinct account identifiers without replacement.
func sampleAccounts(rnd *Random, pop Population, k int, p Pattern) ([]string, error) {
	if k > len(pop.Accounts) {
		return nil, &ExhaustionError{Injector: p.String(), Needed: k, Available: len(pop.Accounts)}
	}
	ids := make([]string, 0, k)
	for _, i := range rnd.Sample(len(pop.Accounts), k) {
		ids = append(ids, pop.Accounts[i].AccountID)
	}
	return ids, nil
}
