package synth

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var baseChannels = []string{"card", "ach", "wire", "cash"}

const (
	secondsPerDay    = 86400
	descriptionWords = 6
)

// BaseTransactions generates the unlabeled background stream over the whole
// horizon. Each day's count is Poisson around cfg.BaseTxPerDay.
func BaseTransactions(rnd *Random, pop Population, cfg Config, ids *IDAllocator) []Transaction {
	start := cfg.horizonStart()
	txs := make([]Transaction, 0, cfg.Days*cfg.BaseTxPerDay)
	for d := 0; d < cfg.Days; d++ {
		day := start.AddDate(0, 0, d)
		n := rnd.Poisson(float64(cfg.BaseTxPerDay))
		for i := 0; i < n; i++ {
			account := pickAccount(rnd, pop)
			merchant := pickMerchant(rnd, pop)

			magnitude := rnd.LogNormal(cfg.AmountMu, cfg.AmountSigma)
			if rnd.Float64() < cfg.LargeSpendProb {
				magnitude *= cfg.LargeSpendFactor
			}
			amount := roundCents(magnitude)

			dir := Credit
			if rnd.Float64() < cfg.DebitShare {
				dir = Debit
			}
			ts := day.Add(rnd.Seconds(secondsPerDay - 1))

			txs = append(txs, newTransaction(ids.Next(), ts, account, merchant, dir, amount,
				rnd.Choice(baseChannels), sentence(rnd, descriptionWords), PatternNone))
		}
	}
	return txs
}

func pickAccount(rnd *Random, pop Population) string {
	return pop.Accounts[rnd.IntRange(0, len(pop.Accounts)-1)].AccountID
}

func pickMerchant(rnd *Random, pop Population) string {
	return pop.Merchants[rnd.IntRange(0, len(pop.Merchants)-1)].MerchantID
}

// randomDay picks a uniform day of the horizon.
func randomDay(rnd *Random, cfg Config) time.Time {
	return cfg.horizonStart().AddDate(0, 0, rnd.IntRange(0, cfg.Days-1))
}

// sentence builds a short free-text description from faker words.
func sentence(rnd *Random, words int) string {
	f := rnd.Faker()
	parts := make([]string, words)
	for i := range parts {
		parts[i] = f.Word()
	}
	first := parts[0]
	if r, size := utf8.DecodeRuneInString(first); r != utf8.RuneError {
		parts[0] = string(unicode.ToUpper(r)) + first[size:]
	}
	return strings.Join(parts, " ") + "."
}
