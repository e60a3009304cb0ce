package synth

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	ringAmountMin = decimal.NewFromInt(1500)
	ringAmountMax = decimal.NewFromInt(8000)
)

// Leg timing inside a ring. Cycle c starts at c*cycleSpacing after the ring
// start; debit i fires at i*legSpacing into the cycle and its matching
// credit at creditLag+i*legSpacing, so all debits of a cycle precede all its
// credits.
const (
	cycleSpacing = 15 * time.Minute
	legSpacing   = 30 * time.Second
	creditLag    = 2 * time.Minute
	ringSpan     = (RingCycles-1)*cycleSpacing + creditLag + (RingSize-1)*legSpacing
)

// InjectRoundTrip builds cfg.NRoundTripRings disjoint rings of RingSize
// accounts. Each ring moves one fixed amount around the loop RingCycles
// times: member i debits the amount and its successor is credited the same
// amount, so every cycle conserves money inside the ring.
//
// Transfers carry a random merchant reference only to keep the schema
// uniform; the channel is always wire.
func InjectRoundTrip(rnd *Random, pop Population, cfg Config, ids *IDAllocator) ([]Transaction, error) {
	accounts, err := sampleAccounts(rnd, pop, cfg.NRoundTripRings*RingSize, PatternRoundTrip)
	if err != nil {
		return nil, err
	}

	span := int(ringSpan / time.Second)
	txs := make([]Transaction, 0, cfg.NRoundTripRings*RingCycles*RingSize*2)
	for r := 0; r < cfg.NRoundTripRings; r++ {
		ring := accounts[r*RingSize : (r+1)*RingSize]
		start := randomDay(rnd, cfg).Add(rnd.Seconds(secondsPerDay - 1 - span))
		amount := rnd.Cents(ringAmountMin, ringAmountMax)

		for c := 0; c < RingCycles; c++ {
			cycleStart := start.Add(time.Duration(c) * cycleSpacing)
			for i, src := range ring {
				dst := ring[(i+1)%RingSize]
				ts := cycleStart.Add(time.Duration(i) * legSpacing)
				txs = append(txs, newTransaction(ids.Next(), ts, src, pickMerchant(rnd, pop), Debit, amount,
					"wire", "Transfer to "+dst, PatternRoundTrip))
			}
			for i, src := range ring {
				dst := ring[(i+1)%RingSize]
				ts := cycleStart.Add(creditLag + time.Duration(i)*legSpacing)
				txs = append(txs, newTransaction(ids.Next(), ts, dst, pickMerchant(rnd, pop), Credit, amount,
					"wire", "Transfer from "+src, PatternRoundTrip))
			}
		}
	}
	return txs, nil
}
