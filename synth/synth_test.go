package synth

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"
	"time"

	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testLogger() *logharbour.Logger {
	return logharbour.NewLogger(&logharbour.LoggerContext{}, "test", io.Discard)
}

// smallConfig keeps the base stream small so property tests stay fast.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.NCustomers = 200
	cfg.NMerchants = 40
	cfg.Days = 10
	cfg.BaseTxPerDay = 150
	cfg.NStructuringEntities = 10
	cfg.NVelocityEntities = 10
	cfg.NRoundTripRings = 5
	cfg.Seed = 7
	cfg.StartDate = testStart
	return cfg
}

func generate(t *testing.T, cfg Config) *Dataset {
	t.Helper()
	ds, err := NewGenerator(cfg, testLogger()).Generate()
	require.NoError(t, err)
	require.NotNil(t, ds)
	return ds
}

func TestGenerate_DatasetProperties(t *testing.T) {
	cfg := smallConfig()
	ds := generate(t, cfg)

	t.Run("unique_identifiers", func(t *testing.T) {
		seen := map[string]bool{}
		for _, c := range ds.Customers {
			assert.False(t, seen[c.CustomerID], "duplicate customer %s", c.CustomerID)
			seen[c.CustomerID] = true
		}
		for _, a := range ds.Accounts {
			assert.False(t, seen[a.AccountID], "duplicate account %s", a.AccountID)
			seen[a.AccountID] = true
		}
		for _, m := range ds.Merchants {
			assert.False(t, seen[m.MerchantID], "duplicate merchant %s", m.MerchantID)
			seen[m.MerchantID] = true
		}
		for _, tx := range ds.Transactions {
			assert.False(t, seen[tx.TransactionID], "duplicate transaction %s", tx.TransactionID)
			seen[tx.TransactionID] = true
		}
	})

	t.Run("referential_integrity", func(t *testing.T) {
		customers := map[string]bool{}
		for _, c := range ds.Customers {
			customers[c.CustomerID] = true
		}
		accounts := map[string]bool{}
		for _, a := range ds.Accounts {
			assert.True(t, customers[a.CustomerID], "account %s has unknown owner %s", a.AccountID, a.CustomerID)
			accounts[a.AccountID] = true
		}
		merchants := map[string]bool{}
		for _, m := range ds.Merchants {
			merchants[m.MerchantID] = true
		}
		for _, tx := range ds.Transactions {
			assert.True(t, accounts[tx.AccountID], "transaction %s has unknown account", tx.TransactionID)
			assert.True(t, merchants[tx.MerchantID], "transaction %s has unknown merchant", tx.TransactionID)
		}
	})

	t.Run("sign_consistency", func(t *testing.T) {
		for _, tx := range ds.Transactions {
			switch tx.Direction {
			case Debit:
				assert.True(t, tx.Amount.IsNegative(), "debit %s has amount %s", tx.TransactionID, tx.Amount)
			case Credit:
				assert.True(t, tx.Amount.IsPositive(), "credit %s has amount %s", tx.TransactionID, tx.Amount)
			default:
				t.Errorf("transaction %s has direction %q", tx.TransactionID, tx.Direction)
			}
			assert.True(t, tx.Amount.Equal(tx.Amount.Round(2)), "amount %s is not in cents", tx.Amount)
		}
	})

	t.Run("label_consistency", func(t *testing.T) {
		for _, tx := range ds.Transactions {
			assert.Equal(t, tx.Pattern != PatternNone, tx.Suspicious())
		}
	})

	t.Run("chronological", func(t *testing.T) {
		for i := 1; i < len(ds.Transactions); i++ {
			assert.False(t, ds.Transactions[i].Timestamp.Before(ds.Transactions[i-1].Timestamp),
				"row %d is earlier than row %d", i, i-1)
		}
	})

	t.Run("horizon", func(t *testing.T) {
		end := testStart.AddDate(0, 0, cfg.Days)
		for _, tx := range ds.Transactions {
			assert.False(t, tx.Timestamp.Before(testStart), "%s before horizon", tx.TransactionID)
			assert.True(t, tx.Timestamp.Before(end), "%s after horizon", tx.TransactionID)
		}
		for _, c := range ds.Customers {
			assert.True(t, c.CreatedAt.Before(testStart))
		}
		for _, a := range ds.Accounts {
			assert.True(t, a.OpenedAt.Before(testStart))
		}
	})

	t.Run("accounts_per_customer", func(t *testing.T) {
		owned := map[string]int{}
		for _, a := range ds.Accounts {
			owned[a.CustomerID]++
		}
		assert.Len(t, owned, cfg.NCustomers)
		for id, n := range owned {
			assert.True(t, n >= cfg.AccountsPerCustomerMin && n <= cfg.AccountsPerCustomerMax,
				"customer %s owns %d accounts", id, n)
		}
	})
}

func TestGenerate_Determinism(t *testing.T) {
	cfg := smallConfig()
	first := generate(t, cfg)
	second := generate(t, cfg)

	assert.Equal(t, first.Customers, second.Customers)
	assert.Equal(t, first.Accounts, second.Accounts)
	assert.Equal(t, first.Merchants, second.Merchants)
	assert.Equal(t, renderTransactions(first), renderTransactions(second))

	cfg.Seed++
	other := generate(t, cfg)
	assert.NotEqual(t, renderTransactions(first), renderTransactions(other))
}

func renderTransactions(ds *Dataset) []string {
	out := make([]string, 0, len(ds.Transactions))
	for _, tx := range ds.Transactions {
		out = append(out, fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s", tx.TransactionID,
			tx.Timestamp.Format(time.RFC3339), tx.AccountID, tx.MerchantID, tx.Direction,
			tx.Amount.StringFixed(2), tx.Channel, tx.Description, tx.Pattern))
	}
	return out
}

func TestGenerate_StructuringScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartDate = testStart
	cfg.BaseTxPerDay = 100 // keep the background small; the scenario is about structuring
	ds := generate(t, cfg)

	low := decimal.NewFromInt(9000)
	high := decimal.NewFromInt(9999)
	threshold := decimal.NewFromInt(10000)
	perAccount := map[string]int{}
	for _, tx := range ds.Transactions {
		if tx.Pattern != PatternStructuring {
			continue
		}
		perAccount[tx.AccountID]++
		assert.Equal(t, Credit, tx.Direction)
		assert.True(t, tx.Amount.GreaterThanOrEqual(low), "amount %s below band", tx.Amount)
		assert.True(t, tx.Amount.LessThanOrEqual(high), "amount %s above band", tx.Amount)
		assert.True(t, tx.Amount.LessThan(threshold), "amount %s reaches threshold", tx.Amount)
		assert.Contains(t, []string{"cash", "ach"}, tx.Channel)
	}
	assert.Len(t, perAccount, 25)
	for acct, n := range perAccount {
		assert.True(t, n >= 18 && n <= 35, "account %s has %d structuring rows", acct, n)
	}
}

func TestGenerate_VelocityWindow(t *testing.T) {
	ds := generate(t, smallConfig())

	bursts := map[string][]time.Time{}
	for _, tx := range ds.Transactions {
		if tx.Pattern == PatternVelocity {
			assert.Equal(t, Debit, tx.Direction)
			bursts[tx.AccountID] = append(bursts[tx.AccountID], tx.Timestamp)
		}
	}
	require.Len(t, bursts, 10)
	for acct, ts := range bursts {
		assert.True(t, len(ts) >= 25 && len(ts) <= 60, "account %s burst has %d rows", acct, len(ts))
		first, last := ts[0], ts[0]
		for _, x := range ts {
			if x.Before(first) {
				first = x
			}
			if x.After(last) {
				last = x
			}
		}
		assert.LessOrEqual(t, last.Sub(first), VelocityWindow, "account %s burst spans %v", acct, last.Sub(first))
		assert.Equal(t, first.YearDay(), last.YearDay(), "account %s burst crosses midnight", acct)
	}
}

func TestGenerate_RoundTripScenario(t *testing.T) {
	cfg := smallConfig()
	cfg.NRoundTripRings = 8
	ds := generate(t, cfg)

	var rows []Transaction
	for _, tx := range ds.Transactions {
		if tx.Pattern == PatternRoundTrip {
			rows = append(rows, tx)
		}
	}
	require.Len(t, rows, 8*8*8)

	debits := map[string]int{}
	credits := map[string]int{}
	next := map[string]string{}
	for _, tx := range rows {
		assert.Equal(t, "wire", tx.Channel)
		if tx.Direction == Debit {
			debits[tx.AccountID]++
			next[tx.AccountID] = tx.Description[len("Transfer to "):]
		} else {
			credits[tx.AccountID]++
		}
	}
	assert.Len(t, debits, 32)
	assert.Len(t, credits, 32)
	for acct := range debits {
		assert.Equal(t, RingCycles, debits[acct])
		assert.Equal(t, RingCycles, credits[acct])
	}

	// Following "Transfer to" links from any member must close a loop of
	// exactly RingSize accounts, and no account may belong to two loops.
	member := map[string]int{}
	ring := 0
	for start := range next {
		if _, done := member[start]; done {
			continue
		}
		size := 0
		for acct := start; ; acct = next[acct] {
			_, done := member[acct]
			require.False(t, done, "account %s belongs to two rings", acct)
			member[acct] = ring
			size++
			if next[acct] == start {
				break
			}
			require.LessOrEqual(t, size, RingSize)
		}
		assert.Equal(t, RingSize, size)
		ring++
	}
	assert.Equal(t, 8, ring)
}

func TestInjectRoundTrip_Conservation(t *testing.T) {
	cfg := smallConfig()
	rnd := NewRandom(cfg.Seed)
	pop := MakePopulation(rnd, cfg)
	ids := NewIDAllocator(1000)

	txs, err := InjectRoundTrip(rnd, pop, cfg, ids)
	require.NoError(t, err)
	require.Len(t, txs, cfg.NRoundTripRings*RingCycles*RingSize*2)

	const cycleRows = RingSize * 2
	for c := 0; c < len(txs)/cycleRows; c++ {
		cycle := txs[c*cycleRows : (c+1)*cycleRows]
		debitSum, creditSum := decimal.Zero, decimal.Zero
		sources := map[string]int{}
		dests := map[string]int{}
		for i, tx := range cycle {
			if tx.Direction == Debit {
				debitSum = debitSum.Add(tx.Amount.Abs())
				sources[tx.AccountID]++
			} else {
				creditSum = creditSum.Add(tx.Amount)
				dests[tx.AccountID]++
			}
			if i > 0 {
				assert.True(t, tx.Timestamp.After(cycle[i-1].Timestamp), "cycle %d row %d not after previous", c, i)
			}
		}
		assert.True(t, debitSum.Equal(creditSum), "cycle %d: debits %s credits %s", c, debitSum, creditSum)
		assert.Len(t, sources, RingSize)
		assert.Len(t, dests, RingSize)
		for acct, n := range sources {
			assert.Equal(t, 1, n)
			assert.Equal(t, 1, dests[acct], "account %s is a source but not a destination", acct)
		}
		assert.True(t, cycle[0].Amount.Abs().GreaterThanOrEqual(ringAmountMin))
		assert.True(t, cycle[0].Amount.Abs().LessThanOrEqual(ringAmountMax))
	}
	assert.Equal(t, FormatTransactionID(1000), txs[0].TransactionID)
}

func TestInjectors_Exhaustion(t *testing.T) {
	cfg := smallConfig()
	rnd := NewRandom(1)
	pop := Population{
		Accounts:  []Account{{AccountID: "A000000"}, {AccountID: "A000001"}, {AccountID: "A000002"}},
		Merchants: []Merchant{{MerchantID: "M00000"}},
	}
	cfg.NRoundTripRings = 1

	_, err := InjectRoundTrip(rnd, pop, cfg, NewIDAllocator(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExhausted))
	var exh *ExhaustionError
	require.True(t, errors.As(err, &exh))
	assert.Equal(t, "round_trip", exh.Injector)
	assert.Equal(t, 4, exh.Needed)
	assert.Equal(t, 3, exh.Available)

	cfg.NVelocityEntities = 4
	_, err = InjectVelocity(rnd, pop, cfg, NewIDAllocator(0))
	assert.True(t, errors.Is(err, ErrExhausted))

	cfg.NStructuringEntities = 3
	txs, err := InjectStructuring(rnd, pop, cfg, NewIDAllocator(0))
	require.NoError(t, err)
	assert.NotEmpty(t, txs)
}

func TestGenerate_InvalidConfigProducesNothing(t *testing.T) {
	cfg := smallConfig()
	cfg.NRoundTripRings = cfg.NCustomers // 4 accounts per ring cannot be guaranteed
	ds, err := NewGenerator(cfg, testLogger()).Generate()
	assert.Nil(t, ds)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestIDAllocator(t *testing.T) {
	ids := NewIDAllocator(41)
	assert.Equal(t, "T000000041", ids.Next())
	assert.Equal(t, "T000000042", ids.Next())

	cfg := smallConfig()
	ds := generate(t, cfg)
	last := ""
	for _, tx := range ds.Transactions {
		if tx.TransactionID > last {
			last = tx.TransactionID
		}
	}
	// Identifiers are dense from zero: the largest one is count-1.
	assert.Equal(t, FormatTransactionID(int64(len(ds.Transactions)-1)), last)
}

func TestPattern(t *testing.T) {
	for _, p := range append([]Pattern{PatternNone}, Patterns...) {
		parsed, ok := ParsePattern(p.String())
		assert.True(t, ok)
		assert.Equal(t, p, parsed)
	}
	_, ok := ParsePattern("smurfing")
	assert.False(t, ok)
	assert.False(t, PatternNone.IsSuspicious())
	assert.True(t, PatternRoundTrip.IsSuspicious())
}

func TestAssemble_StableByTimestamp(t *testing.T) {
	at := func(sec int) time.Time { return testStart.Add(time.Duration(sec) * time.Second) }
	base := []Transaction{
		{TransactionID: "T000000000", Timestamp: at(30)},
		{TransactionID: "T000000001", Timestamp: at(10)},
	}
	injected := []Transaction{
		{TransactionID: "T000000002", Timestamp: at(10)},
		{TransactionID: "T000000003", Timestamp: at(5)},
	}

	out := Assemble(base, injected)
	var got []string
	for _, tx := range out {
		got = append(got, tx.TransactionID)
	}
	assert.Equal(t, []string{"T000000003", "T000000001", "T000000002", "T000000000"}, got)
}

func TestSummarize(t *testing.T) {
	ds := &Dataset{
		Customers: make([]Customer, 2),
		Accounts:  make([]Account, 3),
		Transactions: []Transaction{
			{Pattern: PatternNone},
			{Pattern: PatternVelocity},
			{Pattern: PatternVelocity},
		},
	}
	s := Summarize(ds)
	assert.Equal(t, 2, s.Customers)
	assert.Equal(t, 3, s.Accounts)
	assert.Equal(t, 0, s.Merchants)
	assert.Equal(t, 3, s.Transactions)
	assert.Equal(t, 2, s.Labels[PatternVelocity])

	data := s.LogData()
	assert.Equal(t, 1, data["label_normal"])
	assert.Equal(t, 0, data["label_round_trip"])
	assert.Contains(t, s.String(), "velocity")
}

func TestBaseTransactions_Shape(t *testing.T) {
	cfg := smallConfig()
	rnd := NewRandom(cfg.Seed)
	pop := MakePopulation(rnd, cfg)
	txs := BaseTransactions(rnd, pop, cfg, NewIDAllocator(0))
	require.NotEmpty(t, txs)

	channels := map[string]bool{}
	for _, c := range baseChannels {
		channels[c] = true
	}

	perDay := make([]int, cfg.Days)
	debits := 0
	for _, tx := range txs {
		day := int(tx.Timestamp.Sub(testStart) / (24 * time.Hour))
		require.True(t, day >= 0 && day < cfg.Days, "transaction %s on day %d", tx.TransactionID, day)
		perDay[day]++
		if tx.Direction == Debit {
			debits++
		}
		assert.True(t, channels[tx.Channel], "unexpected channel %q", tx.Channel)
		assert.Equal(t, PatternNone, tx.Pattern)
	}

	for d, n := range perDay {
		assert.Positive(t, n, "day %d has no transactions", d)
	}

	// The mean of Days Poisson counts has standard deviation sqrt(rate/Days).
	mean := float64(len(txs)) / float64(cfg.Days)
	sd := math.Sqrt(float64(cfg.BaseTxPerDay) / float64(cfg.Days))
	assert.InDelta(t, float64(cfg.BaseTxPerDay), mean, 4*sd)

	assert.InDelta(t, cfg.DebitShare, float64(debits)/float64(len(txs)), 0.03)
}
