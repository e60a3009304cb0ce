package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

var (
	accountTypes       = []string{"checking", "savings", "credit"}
	merchantCategories = []string{"grocery", "gas", "restaurant", "retail", "online", "travel", "utilities", "pharmacy", "other"}
	// US is listed three times on purpose: most merchants are domestic.
	merchantCountries = []string{"US", "US", "US", "CA", "MX", "GB", "IN"}
)

const phoneRegion = "US"

// entityHistory is how far before the simulation start entities may have
// been created.
const entityHistoryYears = 2

// MakeCustomers generates n customers created strictly before start.
func MakeCustomers(rnd *Random, n int, start time.Time) []Customer {
	f := rnd.Faker()
	from := start.AddDate(-entityHistoryYears, 0, 0)
	customers := make([]Customer, 0, n)
	for i := 0; i < n; i++ {
		customers = append(customers, Customer{
			CustomerID: fmt.Sprintf("C%05d", i),
			FullName:   f.Name(),
			Email:      f.Email(),
			Phone:      formatPhone(f.Phone()),
			Address:    strings.ReplaceAll(f.Address().Address, "\n", ", "),
			CreatedAt:  pastInstant(rnd, from, start),
		})
	}
	return customers
}

// MakeAccounts opens between min and max accounts for every customer.
func MakeAccounts(rnd *Random, customers []Customer, min, max int, start time.Time) []Account {
	from := start.AddDate(-entityHistoryYears, 0, 0)
	accounts := make([]Account, 0, len(customers)*max)
	for _, c := range customers {
		k := rnd.IntRange(min, max)
		for j := 0; j < k; j++ {
			accounts = append(accounts, Account{
				AccountID:   fmt.Sprintf("A%06d", len(accounts)),
				CustomerID:  c.CustomerID,
				AccountType: rnd.Choice(accountTypes),
				OpenedAt:    pastInstant(rnd, from, start),
			})
		}
	}
	return accounts
}

// MakeMerchants generates n merchants.
func MakeMerchants(rnd *Random, n int) []Merchant {
	f := rnd.Faker()
	merchants := make([]Merchant, 0, n)
	for i := 0; i < n; i++ {
		merchants = append(merchants, Merchant{
			MerchantID:   fmt.Sprintf("M%05d", i),
			MerchantName: f.Company(),
			Category:     rnd.Choice(merchantCategories),
			Country:      rnd.Choice(merchantCountries),
		})
	}
	return merchants
}

// MakePopulation builds customers, their accounts and the merchants.
func MakePopulation(rnd *Random, cfg Config) Population {
	start := cfg.horizonStart()
	customers := MakeCustomers(rnd, cfg.NCustomers, start)
	accounts := MakeAccounts(rnd, customers, cfg.AccountsPerCustomerMin, cfg.AccountsPerCustomerMax, start)
	merchants := MakeMerchants(rnd, cfg.NMerchants)
	return Population{Customers: customers, Accounts: accounts, Merchants: merchants}
}

// pastInstant is a whole-second instant in [from, before).
func pastInstant(rnd *Random, from, before time.Time) time.Time {
	span := int(before.Sub(from) / time.Second)
	return from.Add(rnd.Seconds(span - 1)).UTC()
}

func formatPhone(raw string) string {
	num, err := phonenumbers.Parse(raw, phoneRegion)
	if err != nil {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
