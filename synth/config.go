package synth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Shapes of the injected patterns. These are part of what the patterns
// mean and are not configurable.
const (
	RingSize       = 4
	RingCycles     = 8
	VelocityWindow = 20 * time.Minute

	structuringMinRows = 18
	structuringMaxRows = 35
	velocityMinRows    = 25
	velocityMaxRows    = 60
)

// Config fully determines a run together with Seed. Use DefaultConfig and
// override fields; call Validate (Generate does) before generating.
type Config struct {
	NCustomers             int `json:"n_customers" validate:"gt=0"`
	AccountsPerCustomerMin int `json:"accounts_per_customer_min" validate:"gt=0,ltefield=AccountsPerCustomerMax"`
	AccountsPerCustomerMax int `json:"accounts_per_customer_max" validate:"gt=0"`
	NMerchants             int `json:"n_merchants" validate:"gt=0"`
	Days                   int `json:"days" validate:"gt=0"`
	BaseTxPerDay           int `json:"base_tx_per_day" validate:"gt=0"`

	StructuringThreshold decimal.Decimal `json:"structuring_threshold"`
	StructuringBandLow   decimal.Decimal `json:"structuring_band_low"`
	StructuringBandHigh  decimal.Decimal `json:"structuring_band_high"`

	NStructuringEntities int `json:"n_structuring_entities" validate:"gt=0"`
	NVelocityEntities    int `json:"n_velocity_entities" validate:"gt=0"`
	NRoundTripRings      int `json:"n_roundtrip_rings" validate:"gt=0"`

	// Background amount shape: LogNormal(AmountMu, AmountSigma), scaled by
	// LargeSpendFactor with probability LargeSpendProb.
	AmountMu         float64 `json:"amount_mu"`
	AmountSigma      float64 `json:"amount_sigma" validate:"gt=0"`
	LargeSpendProb   float64 `json:"large_spend_prob" validate:"gte=0,lte=1"`
	LargeSpendFactor float64 `json:"large_spend_factor" validate:"gte=1"`
	DebitShare       float64 `json:"debit_share" validate:"gte=0,lte=1"`

	Seed      uint64    `json:"seed"`
	StartDate time.Time `json:"start_date"`
}

// DefaultConfig returns the stock configuration. The horizon ends today
// (UTC), so StartDate should be pinned when a reproducible dataset is needed.
func DefaultConfig() Config {
	const days = 60
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return Config{
		NCustomers:             800,
		AccountsPerCustomerMin: 1,
		AccountsPerCustomerMax: 2,
		NMerchants:             250,
		Days:                   days,
		BaseTxPerDay:           3500,
		StructuringThreshold:   decimal.NewFromInt(10000),
		StructuringBandLow:     decimal.NewFromInt(9000),
		StructuringBandHigh:    decimal.NewFromInt(9999),
		NStructuringEntities:   25,
		NVelocityEntities:      25,
		NRoundTripRings:        8,
		AmountMu:               3.0,
		AmountSigma:            1.0,
		LargeSpendProb:         0.02,
		LargeSpendFactor:       50,
		DebitShare:             0.86,
		Seed:                   42,
		StartDate:              today.AddDate(0, 0, -days),
	}
}

// horizonStart is midnight UTC of the first simulated day.
func (c Config) horizonStart() time.Time {
	return c.StartDate.UTC().Truncate(24 * time.Hour)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	return v
}

// paramName reports a cross-field tag parameter, which names a Go field,
// under that field's JSON name. Other parameters are returned unchanged.
func paramName(param string) string {
	if f, ok := reflect.TypeOf(Config{}).FieldByName(param); ok {
		if name := jsonName(f); name != "" {
			return name
		}
	}
	return param
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Validate checks every constraint of the configuration and returns a
// *ConfigurationError for the first one violated.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			constraint := fe.Tag()
			if fe.Param() != "" {
				constraint += "=" + paramName(fe.Param())
			}
			return &ConfigurationError{
				Field:      fe.Field(),
				Constraint: constraint,
				Details:    fmt.Sprintf("got %v", fe.Value()),
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.StartDate.IsZero() {
		return &ConfigurationError{Field: "start_date", Constraint: "required", Details: "start date is not set"}
	}
	if !c.StructuringThreshold.IsPositive() {
		return &ConfigurationError{
			Field:      "structuring_threshold",
			Constraint: "gt=0",
			Details:    "got " + c.StructuringThreshold.String(),
		}
	}
	if !c.StructuringBandLow.IsPositive() {
		return &ConfigurationError{
			Field:      "structuring_band_low",
			Constraint: "gt=0",
			Details:    "got " + c.StructuringBandLow.String(),
		}
	}
	if c.StructuringBandLow.GreaterThanOrEqual(c.StructuringBandHigh) {
		return &ConfigurationError{
			Field:      "structuring_band_low",
			Constraint: "structuring_band_low<structuring_band_high",
			Details:    fmt.Sprintf("band [%s, %s] is empty", c.StructuringBandLow, c.StructuringBandHigh),
		}
	}
	if c.StructuringBandLow.Shift(2).Ceil().GreaterThan(c.StructuringBandHigh.Shift(2).Floor()) {
		return &ConfigurationError{
			Field:      "structuring_band_high",
			Constraint: "band contains a whole cent",
			Details:    fmt.Sprintf("band [%s, %s] holds no cent amount", c.StructuringBandLow, c.StructuringBandHigh),
		}
	}
	if c.StructuringBandHigh.GreaterThanOrEqual(c.StructuringThreshold) {
		return &ConfigurationError{
			Field:      "structuring_band_high",
			Constraint: "structuring_band_high<structuring_threshold",
			Details:    fmt.Sprintf("band high %s reaches threshold %s", c.StructuringBandHigh, c.StructuringThreshold),
		}
	}

	// The account count is random; only the guaranteed minimum is safe to
	// check against before generation.
	minAccounts := c.NCustomers * c.AccountsPerCustomerMin
	afflicted := []struct {
		field  string
		needed int
	}{
		{"n_structuring_entities", c.NStructuringEntities},
		{"n_velocity_entities", c.NVelocityEntities},
		{"n_roundtrip_rings", c.NRoundTripRings * RingSize},
	}
	for _, a := range afflicted {
		if a.needed > minAccounts {
			return &ConfigurationError{
				Field:      a.field,
				Constraint: "accounts<=n_customers*accounts_per_customer_min",
				Details:    fmt.Sprintf("needs %d distinct accounts, population guarantees %d", a.needed, minAccounts),
			}
		}
	}
	return nil
}
