package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Default thresholds for the recorder (loan) and property-target (value)
// pipelines. Every one of these can be overridden via environment variables
// or command-line flags without touching the classification logic.
const (
	DefaultMinLoanAmount = 1000
	DefaultMaxLoanAmount = 500000
	DefaultMinAgeYears   = 3
	DefaultMaxAgeYears   = 20

	// Sweet spot for seller-financed notes. Small notes trade at better
	// discounts than institutional-sized loans.
	DefaultIdealMinAmount = 10000
	DefaultIdealMaxAmount = 150000

	DefaultMinValue = 150000
	DefaultMaxValue = 600000

	DefaultBucketWidth      = 100000
	DefaultProgressInterval = 10000
	DefaultFuzzyThreshold   = 0.80
)

// DefaultBankKeywords flags institutional lenders/owners. Substring match
// against the uppercased name; operators extend the list via LEADGEN_BANK_KEYWORDS.
var DefaultBankKeywords = []string{
	"BANK", "N.A.", "MORTGAGE", "SERVICING",
	"WELLS FARGO", "WELLS",
	"JPMORGAN", "JP MORGAN", "CHASE",
	"BANK OF AMERICA", "BANK OF AMER", "BOA",
	"CITIBANK", "CITI",
	"U.S. BANK", "US BANK", "USBANK",
	"PNC", "TRUIST",
	"CAPITAL ONE", "CAPITALONE",
	"REGIONS BANK", "REGIONS",
	"SUNTRUST",
	"BB&T", "BBT",
	"TD BANK", "HSBC",
	"BANK OF NEW YORK", "BNY",
	"DEUTSCHE BANK", "BARCLAYS",
	"MORGAN STANLEY", "GOLDMAN SACHS",
	"MERRILL LYNCH", "FIDELITY", "VANGUARD",
	"CREDIT UNION",
}

// DefaultGovernmentKeywords flags government and GSE owners. Only consulted
// by the property-target pipeline.
var DefaultGovernmentKeywords = []string{
	"HUD",
	"FNMA", "FANNIE MAE", "FANNIE",
	"FHLMC", "FREDDIE MAC", "FREDDIE",
	"GNMA", "GINNIE MAE",
	"FEDERAL HOME LOAN",
	"USDA", "VA LOAN", "FHA",
}

// DefaultSellerFinanceKeywords identify document types that suggest a
// seller-financed note.
var DefaultSellerFinanceKeywords = []string{
	"PURCHASE MONEY",
	"SELLER FINANCE", "SELLER FINANCING",
	"VENDOR LIEN",
	"DEED OF TRUST",
	"NOTE",
	"MORTGAGE",
	"PROMISSORY NOTE",
	"INSTALLMENT SALE",
}

// DefaultReleaseKeywords identify document types that terminate a lien and
// carry no outreach value on their own.
var DefaultReleaseKeywords = []string{
	"RELEASE",
	"SATISFACTION",
	"RECONVEYANCE",
	"CANCELLATION",
}

// Config carries every tunable threshold and keyword list for both pipelines.
type Config struct {
	MinLoanAmount float64 `validate:"gte=0"`
	MaxLoanAmount float64 `validate:"gtfield=MinLoanAmount"`

	// Ideal sub-range within [MinLoanAmount, MaxLoanAmount] that earns the
	// full amount score. Zero values derive the middle half of the range.
	IdealMinAmount float64 `validate:"gte=0"`
	IdealMaxAmount float64 `validate:"gte=0"`

	MinAgeYears float64 `validate:"gte=0"`
	MaxAgeYears float64 `validate:"gtfield=MinAgeYears"`

	MinValue float64 `validate:"gte=0"`
	MaxValue float64 `validate:"gtfield=MinValue"`

	OnlyAbsentee    bool
	EnableBucketing bool
	BucketWidth     float64 `validate:"gt=0"`

	ProgressInterval int     `validate:"gt=0"`
	FuzzyThreshold   float64 `validate:"gte=0,lte=1"`

	BankKeywords          []string `validate:"min=1"`
	GovernmentKeywords    []string
	SellerFinanceKeywords []string `validate:"min=1"`
	ReleaseKeywords       []string `validate:"min=1"`
}

// Load reads .env (if present) and builds a Config from environment
// variables, falling back to defaults for anything unset.
func Load() (*Config, error) {
	// Missing .env is fine; real environment variables always win.
	_ = godotenv.Load()

	cfg := &Config{
		MinLoanAmount:         GetEnvFloat("LEADGEN_MIN_LOAN_AMOUNT", DefaultMinLoanAmount),
		MaxLoanAmount:         GetEnvFloat("LEADGEN_MAX_LOAN_AMOUNT", DefaultMaxLoanAmount),
		IdealMinAmount:        GetEnvFloat("LEADGEN_IDEAL_MIN_AMOUNT", DefaultIdealMinAmount),
		IdealMaxAmount:        GetEnvFloat("LEADGEN_IDEAL_MAX_AMOUNT", DefaultIdealMaxAmount),
		MinAgeYears:           GetEnvFloat("LEADGEN_MIN_AGE_YEARS", DefaultMinAgeYears),
		MaxAgeYears:           GetEnvFloat("LEADGEN_MAX_AGE_YEARS", DefaultMaxAgeYears),
		MinValue:              GetEnvFloat("LEADGEN_MIN_VALUE", DefaultMinValue),
		MaxValue:              GetEnvFloat("LEADGEN_MAX_VALUE", DefaultMaxValue),
		OnlyAbsentee:          GetEnvBool("LEADGEN_ONLY_ABSENTEE", false),
		EnableBucketing:       GetEnvBool("LEADGEN_ENABLE_BUCKETING", false),
		BucketWidth:           GetEnvFloat("LEADGEN_BUCKET_WIDTH", DefaultBucketWidth),
		ProgressInterval:      GetEnvInt("LEADGEN_PROGRESS_INTERVAL", DefaultProgressInterval),
		FuzzyThreshold:        GetEnvFloat("LEADGEN_FUZZY_THRESHOLD", DefaultFuzzyThreshold),
		BankKeywords:          GetEnvList("LEADGEN_BANK_KEYWORDS", DefaultBankKeywords),
		GovernmentKeywords:    GetEnvList("LEADGEN_GOVERNMENT_KEYWORDS", DefaultGovernmentKeywords),
		SellerFinanceKeywords: GetEnvList("LEADGEN_SELLER_FINANCE_KEYWORDS", DefaultSellerFinanceKeywords),
		ReleaseKeywords:       GetEnvList("LEADGEN_RELEASE_KEYWORDS", DefaultReleaseKeywords),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks threshold ordering and list sanity.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetEnv gets environment variable with default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets integer environment variable with default.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvFloat gets float environment variable with default.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvBool gets boolean environment variable with default.
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

// GetEnvList gets a comma-separated list environment variable with default.
// Entries are trimmed and uppercased so keyword comparisons stay consistent.
func GetEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var list []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			list = append(list, part)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}
