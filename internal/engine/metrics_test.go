package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"brownstone/server/internal/models"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestCalculateMetrics_Basic(t *testing.T) {
	p := &models.Property{
		CurrentPrice: 1_650_000,
		SQFT:         floatPtr(1250),
		MonthlyRent:  5500,
		MonthlyHOA:   850,
	}

	m := CalculateMetrics(p)

	assert.Equal(t, 66000.0, m.AnnualRent)
	assert.Equal(t, 10200.0, m.TotalAnnualExpenses)
	assert.Equal(t, 55800.0, m.NetOperatingIncome)
	assert.Equal(t, 1320.0, m.PricePerSQFT)
	assert.Equal(t, 3.38, m.CapRate)
	assert.Equal(t, 25.0, m.GrossRentMultiplier)
	assert.Equal(t, 4.0, m.RentToPriceRatio)
	assert.Equal(t, 0.62, m.FeeRatio)
}

func TestCalculateMetrics_ExpenseComponents(t *testing.T) {
	p := &models.Property{
		CurrentPrice:     1_000_000,
		MonthlyRent:      4000,
		MonthlyHOA:       500,
		AnnualTax:        9000,
		AnnualInsurance:  1200,
		AnnualUtilities:  1800,
		AnnualManagement: 2400,
	}

	m := CalculateMetrics(p)

	assert.Equal(t, 48000.0, m.AnnualRent)
	assert.Equal(t, 20400.0, m.TotalAnnualExpenses)
	assert.Equal(t, 27600.0, m.NetOperatingIncome)
	assert.Equal(t, 2.76, m.CapRate)
}

func TestCalculateMetrics_ZeroDenominators(t *testing.T) {
	// Divisions by non-positive denominators resolve to 0, never an error.
	p := &models.Property{
		CurrentPrice: 500_000,
		// no SQFT, no rent, no prior sale
	}

	m := CalculateMetrics(p)

	assert.Equal(t, 0.0, m.PricePerSQFT)
	assert.Equal(t, 0.0, m.GrossRentMultiplier)
	assert.Equal(t, 0.0, m.RentToPriceRatio)
	assert.Equal(t, 0.0, m.AppreciationSinceSale)
}

func TestCalculateMetrics_Appreciation(t *testing.T) {
	saleDate := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	p := &models.Property{
		CurrentPrice:  1_200_000,
		LastSaleDate:  &saleDate,
		LastSalePrice: 1_000_000,
	}

	m := CalculateMetrics(p)
	assert.Equal(t, 20.0, m.AppreciationSinceSale)
}

func TestCalculateMetrics_Financing(t *testing.T) {
	p := &models.Property{
		CurrentPrice: 1_000_000,
		MonthlyRent:  5000,
		Financing: &models.Financing{
			DownPayment:  250_000,
			InterestRate: 6.0,
			TermYears:    30,
		},
	}

	m := CalculateMetrics(p)

	assert.Equal(t, 750_000.0, m.LoanAmount)
	// 30-year fixed at 6% is $599.55/month per $100k borrowed
	assert.InDelta(t, 4496.63, m.MonthlyDebtService, 0.5)
	assert.InDelta(t, 60000-4496.63*12, m.AnnualCashFlow, 10)
	assert.InDelta(t, m.AnnualCashFlow/250_000*100, m.CashOnCash, 0.01)
	assert.InDelta(t, 60000/(m.MonthlyDebtService*12), m.DSCR, 0.01)
}

func TestCalculateMetrics_FinancingDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		financing models.Financing
	}{
		{"zero rate", models.Financing{DownPayment: 200_000, InterestRate: 0, TermYears: 30}},
		{"zero term", models.Financing{DownPayment: 200_000, InterestRate: 6, TermYears: 0}},
		{"down payment covers price", models.Financing{DownPayment: 1_000_000, InterestRate: 6, TermYears: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Property{
				CurrentPrice: 1_000_000,
				MonthlyRent:  5000,
				Financing:    &tt.financing,
			}
			m := CalculateMetrics(p)
			assert.Equal(t, 0.0, m.MonthlyDebtService)
			assert.Equal(t, 0.0, m.DSCR)
		})
	}
}

func TestCalculateMetrics_NoFinancing(t *testing.T) {
	p := &models.Property{CurrentPrice: 800_000, MonthlyRent: 3000}
	m := CalculateMetrics(p)

	assert.Equal(t, 0.0, m.LoanAmount)
	assert.Equal(t, 0.0, m.MonthlyDebtService)
	assert.Equal(t, 0.0, m.CashOnCash)
}

func TestCapRate_MonotonicInRent(t *testing.T) {
	prev := -1.0
	for rent := 1000.0; rent <= 10000; rent += 500 {
		p := &models.Property{CurrentPrice: 1_000_000, MonthlyRent: rent}
		m := CalculateMetrics(p)
		assert.GreaterOrEqual(t, m.CapRate, prev, "cap rate must not decrease as rent rises")
		prev = m.CapRate
	}
}

func TestCapRate_MonotonicDecreasingInPrice(t *testing.T) {
	prev := 1000.0
	for price := 500_000.0; price <= 3_000_000; price += 250_000 {
		p := &models.Property{CurrentPrice: price, MonthlyRent: 5000}
		m := CalculateMetrics(p)
		assert.LessOrEqual(t, m.CapRate, prev, "cap rate must not increase as price rises")
		prev = m.CapRate
	}
}

func TestPricePerSQFT_Exact(t *testing.T) {
	for _, tc := range []struct {
		price float64
		sqft  float64
	}{
		{1_650_000, 1250},
		{999_999, 777},
		{450_000, 520},
	} {
		p := &models.Property{CurrentPrice: tc.price, SQFT: floatPtr(tc.sqft)}
		m := CalculateMetrics(p)
		assert.Equal(t, round2(tc.price/tc.sqft), m.PricePerSQFT)
	}
}
