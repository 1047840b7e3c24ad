package engine

import (
	"math"

	"brownstone/server/internal/models"
)

// round2 rounds to 2 decimals; percentage outputs are stored pre-scaled so
// downstream consumers compare against reference values exactly.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// safeRatio divides a by b, resolving any non-positive denominator to 0.
// Ratios are total functions here; structurally invalid records are rejected
// at the boundary instead (see Enricher.validate).
func safeRatio(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}

// CalculateMetrics derives the investment metrics for a listing. Pure
// function; missing optional inputs degrade to zero, never to an error.
func CalculateMetrics(p *models.Property) models.Metrics {
	annualRent := p.MonthlyRent * 12
	expenses := p.MonthlyHOA*12 + p.AnnualTax + p.AnnualInsurance + p.AnnualUtilities + p.AnnualManagement
	noi := annualRent - expenses

	m := models.Metrics{
		AnnualRent:          annualRent,
		TotalAnnualExpenses: expenses,
		NetOperatingIncome:  noi,
		PricePerSQFT:        round2(safeRatio(p.CurrentPrice, p.Area())),
		CapRate:             round2(safeRatio(noi, p.CurrentPrice) * 100),
		GrossRentMultiplier: round1(safeRatio(p.CurrentPrice, annualRent)),
		RentToPriceRatio:    round2(safeRatio(annualRent, p.CurrentPrice) * 100),
		FeeRatio:            round2(safeRatio(p.MonthlyHOA*12, p.CurrentPrice) * 100),
	}

	if p.LastSalePrice > 0 {
		m.AppreciationSinceSale = round2((p.CurrentPrice - p.LastSalePrice) / p.LastSalePrice * 100)
	}

	if p.Financing != nil {
		f := p.Financing
		m.LoanAmount = p.CurrentPrice - f.DownPayment
		m.MonthlyDebtService = round2(monthlyDebtService(m.LoanAmount, f.InterestRate, f.TermYears))
		annualDebt := m.MonthlyDebtService * 12
		m.AnnualCashFlow = round2(noi - annualDebt)
		m.CashOnCash = round2(safeRatio(m.AnnualCashFlow, f.DownPayment) * 100)
		m.DSCR = round2(safeRatio(noi, annualDebt))
	}

	return m
}

// monthlyDebtService computes the fixed-rate annuity payment for a loan.
// annualRatePercent is e.g. 6.5 for 6.5%. Returns 0 when the loan amount,
// rate, or term is non-positive.
func monthlyDebtService(loanAmount, annualRatePercent float64, termYears int) float64 {
	if loanAmount <= 0 || annualRatePercent <= 0 || termYears <= 0 {
		return 0
	}
	monthlyRate := annualRatePercent / 100 / 12
	periods := float64(termYears * 12)
	factor := math.Pow(1+monthlyRate, periods)
	return loanAmount * monthlyRate * factor / (factor - 1)
}
