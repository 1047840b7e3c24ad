package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"brownstone/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

const propertyColumns = `
        id, bbl, address, unit_number, neighborhood, borough, zip_code,
        current_price, original_price, price_history, days_on_market,
        bedrooms, bathrooms, sqft, monthly_hoa, estimated_monthly_rent,
        annual_tax, annual_insurance, annual_utilities, annual_management,
        has_elevator, has_doorman, has_gym, has_parking, has_roof_deck, pet_friendly,
        exposure, floor_level, year_built, subway_minutes,
        last_sale_date, last_sale_price,
        down_payment, interest_rate, term_years,
        latitude, longitude, listing_url, status,
        COALESCE(scraped_at, CURRENT_TIMESTAMP) as scraped_at,
        COALESCE(created_at, CURRENT_TIMESTAMP) as created_at`

// GetAllProperties returns listings, optionally filtered by neighborhood
// and/or status (empty string means no filter).
func (d *Database) GetAllProperties(neighborhood, status string) ([]models.Property, error) {
	query := `
        SELECT ` + propertyColumns + `
        FROM properties
        WHERE (? = '' OR neighborhood = ?)
        AND (? = '' OR LOWER(status) = LOWER(?))
    `
	rows, err := d.db.Query(query, neighborhood, neighborhood, status, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// GetPropertyByID returns a single listing, or nil when not found.
func (d *Database) GetPropertyByID(id int64) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = ?`
	rows, err := d.db.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanProperty(rows)
}

func scanProperty(rows *sql.Rows) (*models.Property, error) {
	var p models.Property
	var bbl, address, unitNumber, neighborhood, borough, zipCode sql.NullString
	var exposure, floorLevel, listingURL, status sql.NullString
	var priceHistory, lastSaleDate, scrapedAt, createdAt sql.NullString
	var sqft, bathrooms, lastSalePrice sql.NullFloat64
	var monthlyHOA, monthlyRent, tax, insurance, utilities, management sql.NullFloat64
	var downPayment, interestRate sql.NullFloat64
	var latitude, longitude sql.NullFloat64
	var yearBuilt, subwayMinutes, termYears sql.NullInt64
	var hasElevator, hasDoorman, hasGym, hasParking, hasRoofDeck, petFriendly sql.NullBool

	err := rows.Scan(
		&p.ID, &bbl, &address, &unitNumber, &neighborhood, &borough, &zipCode,
		&p.CurrentPrice, &p.OriginalPrice, &priceHistory, &p.DaysOnMarket,
		&p.Bedrooms, &bathrooms, &sqft, &monthlyHOA, &monthlyRent,
		&tax, &insurance, &utilities, &management,
		&hasElevator, &hasDoorman, &hasGym, &hasParking, &hasRoofDeck, &petFriendly,
		&exposure, &floorLevel, &yearBuilt, &subwayMinutes,
		&lastSaleDate, &lastSalePrice,
		&downPayment, &interestRate, &termYears,
		&latitude, &longitude, &listingURL, &status,
		&scrapedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.BBL = bbl.String
	p.Address = address.String
	p.UnitNumber = unitNumber.String
	p.Neighborhood = neighborhood.String
	p.Borough = borough.String
	p.ZipCode = zipCode.String
	p.Exposure = exposure.String
	p.FloorLevel = floorLevel.String
	p.ListingURL = listingURL.String
	p.Status = status.String
	p.Bathrooms = bathrooms.Float64
	p.MonthlyHOA = monthlyHOA.Float64
	p.MonthlyRent = monthlyRent.Float64
	p.AnnualTax = tax.Float64
	p.AnnualInsurance = insurance.Float64
	p.AnnualUtilities = utilities.Float64
	p.AnnualManagement = management.Float64
	p.LastSalePrice = lastSalePrice.Float64
	p.HasElevator = hasElevator.Bool
	p.HasDoorman = hasDoorman.Bool
	p.HasGym = hasGym.Bool
	p.HasParking = hasParking.Bool
	p.HasRoofDeck = hasRoofDeck.Bool
	p.PetFriendly = petFriendly.Bool

	if sqft.Valid && sqft.Float64 > 0 {
		v := sqft.Float64
		p.SQFT = &v
	}
	if yearBuilt.Valid {
		p.YearBuilt = int(yearBuilt.Int64)
	}
	if subwayMinutes.Valid {
		v := int(subwayMinutes.Int64)
		p.SubwayMinutes = &v
	}
	if latitude.Valid {
		v := latitude.Float64
		p.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		p.Longitude = &v
	}

	if downPayment.Valid && downPayment.Float64 > 0 {
		p.Financing = &models.Financing{
			DownPayment:  downPayment.Float64,
			InterestRate: interestRate.Float64,
			TermYears:    int(termYears.Int64),
		}
	}

	if priceHistory.Valid && priceHistory.String != "" {
		if err := json.Unmarshal([]byte(priceHistory.String), &p.PriceHistory); err != nil {
			// A malformed history column is a data-quality condition the
			// pipeline flags; it must not fail the read.
			p.PriceHistory = nil
		}
	}
	if lastSaleDate.Valid && lastSaleDate.String != "" {
		if t, err := time.Parse("2006-01-02", lastSaleDate.String); err == nil {
			p.LastSaleDate = &t
		}
	}
	if scrapedAt.Valid && scrapedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, scrapedAt.String); err == nil {
			p.ScrapedAt = t
		}
	}
	if createdAt.Valid && createdAt.String != "" {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			p.CreatedAt = t
		}
	}

	return &p, nil
}

// GetComparableSales returns closed sales matching any of the given scopes
// (parcel prefix, zip, neighborhood; empty strings are skipped) no older than
// maxAgeMonths. This is the one filter the engine asks of storage.
func (d *Database) GetComparableSales(parcelPrefix, zipCode, neighborhood string, maxAgeMonths int) ([]models.ComparableSale, error) {
	cutoff := time.Now().AddDate(0, -maxAgeMonths, 0).Format("2006-01-02")
	query := `
        SELECT id, bbl, address, unit_number, bedrooms, sqft, sale_date,
               sale_price, zip_code, neighborhood, borough, sale_type,
               prior_year_sale_price
        FROM comparable_sales
        WHERE sale_date >= ?
        AND (
            (? != '' AND substr(bbl, 1, 7) = ?)
            OR (? != '' AND zip_code = ?)
            OR (? != '' AND neighborhood = ?)
        )
        ORDER BY sale_date DESC
    `
	rows, err := d.db.Query(query, cutoff,
		parcelPrefix, parcelPrefix,
		zipCode, zipCode,
		neighborhood, neighborhood,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSales(rows)
}

// GetAllComparableSales returns the full pool no older than maxAgeMonths,
// used to build the in-memory sale index at startup.
func (d *Database) GetAllComparableSales(maxAgeMonths int) ([]models.ComparableSale, error) {
	cutoff := time.Now().AddDate(0, -maxAgeMonths, 0).Format("2006-01-02")
	rows, err := d.db.Query(`
        SELECT id, bbl, address, unit_number, bedrooms, sqft, sale_date,
               sale_price, zip_code, neighborhood, borough, sale_type,
               prior_year_sale_price
        FROM comparable_sales
        WHERE sale_date >= ?
        ORDER BY sale_date DESC
    `, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSales(rows)
}

func scanSales(rows *sql.Rows) ([]models.ComparableSale, error) {
	var sales []models.ComparableSale
	for rows.Next() {
		var s models.ComparableSale
		var bbl, address, unitNumber, zipCode, neighborhood, borough, saleType sql.NullString
		var saleDate sql.NullString
		var bedrooms sql.NullInt64
		var sqft, priorPrice sql.NullFloat64

		err := rows.Scan(
			&s.ID, &bbl, &address, &unitNumber, &bedrooms, &sqft, &saleDate,
			&s.SalePrice, &zipCode, &neighborhood, &borough, &saleType,
			&priorPrice,
		)
		if err != nil {
			return nil, err
		}

		s.BBL = bbl.String
		s.Address = address.String
		s.UnitNumber = unitNumber.String
		s.ZipCode = zipCode.String
		s.Neighborhood = neighborhood.String
		s.Borough = borough.String
		s.SaleType = saleType.String
		s.SQFT = sqft.Float64
		s.PriorYearSalePrice = priorPrice.Float64

		if bedrooms.Valid {
			v := int(bedrooms.Int64)
			s.Bedrooms = &v
		}
		if saleDate.Valid && saleDate.String != "" {
			if t, err := time.Parse("2006-01-02", saleDate.String); err == nil {
				s.SaleDate = t
			}
		}

		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// GetNeighborhoods returns all neighborhood aggregate records.
func (d *Database) GetNeighborhoods() ([]models.Neighborhood, error) {
	rows, err := d.db.Query(`
        SELECT neighborhood_name, borough, median_price, median_rent,
               median_price_per_sqft, avg_days_on_market
        FROM neighborhoods
        ORDER BY neighborhood_name
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighborhoods: %w", err)
	}
	defer rows.Close()

	var hoods []models.Neighborhood
	for rows.Next() {
		var n models.Neighborhood
		if err := rows.Scan(&n.Name, &n.Borough, &n.MedianPrice, &n.MedianRent,
			&n.MedianPricePerSQFT, &n.AvgDaysOnMarket); err != nil {
			return nil, fmt.Errorf("failed to scan neighborhood: %w", err)
		}
		hoods = append(hoods, n)
	}
	return hoods, rows.Err()
}
