package database

import "fmt"

func (d *Database) RunMigrations() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bbl TEXT,
			address TEXT,
			unit_number TEXT,
			neighborhood TEXT,
			borough TEXT,
			zip_code TEXT,
			current_price REAL NOT NULL,
			original_price REAL,
			price_history TEXT,
			days_on_market INTEGER DEFAULT 0,
			bedrooms INTEGER DEFAULT 0,
			bathrooms REAL DEFAULT 0,
			sqft REAL,
			monthly_hoa REAL DEFAULT 0,
			estimated_monthly_rent REAL DEFAULT 0,
			annual_tax REAL DEFAULT 0,
			annual_insurance REAL DEFAULT 0,
			annual_utilities REAL DEFAULT 0,
			annual_management REAL DEFAULT 0,
			has_elevator BOOLEAN DEFAULT 0,
			has_doorman BOOLEAN DEFAULT 0,
			has_gym BOOLEAN DEFAULT 0,
			has_parking BOOLEAN DEFAULT 0,
			has_roof_deck BOOLEAN DEFAULT 0,
			pet_friendly BOOLEAN DEFAULT 0,
			exposure TEXT,
			floor_level TEXT,
			year_built INTEGER,
			subway_minutes INTEGER,
			last_sale_date TEXT,
			last_sale_price REAL,
			down_payment REAL,
			interest_rate REAL,
			term_years INTEGER,
			latitude REAL,
			longitude REAL,
			listing_url TEXT,
			status TEXT DEFAULT 'Active',
			scraped_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS comparable_sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bbl TEXT,
			address TEXT,
			unit_number TEXT,
			bedrooms INTEGER,
			sqft REAL,
			sale_date TEXT NOT NULL,
			sale_price REAL NOT NULL,
			zip_code TEXT,
			neighborhood TEXT,
			borough TEXT,
			sale_type TEXT DEFAULT 'Arms Length',
			prior_year_sale_price REAL
		);`,
		`CREATE TABLE IF NOT EXISTS neighborhoods (
			neighborhood_name TEXT PRIMARY KEY,
			borough TEXT,
			median_price REAL,
			median_rent REAL,
			median_price_per_sqft REAL,
			avg_days_on_market REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_properties_neighborhood ON properties(neighborhood);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_bbl ON comparable_sales(bbl);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_zip ON comparable_sales(zip_code);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_neighborhood ON comparable_sales(neighborhood);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_date ON comparable_sales(sale_date);`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
