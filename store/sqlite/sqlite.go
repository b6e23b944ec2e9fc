/*
Package sqlite provides the SQLite-backed store.

PURPOSE:
  Implements ledger.Store, payrun.Store and payrun.ReferenceStore on
  SQLite. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

APPEND-ONLY ENFORCEMENT:
  The movements, credits and repayments tables are append-only: no
  UPDATE or DELETE statements exist for them. The only mutation in the
  whole schema is the settlement stamp (payment_run_id / is_paid) and
  the payment status transition.

ATOMIC SETTLEMENT:
  ApplyRun wraps the entire confirmed batch - payments, repayments and
  settlement stamps - in a single SQL transaction. Either the whole run
  lands or none of it does. Settlement stamps use a
  "WHERE payment_run_id = ''" guard so an already-settled record is
  skipped, never restamped.

WAL MODE:
  The database is opened with WAL for better read concurrency and crash
  recovery.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

USAGE:
  st, err := sqlite.New("./data/ambanifony.db")   // or ":memory:"
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - ledger/store.go, payrun/store.go: interface definitions
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payrun"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Interface checks
var (
	_ ledger.Store          = (*Store)(nil)
	_ payrun.Store          = (*Store)(nil)
	_ payrun.ReferenceStore = (*Store)(nil)
)

// New creates a new SQLite store at the given path. Use ":memory:" for
// an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers anyway; a single pooled connection also
	// keeps ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Stock movements (append-only ledger)
	CREATE TABLE IF NOT EXISTS movements (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		site_id TEXT NOT NULL,
		seaweed_type_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		kg TEXT NOT NULL,
		units TEXT NOT NULL,
		designation TEXT,
		related_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_movements_site_type
		ON movements(site_id, seaweed_type_id);
	CREATE INDEX IF NOT EXISTS idx_movements_date
		ON movements(date);

	-- Reference data
	CREATE TABLE IF NOT EXISTS farmers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		site_id TEXT
	);
	CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS seaweed_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		wet_price TEXT NOT NULL,
		dry_price TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS service_providers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		site_id TEXT,
		gross_wage TEXT NOT NULL
	);

	-- Payment run sources (settled via payment_run_id / is_paid)
	CREATE TABLE IF NOT EXISTS harvest_cycles (
		id TEXT PRIMARY KEY,
		module_id TEXT,
		farmer_id TEXT NOT NULL,
		seaweed_type_id TEXT NOT NULL,
		harvest_date TEXT NOT NULL,
		harvested_kg TEXT NOT NULL,
		cuttings_kg TEXT NOT NULL,
		payment_run_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_cycles_farmer
		ON harvest_cycles(farmer_id, payment_run_id);

	CREATE TABLE IF NOT EXISTS deliveries (
		id TEXT PRIMARY KEY,
		slip_no TEXT,
		farmer_id TEXT NOT NULL,
		site_id TEXT,
		seaweed_type_id TEXT NOT NULL,
		date TEXT NOT NULL,
		weight_kg TEXT NOT NULL,
		bags INTEGER NOT NULL DEFAULT 0,
		payment_run_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_deliveries_farmer
		ON deliveries(farmer_id, payment_run_id);

	CREATE TABLE IF NOT EXISTS cutting_operations (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		site_id TEXT,
		provider_id TEXT NOT NULL,
		seaweed_type_id TEXT,
		lines_cut INTEGER NOT NULL DEFAULT 0,
		unit_price TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		is_paid INTEGER NOT NULL DEFAULT 0,
		payment_run_id TEXT NOT NULL DEFAULT ''
	);

	-- Farmer credits and repayments (append-only)
	CREATE TABLE IF NOT EXISTS credits (
		id TEXT PRIMARY KEY,
		farmer_id TEXT NOT NULL,
		site_id TEXT,
		date TEXT NOT NULL,
		credit_type_id TEXT,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		notes TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_credits_farmer ON credits(farmer_id);

	CREATE TABLE IF NOT EXISTS repayments (
		id TEXT PRIMARY KEY,
		farmer_id TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT NOT NULL,
		notes TEXT,
		payment_run_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_repayments_farmer ON repayments(farmer_id);

	-- Confirmed payments
	CREATE TABLE IF NOT EXISTS monthly_payments (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		period TEXT,
		recipient_type TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT NOT NULL,
		notes TEXT,
		payment_run_id TEXT NOT NULL,
		status TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_payments_run ON monthly_payments(payment_run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// MOVEMENT LEDGER (ledger.Store)
// =============================================================================

func (s *Store) AppendMovement(ctx context.Context, m ledger.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertMovement(ctx, s.db, m)
}

func (s *Store) AppendMovements(ctx context.Context, ms []ledger.Movement) error {
	if len(ms) == 0 {
		return ledger.ErrEmptyBatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, m := range ms {
		if err := s.insertMovement(ctx, tx, m); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertMovement(ctx context.Context, db execer, m ledger.Movement) error {
	if err := ledger.ValidateMovement(m); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO movements (id, date, site_id, seaweed_type_id, kind, kg, units, designation, related_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Date.String(), m.SiteID, m.SeaweedTypeID, string(m.Kind),
		m.Quantity.Kg.String(), m.Quantity.Units.String(), m.Designation, m.RelatedID)
	if err != nil && isUniqueViolation(err) {
		return ledger.ErrDuplicateID
	}
	return err
}

func (s *Store) Movements(ctx context.Context, f ledger.Filter) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, site_id, seaweed_type_id, kind, kg, units, designation, related_id
		FROM movements`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Movement
	for rows.Next() {
		var m ledger.Movement
		var date, kg, units, kind string
		if err := rows.Scan(&m.ID, &date, &m.SiteID, &m.SeaweedTypeID, &kind,
			&kg, &units, &m.Designation, &m.RelatedID); err != nil {
			return nil, err
		}
		m.Date = ledger.ParseDate(date)
		m.Kind = ledger.Kind(kind)
		m.Quantity = ledger.Quantity{Kg: parseDecimal(kg), Units: parseDecimal(units)}
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out, rows.Err()
}

// =============================================================================
// PAYMENT RUNS (payrun.Store)
// =============================================================================

func (s *Store) Snapshot(ctx context.Context) (payrun.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap payrun.Snapshot
	var err error
	if snap.Farmers, err = s.loadFarmers(ctx); err != nil {
		return snap, err
	}
	if snap.Sites, err = s.loadSites(ctx); err != nil {
		return snap, err
	}
	if snap.SeaweedTypes, err = s.loadSeaweedTypes(ctx); err != nil {
		return snap, err
	}
	if snap.Providers, err = s.loadProviders(ctx); err != nil {
		return snap, err
	}
	if snap.Employees, err = s.loadEmployees(ctx); err != nil {
		return snap, err
	}
	if snap.Cycles, err = s.loadCycles(ctx); err != nil {
		return snap, err
	}
	if snap.Deliveries, err = s.loadDeliveries(ctx); err != nil {
		return snap, err
	}
	if snap.Operations, err = s.loadOperations(ctx); err != nil {
		return snap, err
	}
	if snap.Credits, err = s.loadCredits(ctx); err != nil {
		return snap, err
	}
	if snap.Repayments, err = s.loadRepayments(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

// ApplyRun persists the confirmed batch in one transaction.
func (s *Store) ApplyRun(ctx context.Context, res payrun.RunResult) error {
	if len(res.Payments) == 0 && len(res.Repayments) == 0 &&
		len(res.SettledCycleIDs) == 0 && len(res.SettledDeliveryIDs) == 0 &&
		len(res.SettledOperationIDs) == 0 {
		return payrun.ErrEmptyRun
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range res.Payments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO monthly_payments (id, date, period, recipient_type, recipient_id, amount, method, notes, payment_run_id, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Date.String(), p.Period, string(p.RecipientType), p.RecipientID,
			p.Amount.String(), p.Method, p.Notes, p.PaymentRunID, string(p.Status)); err != nil {
			return err
		}
	}

	for _, r := range res.Repayments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO repayments (id, farmer_id, date, amount, method, notes, payment_run_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.FarmerID, r.Date.String(), r.Amount.String(), string(r.Method), r.Notes, r.PaymentRunID); err != nil {
			return err
		}
	}

	// Settlement stamps: the WHERE guard skips already-settled records.
	for _, id := range res.SettledCycleIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE harvest_cycles SET payment_run_id = ? WHERE id = ? AND payment_run_id = ''`,
			res.RunID, id); err != nil {
			return err
		}
	}
	for _, id := range res.SettledDeliveryIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE deliveries SET payment_run_id = ? WHERE id = ? AND payment_run_id = ''`,
			res.RunID, id); err != nil {
			return err
		}
	}
	for _, id := range res.SettledOperationIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE cutting_operations SET is_paid = 1, payment_run_id = ? WHERE id = ? AND is_paid = 0`,
			res.RunID, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) Payments(ctx context.Context) ([]payrun.MonthlyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, period, recipient_type, recipient_id, amount, method, notes, payment_run_id, status
		FROM monthly_payments ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payrun.MonthlyPayment
	for rows.Next() {
		var p payrun.MonthlyPayment
		var date, rtype, amount, status string
		if err := rows.Scan(&p.ID, &date, &p.Period, &rtype, &p.RecipientID,
			&amount, &p.Method, &p.Notes, &p.PaymentRunID, &status); err != nil {
			return nil, err
		}
		p.Date = ledger.ParseDate(date)
		p.RecipientType = payrun.RecipientType(rtype)
		p.Amount = parseDecimal(amount)
		p.Status = payrun.PaymentStatus(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID string, status payrun.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE monthly_payments SET status = ? WHERE id = ?`, string(status), paymentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return payrun.ErrPaymentNotFound
	}
	return nil
}

// =============================================================================
// REFERENCE DATA (payrun.ReferenceStore)
// =============================================================================

func (s *Store) SaveFarmer(ctx context.Context, f payrun.Farmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO farmers (id, name, site_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, site_id = excluded.site_id`,
		f.ID, f.Name, f.SiteID)
	return err
}

func (s *Store) SaveSite(ctx context.Context, site payrun.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		site.ID, site.Name)
	return err
}

func (s *Store) SaveSeaweedType(ctx context.Context, st payrun.SeaweedType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seaweed_types (id, name, wet_price, dry_price) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			wet_price = excluded.wet_price, dry_price = excluded.dry_price`,
		st.ID, st.Name, st.WetPrice.String(), st.DryPrice.String())
	return err
}

func (s *Store) SaveProvider(ctx context.Context, p payrun.ServiceProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service_providers (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		p.ID, p.Name)
	return err
}

func (s *Store) SaveEmployee(ctx context.Context, e payrun.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, site_id, gross_wage) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			site_id = excluded.site_id, gross_wage = excluded.gross_wage`,
		e.ID, e.Name, e.SiteID, e.GrossWage.String())
	return err
}

func (s *Store) SaveCycle(ctx context.Context, c payrun.HarvestCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO harvest_cycles (id, module_id, farmer_id, seaweed_type_id, harvest_date, harvested_kg, cuttings_kg, payment_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ModuleID, c.FarmerID, c.SeaweedTypeID, c.HarvestDate.String(),
		c.HarvestedKg.String(), c.CuttingsKg.String(), c.PaymentRunID)
	return err
}

func (s *Store) SaveDelivery(ctx context.Context, d payrun.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, slip_no, farmer_id, site_id, seaweed_type_id, date, weight_kg, bags, payment_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SlipNo, d.FarmerID, d.SiteID, d.SeaweedTypeID, d.Date.String(),
		d.WeightKg.String(), d.Bags, d.PaymentRunID)
	return err
}

func (s *Store) SaveOperation(ctx context.Context, op payrun.CuttingOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	paid := 0
	if op.Paid {
		paid = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cutting_operations (id, date, site_id, provider_id, seaweed_type_id, lines_cut, unit_price, total_amount, is_paid, payment_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.Date.String(), op.SiteID, op.ProviderID, op.SeaweedTypeID,
		op.LinesCut, op.UnitPrice.String(), op.TotalAmount.String(), paid, op.PaymentRunID)
	return err
}

func (s *Store) SaveCredit(ctx context.Context, c credit.Credit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credits (id, farmer_id, site_id, date, credit_type_id, quantity, unit_price, total_amount, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FarmerID, c.SiteID, c.Date.String(), c.CreditTypeID,
		c.Quantity.String(), c.UnitPrice.String(), c.TotalAmount.String(), c.Notes)
	return err
}

func (s *Store) SaveRepayment(ctx context.Context, r credit.Repayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repayments (id, farmer_id, date, amount, method, notes, payment_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.FarmerID, r.Date.String(), r.Amount.String(), string(r.Method), r.Notes, r.PaymentRunID)
	return err
}

// =============================================================================
// ROW LOADERS
// =============================================================================

func (s *Store) loadFarmers(ctx context.Context) ([]payrun.Farmer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, site_id FROM farmers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.Farmer
	for rows.Next() {
		var f payrun.Farmer
		if err := rows.Scan(&f.ID, &f.Name, &f.SiteID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) loadSites(ctx context.Context) ([]payrun.Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM sites`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.Site
	for rows.Next() {
		var site payrun.Site
		if err := rows.Scan(&site.ID, &site.Name); err != nil {
			return nil, err
		}
		out = append(out, site)
	}
	return out, rows.Err()
}

func (s *Store) loadSeaweedTypes(ctx context.Context) ([]payrun.SeaweedType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, wet_price, dry_price FROM seaweed_types`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.SeaweedType
	for rows.Next() {
		var st payrun.SeaweedType
		var wet, dry string
		if err := rows.Scan(&st.ID, &st.Name, &wet, &dry); err != nil {
			return nil, err
		}
		st.WetPrice = parseDecimal(wet)
		st.DryPrice = parseDecimal(dry)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) loadProviders(ctx context.Context) ([]payrun.ServiceProvider, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM service_providers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.ServiceProvider
	for rows.Next() {
		var p payrun.ServiceProvider
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) loadEmployees(ctx context.Context) ([]payrun.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, site_id, gross_wage FROM employees`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.Employee
	for rows.Next() {
		var e payrun.Employee
		var wage string
		if err := rows.Scan(&e.ID, &e.Name, &e.SiteID, &wage); err != nil {
			return nil, err
		}
		e.GrossWage = parseDecimal(wage)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) loadCycles(ctx context.Context) ([]payrun.HarvestCycle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, module_id, farmer_id, seaweed_type_id, harvest_date, harvested_kg, cuttings_kg, payment_run_id
		FROM harvest_cycles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.HarvestCycle
	for rows.Next() {
		var c payrun.HarvestCycle
		var date, harvested, cuttings string
		if err := rows.Scan(&c.ID, &c.ModuleID, &c.FarmerID, &c.SeaweedTypeID,
			&date, &harvested, &cuttings, &c.PaymentRunID); err != nil {
			return nil, err
		}
		c.HarvestDate = ledger.ParseDate(date)
		c.HarvestedKg = parseDecimal(harvested)
		c.CuttingsKg = parseDecimal(cuttings)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadDeliveries(ctx context.Context) ([]payrun.Delivery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slip_no, farmer_id, site_id, seaweed_type_id, date, weight_kg, bags, payment_run_id
		FROM deliveries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.Delivery
	for rows.Next() {
		var d payrun.Delivery
		var date, weight string
		if err := rows.Scan(&d.ID, &d.SlipNo, &d.FarmerID, &d.SiteID, &d.SeaweedTypeID,
			&date, &weight, &d.Bags, &d.PaymentRunID); err != nil {
			return nil, err
		}
		d.Date = ledger.ParseDate(date)
		d.WeightKg = parseDecimal(weight)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) loadOperations(ctx context.Context) ([]payrun.CuttingOperation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, site_id, provider_id, seaweed_type_id, lines_cut, unit_price, total_amount, is_paid, payment_run_id
		FROM cutting_operations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []payrun.CuttingOperation
	for rows.Next() {
		var op payrun.CuttingOperation
		var date, unitPrice, total string
		var paid int
		if err := rows.Scan(&op.ID, &date, &op.SiteID, &op.ProviderID, &op.SeaweedTypeID,
			&op.LinesCut, &unitPrice, &total, &paid, &op.PaymentRunID); err != nil {
			return nil, err
		}
		op.Date = ledger.ParseDate(date)
		op.UnitPrice = parseDecimal(unitPrice)
		op.TotalAmount = parseDecimal(total)
		op.Paid = paid != 0
		out = append(out, op)
	}
	return out, rows.Err()
}

func (s *Store) loadCredits(ctx context.Context) ([]credit.Credit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, farmer_id, site_id, date, credit_type_id, quantity, unit_price, total_amount, notes
		FROM credits`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []credit.Credit
	for rows.Next() {
		var c credit.Credit
		var date, quantity, unitPrice, total string
		if err := rows.Scan(&c.ID, &c.FarmerID, &c.SiteID, &date, &c.CreditTypeID,
			&quantity, &unitPrice, &total, &c.Notes); err != nil {
			return nil, err
		}
		c.Date = ledger.ParseDate(date)
		c.Quantity = parseDecimal(quantity)
		c.UnitPrice = parseDecimal(unitPrice)
		c.TotalAmount = parseDecimal(total)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadRepayments(ctx context.Context) ([]credit.Repayment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, farmer_id, date, amount, method, notes, payment_run_id
		FROM repayments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []credit.Repayment
	for rows.Next() {
		var r credit.Repayment
		var date, amount, method string
		if err := rows.Scan(&r.ID, &r.FarmerID, &date, &amount, &method, &r.Notes, &r.PaymentRunID); err != nil {
			return nil, err
		}
		r.Date = ledger.ParseDate(date)
		r.Amount = parseDecimal(amount)
		r.Method = credit.RepaymentMethod(method)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// parseDecimal tolerates malformed stored values by returning zero; the
// engine treats bad numerics as zero contributions rather than failing.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
