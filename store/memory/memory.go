// Package memory provides an in-memory store implementation for tests
// and development. It implements ledger.Store, payrun.Store and
// payrun.ReferenceStore with the same semantics as the SQLite store,
// including all-or-nothing settlement (the batch is validated before
// any state is touched).
package memory

import (
	"context"
	"sync"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payrun"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu sync.RWMutex

	movements   []ledger.Movement
	movementIDs map[string]bool

	farmers      map[string]payrun.Farmer
	sites        map[string]payrun.Site
	seaweedTypes map[string]payrun.SeaweedType
	providers    map[string]payrun.ServiceProvider
	employees    map[string]payrun.Employee

	cycles     map[string]payrun.HarvestCycle
	deliveries map[string]payrun.Delivery
	operations map[string]payrun.CuttingOperation

	credits    []credit.Credit
	repayments []credit.Repayment

	payments []payrun.MonthlyPayment
}

func New() *Store {
	return &Store{
		movementIDs:  make(map[string]bool),
		farmers:      make(map[string]payrun.Farmer),
		sites:        make(map[string]payrun.Site),
		seaweedTypes: make(map[string]payrun.SeaweedType),
		providers:    make(map[string]payrun.ServiceProvider),
		employees:    make(map[string]payrun.Employee),
		cycles:       make(map[string]payrun.HarvestCycle),
		deliveries:   make(map[string]payrun.Delivery),
		operations:   make(map[string]payrun.CuttingOperation),
	}
}

// Interface checks
var (
	_ ledger.Store          = (*Store)(nil)
	_ payrun.Store          = (*Store)(nil)
	_ payrun.ReferenceStore = (*Store)(nil)
)

// =============================================================================
// MOVEMENT LEDGER (ledger.Store)
// =============================================================================

func (s *Store) AppendMovement(_ context.Context, m ledger.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(m)
}

func (s *Store) AppendMovements(_ context.Context, ms []ledger.Movement) error {
	if len(ms) == 0 {
		return ledger.ErrEmptyBatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything, including
	// duplicates within the batch itself.
	seen := make(map[string]bool, len(ms))
	for _, m := range ms {
		if s.movementIDs[m.ID] || (m.ID != "" && seen[m.ID]) {
			return ledger.ErrDuplicateID
		}
		if err := ledger.ValidateMovement(m); err != nil {
			return err
		}
		seen[m.ID] = true
	}
	for _, m := range ms {
		if err := s.appendLocked(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) appendLocked(m ledger.Movement) error {
	if m.ID != "" && s.movementIDs[m.ID] {
		return ledger.ErrDuplicateID
	}
	if err := ledger.ValidateMovement(m); err != nil {
		return err
	}
	s.movements = append(s.movements, m)
	if m.ID != "" {
		s.movementIDs[m.ID] = true
	}
	return nil
}

func (s *Store) Movements(_ context.Context, f ledger.Filter) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ledger.Movement
	for _, m := range s.movements {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// =============================================================================
// PAYMENT RUNS (payrun.Store)
// =============================================================================

func (s *Store) Snapshot(_ context.Context) (payrun.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := payrun.Snapshot{
		Credits:    append([]credit.Credit(nil), s.credits...),
		Repayments: append([]credit.Repayment(nil), s.repayments...),
	}
	for _, f := range s.farmers {
		snap.Farmers = append(snap.Farmers, f)
	}
	for _, site := range s.sites {
		snap.Sites = append(snap.Sites, site)
	}
	for _, st := range s.seaweedTypes {
		snap.SeaweedTypes = append(snap.SeaweedTypes, st)
	}
	for _, p := range s.providers {
		snap.Providers = append(snap.Providers, p)
	}
	for _, e := range s.employees {
		snap.Employees = append(snap.Employees, e)
	}
	for _, c := range s.cycles {
		snap.Cycles = append(snap.Cycles, c)
	}
	for _, d := range s.deliveries {
		snap.Deliveries = append(snap.Deliveries, d)
	}
	for _, op := range s.operations {
		snap.Operations = append(snap.Operations, op)
	}
	return snap, nil
}

// ApplyRun settles a confirmed run. The batch is rejected up front when
// empty; once writing starts nothing can fail, so the effect is
// all-or-nothing.
func (s *Store) ApplyRun(_ context.Context, res payrun.RunResult) error {
	if len(res.Payments) == 0 && len(res.Repayments) == 0 &&
		len(res.SettledCycleIDs) == 0 && len(res.SettledDeliveryIDs) == 0 &&
		len(res.SettledOperationIDs) == 0 {
		return payrun.ErrEmptyRun
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, res.Payments...)
	s.repayments = append(s.repayments, res.Repayments...)

	// Stamp only still-unsettled records; already-settled ones are
	// skipped rather than restamped.
	for _, id := range res.SettledCycleIDs {
		if c, ok := s.cycles[id]; ok && c.PaymentRunID == "" {
			c.PaymentRunID = res.RunID
			s.cycles[id] = c
		}
	}
	for _, id := range res.SettledDeliveryIDs {
		if d, ok := s.deliveries[id]; ok && d.PaymentRunID == "" {
			d.PaymentRunID = res.RunID
			s.deliveries[id] = d
		}
	}
	for _, id := range res.SettledOperationIDs {
		if op, ok := s.operations[id]; ok && !op.Paid {
			op.Paid = true
			op.PaymentRunID = res.RunID
			s.operations[id] = op
		}
	}
	return nil
}

func (s *Store) Payments(_ context.Context) ([]payrun.MonthlyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]payrun.MonthlyPayment(nil), s.payments...), nil
}

func (s *Store) UpdatePaymentStatus(_ context.Context, paymentID string, status payrun.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].ID == paymentID {
			s.payments[i].Status = status
			return nil
		}
	}
	return payrun.ErrPaymentNotFound
}

// =============================================================================
// REFERENCE DATA (payrun.ReferenceStore)
// =============================================================================

func (s *Store) SaveFarmer(_ context.Context, f payrun.Farmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.farmers[f.ID] = f
	return nil
}

func (s *Store) SaveSite(_ context.Context, site payrun.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites[site.ID] = site
	return nil
}

func (s *Store) SaveSeaweedType(_ context.Context, st payrun.SeaweedType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seaweedTypes[st.ID] = st
	return nil
}

func (s *Store) SaveProvider(_ context.Context, p payrun.ServiceProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.ID] = p
	return nil
}

func (s *Store) SaveEmployee(_ context.Context, e payrun.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
	return nil
}

func (s *Store) SaveCycle(_ context.Context, c payrun.HarvestCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles[c.ID] = c
	return nil
}

func (s *Store) SaveDelivery(_ context.Context, d payrun.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries[d.ID] = d
	return nil
}

func (s *Store) SaveOperation(_ context.Context, op payrun.CuttingOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations[op.ID] = op
	return nil
}

func (s *Store) SaveCredit(_ context.Context, c credit.Credit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits = append(s.credits, c)
	return nil
}

func (s *Store) SaveRepayment(_ context.Context, r credit.Repayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repayments = append(s.repayments, r)
	return nil
}
