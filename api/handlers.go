/*
handlers.go - HTTP API handlers for the aquaculture management system

PURPOSE:
  Exposes the stock ledger, credit, payroll and payment run engines via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Stock:
    GET    /api/stock/balance          Net stock position (filtered)
    GET    /api/stock/history          Chronological ledger view
    POST   /api/stock/movements        Append a movement
    POST   /api/stock/pressing         Record a pressing operation

  Credits:
    GET    /api/farmers/{id}/credit    Farmer credit balance
    POST   /api/credits                Record an advance
    POST   /api/repayments             Record a cash repayment

  Payroll:
    POST   /api/payroll/calculate      Gross-to-net breakdown

  Payment runs:
    POST   /api/payment-runs/preview   Build payee rows
    POST   /api/payment-runs/confirm   Settle the run atomically
    GET    /api/payments               List recorded payments
    PUT    /api/payments/{id}/status   Transition a payment's status

  Reference data: create/list for farmers, sites, seaweed types,
  providers, employees; create for cycles, deliveries, operations.

REQUEST FLOW:
  1. Decode JSON body
  2. Validate (go-playground/validator struct tags)
  3. Call domain logic (ledger, credit, payroll, payrun)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate movement ID, empty run)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/credit"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/ledger"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payroll"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/payrun"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the full persistence surface the API needs.
type Store interface {
	ledger.Store
	payrun.Store
	payrun.ReferenceStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Engine  *payrun.Engine
	Payroll *payroll.Registry
	Country string // default payroll country code

	validate *validator.Validate
}

// NewHandler creates a new handler with the given store. The payroll
// registry defaults to the built-in country set.
func NewHandler(store Store, country string) *Handler {
	reg := payroll.DefaultRegistry()
	return &Handler{
		Store:    store,
		Engine:   payrun.NewEngine(reg),
		Payroll:  reg,
		Country:  country,
		validate: validator.New(),
	}
}

// decodeValid decodes the request body into dst and runs validation.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// =============================================================================
// STOCK HANDLERS
// =============================================================================

func filterFromQuery(r *http.Request) ledger.Filter {
	f := ledger.Filter{
		SiteID:        r.URL.Query().Get("site_id"),
		SeaweedTypeID: r.URL.Query().Get("seaweed_type_id"),
		Category:      ledger.Category(r.URL.Query().Get("category")),
	}
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		tp := ledger.ParseDate(asOf)
		if !tp.IsZero() {
			f.AsOf = &tp
		}
	}
	return f
}

// GetStockBalance returns the net stock position for the filter in the
// query string. When a seaweed type is given the position is valued at
// that type's dry price.
func (h *Handler) GetStockBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := filterFromQuery(r)

	movements, err := h.Store.Movements(ctx, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load movements", err)
		return
	}
	bal := ledger.ComputeBalance(movements, f)

	value := 0.0
	if f.SeaweedTypeID != "" {
		snap, err := h.Store.Snapshot(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load reference data", err)
			return
		}
		pb := ledger.PriceBook{}
		for _, st := range snap.SeaweedTypes {
			pb[st.ID] = st.DryPrice
		}
		value = bal.ValueWith(pb, f.SeaweedTypeID).InexactFloat64()
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		Kg:         bal.Kg.InexactFloat64(),
		Units:      bal.Units.InexactFloat64(),
		TotalInKg:  bal.TotalIn.Kg.InexactFloat64(),
		TotalOutKg: bal.TotalOut.Kg.InexactFloat64(),
		Value:      value,
	})
}

// GetStockHistory returns the chronological ledger view with a running
// balance per row.
func (h *Handler) GetStockHistory(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)

	movements, err := h.Store.Movements(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load movements", err)
		return
	}

	rows := ledger.RunningHistory(movements, f)
	dtos := make([]HistoryRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = HistoryRowDTO{
			Movement:  toMovementDTO(row.Movement),
			InKg:      row.In.Kg.InexactFloat64(),
			OutKg:     row.Out.Kg.InexactFloat64(),
			InUnits:   row.In.Units.InexactFloat64(),
			OutUnits:  row.Out.Units.InexactFloat64(),
			BalanceKg: row.Balance.Kg.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMovement appends one stock movement.
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req CreateMovementRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	m := ledger.Movement{
		ID:            orNewID(req.ID, "mv"),
		Date:          ledger.ParseDate(req.Date),
		SiteID:        req.SiteID,
		SeaweedTypeID: req.SeaweedTypeID,
		Kind:          ledger.Kind(req.Kind),
		Quantity: ledger.Quantity{
			Kg:    ledger.DecimalFromFloat(req.Kg),
			Units: ledger.DecimalFromFloat(req.Units),
		},
		Designation: req.Designation,
		RelatedID:   req.RelatedID,
	}

	if err := h.Store.AppendMovement(r.Context(), m); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ledger.ErrDuplicateID):
			status = http.StatusConflict
		case errors.Is(err, ledger.ErrUnknownKind), errors.Is(err, ledger.ErrNegativeQuantity):
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to append movement", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMovementDTO(m))
}

// CreatePressing records a pressing operation as an atomic pair of
// movements: bulk consumed, pressed product produced. Both rows share a
// slip reference so the pair stays traceable.
func (h *Handler) CreatePressing(w http.ResponseWriter, r *http.Request) {
	var req PressingRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	slip := req.SlipNo
	if slip == "" {
		slip = "ps-" + uuid.NewString()
	}
	date := ledger.ParseDate(req.Date)

	pair := []ledger.Movement{
		{
			ID:            "mv-" + uuid.NewString(),
			Date:          date,
			SiteID:        req.SiteID,
			SeaweedTypeID: req.SeaweedTypeID,
			Kind:          ledger.KindPressingConsumption,
			Quantity: ledger.Quantity{
				Kg:    ledger.DecimalFromFloat(req.ConsumedKg),
				Units: ledger.DecimalFromFloat(req.ConsumedBags),
			},
			Designation: "Pressing " + slip,
			RelatedID:   slip,
		},
		{
			ID:            "mv-" + uuid.NewString(),
			Date:          date,
			SiteID:        req.SiteID,
			SeaweedTypeID: req.SeaweedTypeID,
			Kind:          ledger.KindPressingIn,
			Quantity: ledger.Quantity{
				Kg:    ledger.DecimalFromFloat(req.ProducedKg),
				Units: ledger.DecimalFromFloat(req.ProducedBales),
			},
			Designation: "Pressing " + slip,
			RelatedID:   slip,
		},
	}

	if err := h.Store.AppendMovements(r.Context(), pair); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record pressing", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: slip})
}

// =============================================================================
// CREDIT HANDLERS
// =============================================================================

// GetFarmerCredit returns a farmer's credit balance.
func (h *Handler) GetFarmerCredit(w http.ResponseWriter, r *http.Request) {
	farmerID := chi.URLParam(r, "id")

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load credit records", err)
		return
	}

	bal := credit.Balance(farmerID, snap.Credits, snap.Repayments)
	out := credit.OutstandingOrZero(farmerID, snap.Credits, snap.Repayments)
	writeJSON(w, http.StatusOK, CreditBalanceDTO{
		FarmerID:    farmerID,
		Balance:     bal.InexactFloat64(),
		Outstanding: out.InexactFloat64(),
	})
}

// CreateCredit records an advance to a farmer.
func (h *Handler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	var req CreateCreditRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	c := req.toCredit(orNewID(req.ID, "cr"))
	if err := h.Store.SaveCredit(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save credit", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: c.ID})
}

// CreateRepayment records a cash repayment.
func (h *Handler) CreateRepayment(w http.ResponseWriter, r *http.Request) {
	var req CreateRepaymentRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	rp := credit.Repayment{
		ID:       orNewID(req.ID, "rp"),
		FarmerID: req.FarmerID,
		Date:     ledger.ParseDate(req.Date),
		Amount:   ledger.DecimalFromFloat(req.Amount),
		Method:   credit.MethodCash,
		Notes:    req.Notes,
	}
	if err := h.Store.SaveRepayment(r.Context(), rp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save repayment", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: rp.ID})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// CalculatePayroll returns the gross-to-net breakdown for one employee.
func (h *Handler) CalculatePayroll(w http.ResponseWriter, r *http.Request) {
	var req PayrollRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	country := req.Country
	if country == "" {
		country = h.Country
	}
	cfg := h.Payroll.ConfigFor(country)

	res := payroll.Calculate(
		ledger.DecimalFromFloat(req.BaseSalary),
		ledger.DecimalFromFloat(req.Bonuses),
		ledger.DecimalFromFloat(req.Overtime),
		ledger.DecimalFromFloat(req.OtherDeductions),
		cfg,
		payroll.Options{AppliedDeductions: req.AppliedDeductions},
	)
	writeJSON(w, http.StatusOK, toPayrollResultDTO(res))
}

// =============================================================================
// PAYMENT RUN HANDLERS
// =============================================================================

// PreviewRun builds the payee rows for a run without side effects.
func (h *Handler) PreviewRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	rows := h.Engine.BuildRows(req.toConfig(), snap, req.Deduction.toPolicy())
	dtos := make([]PayeeRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toPayeeRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ConfirmRun rebuilds the rows from current data, applies the client's
// edits, and settles the run atomically.
func (h *Handler) ConfirmRun(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRunRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	ctx := r.Context()
	snap, err := h.Store.Snapshot(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	cfg := req.Run.toConfig()
	policy := req.Run.Deduction.toPolicy()
	rows := h.Engine.BuildRows(cfg, snap, policy)

	// Apply the user's preview edits. Edits referencing rows that no
	// longer exist are dropped.
	edits := make(map[string]RowEditDTO, len(req.Edits))
	for _, e := range req.Edits {
		edits[e.ID] = e
	}
	for i := range rows {
		e, ok := edits[rows[i].ID]
		if !ok {
			continue
		}
		rows[i].Selected = e.Selected
		payrun.SetAdjustment(rows, rows[i].ID, ledger.DecimalFromFloat(e.Adjustment), policy)
	}

	date := ledger.ParseDate(req.Date)
	if date.IsZero() {
		date = ledger.Today()
	}

	res := payrun.ConfirmRun(rows, cfg, date)
	if err := h.Store.ApplyRun(ctx, res); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, payrun.ErrEmptyRun) {
			status = http.StatusConflict
		}
		writeError(w, status, "Failed to apply payment run", err)
		return
	}

	dto := RunResultDTO{
		RunID:             res.RunID,
		Date:              res.Date.String(),
		Payments:          make([]PaymentDTO, 0, len(res.Payments)),
		SettledCycles:     len(res.SettledCycleIDs),
		SettledDeliveries: len(res.SettledDeliveryIDs),
		SettledOperations: len(res.SettledOperationIDs),
	}
	repayTotal := 0.0
	for _, rp := range res.Repayments {
		repayTotal += rp.Amount.InexactFloat64()
	}
	dto.RepaymentsTotal = repayTotal
	for _, p := range res.Payments {
		dto.Payments = append(dto.Payments, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListPayments returns all recorded payments.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.Payments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdatePaymentStatus transitions a payment's lifecycle status.
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdatePaymentStatusRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	err := h.Store.UpdatePaymentStatus(r.Context(), id, payrun.PaymentStatus(req.Status))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, payrun.ErrPaymentNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "Failed to update payment status", err)
		return
	}
	writeJSON(w, http.StatusOK, CreatedDTO{ID: id})
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

func (h *Handler) CreateFarmer(w http.ResponseWriter, r *http.Request) {
	var req CreateFarmerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	f := payrun.Farmer{ID: orNewID(req.ID, "fa"), Name: req.Name, SiteID: req.SiteID}
	if err := h.Store.SaveFarmer(r.Context(), f); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save farmer", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: f.ID})
}

func (h *Handler) ListFarmers(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list farmers", err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Farmers)
}

func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req CreateSiteRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	s := payrun.Site{ID: orNewID(req.ID, "si"), Name: req.Name}
	if err := h.Store.SaveSite(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save site", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: s.ID})
}

func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sites", err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Sites)
}

func (h *Handler) CreateSeaweedType(w http.ResponseWriter, r *http.Request) {
	var req CreateSeaweedTypeRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	st := payrun.SeaweedType{
		ID:       orNewID(req.ID, "st"),
		Name:     req.Name,
		WetPrice: ledger.DecimalFromFloat(req.WetPrice),
		DryPrice: ledger.DecimalFromFloat(req.DryPrice),
	}
	if err := h.Store.SaveSeaweedType(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save seaweed type", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: st.ID})
}

func (h *Handler) ListSeaweedTypes(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list seaweed types", err)
		return
	}
	writeJSON(w, http.StatusOK, snap.SeaweedTypes)
}

func (h *Handler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req CreateProviderRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	p := payrun.ServiceProvider{ID: orNewID(req.ID, "sp"), Name: req.Name}
	if err := h.Store.SaveProvider(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save provider", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: p.ID})
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list providers", err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Providers)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	e := payrun.Employee{
		ID:        orNewID(req.ID, "em"),
		Name:      req.Name,
		SiteID:    req.SiteID,
		GrossWage: ledger.DecimalFromFloat(req.GrossWage),
	}
	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: e.ID})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Employees)
}

func (h *Handler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req CreateCycleRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	c := payrun.HarvestCycle{
		ID:            orNewID(req.ID, "hc"),
		ModuleID:      req.ModuleID,
		FarmerID:      req.FarmerID,
		SeaweedTypeID: req.SeaweedTypeID,
		HarvestDate:   ledger.ParseDate(req.HarvestDate),
		HarvestedKg:   ledger.DecimalFromFloat(req.HarvestedKg),
		CuttingsKg:    ledger.DecimalFromFloat(req.CuttingsKg),
	}
	if err := h.Store.SaveCycle(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save harvest cycle", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: c.ID})
}

func (h *Handler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req CreateDeliveryRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	d := payrun.Delivery{
		ID:            orNewID(req.ID, "dl"),
		SlipNo:        req.SlipNo,
		FarmerID:      req.FarmerID,
		SiteID:        req.SiteID,
		SeaweedTypeID: req.SeaweedTypeID,
		Date:          ledger.ParseDate(req.Date),
		WeightKg:      ledger.DecimalFromFloat(req.WeightKg),
		Bags:          req.Bags,
	}
	if err := h.Store.SaveDelivery(r.Context(), d); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save delivery", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: d.ID})
}

func (h *Handler) CreateOperation(w http.ResponseWriter, r *http.Request) {
	var req CreateOperationRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	total := ledger.DecimalFromFloat(req.TotalAmount)
	unitPrice := ledger.DecimalFromFloat(req.UnitPrice)
	if total.IsZero() {
		total = unitPrice.Mul(ledger.DecimalFromFloat(float64(req.LinesCut)))
	}

	op := payrun.CuttingOperation{
		ID:            orNewID(req.ID, "op"),
		Date:          ledger.ParseDate(req.Date),
		SiteID:        req.SiteID,
		ProviderID:    req.ProviderID,
		SeaweedTypeID: req.SeaweedTypeID,
		LinesCut:      req.LinesCut,
		UnitPrice:     unitPrice,
		TotalAmount:   total,
	}
	if err := h.Store.SaveOperation(r.Context(), op); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save operation", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedDTO{ID: op.ID})
}

// =============================================================================
// HELPERS
// =============================================================================

func orNewID(id, prefix string) string {
	if id != "" {
		return id
	}
	return prefix + "-" + uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
