package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/export"
	"pharmatrack/m/internal/ledger"
	"pharmatrack/m/internal/monitor"
	"pharmatrack/m/internal/report"
	"pharmatrack/m/internal/sales"
	"pharmatrack/m/internal/store"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

const dateLayout = "2006-01-02"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store             *store.Store
	ledger            *ledger.Ledger
	recorder          *sales.Recorder
	monitor           *monitor.Monitor
	reports           *report.Service
	secret            string
	alertWindowDays   int
	lowStockThreshold int64
}

// New constructs a Handler.
func New(st *store.Store, l *ledger.Ledger, rec *sales.Recorder, mon *monitor.Monitor, rep *report.Service, secret string, alertWindowDays int, lowStockThreshold int64) *Handler {
	return &Handler{
		store:             st,
		ledger:            l,
		recorder:          rec,
		monitor:           mon,
		reports:           rep,
		secret:            secret,
		alertWindowDays:   alertWindowDays,
		lowStockThreshold: lowStockThreshold,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medications", func(r chi.Router) {
			r.Get("/", h.listMedications)
			r.Post("/", h.createMedication)
			r.Get("/expired", h.expiredMedications)
			r.Get("/near-expiry", h.nearExpiryMedications)
			r.Get("/low-stock", h.lowStockMedications)
			r.Get("/out-of-stock", h.outOfStockMedications)
			r.Get("/{id}", h.getMedication)
			r.Put("/{id}", h.updateMedication)
			r.Delete("/{id}", h.deleteMedication)
			r.Post("/{id}/restock", h.restockMedication)
			r.Post("/{id}/adjust", h.adjustStock)
		})

		pr.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Get("/{id}", h.getSupplier)
			r.Put("/{id}", h.updateSupplier)
			r.Delete("/{id}", h.deleteSupplier)
			r.Get("/{id}/medications", h.supplierMedications)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Get("/", h.listSales)
			r.Post("/", h.recordSale)
			r.Delete("/{id}", h.cancelSale)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/sales/daily", h.dailySales)
			r.Get("/sales/monthly", h.monthlySales)
			r.Get("/sales/summary", h.salesSummary)
			r.Get("/sales/top", h.topSellers)
			r.Get("/stock", h.stockReport)
		})

		pr.Route("/monitor", func(r chi.Router) {
			r.Get("/status", h.monitorStatus)
			r.Post("/start", h.startMonitor)
			r.Post("/stop", h.stopMonitor)
			r.Post("/check", h.checkMonitor)
			r.Get("/alerts/count", h.alertCount)
			r.Get("/report", h.expirationReport)
		})

		pr.Get("/export/stock", h.exportStock)
		pr.Post("/import/stock", h.importStock)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type authClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64, role string) (string, error) {
	claims := authClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "username, email, password and role are required")
		return
	}
	if req.Role != "admin" && req.Role != "pharmacist" {
		respondError(w, http.StatusBadRequest, "role must be admin or pharmacist")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	user := &domain.User{
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
		Password: string(hashed),
		Role:     req.Role,
	}
	id, err := h.store.CreateUser(user)
	if err != nil {
		respondError(w, http.StatusConflict, "email already exists")
		return
	}

	token, err := h.generateToken(id, req.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	user.ID = id
	user.Password = ""
	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: *user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.LoadUserByEmail(strings.ToLower(req.Email))
	if err != nil || user == nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: *user})
}

// Medications

type medicationRequest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	UnitPrice      float64 `json:"unit_price"`
	Quantity       int64   `json:"quantity"`
	ExpirationDate string  `json:"expiration_date"`
	SupplierID     *int64  `json:"supplier_id"`
}

func (req *medicationRequest) toDomain(id int64) (*domain.Medication, error) {
	var expiration time.Time
	if req.ExpirationDate != "" {
		parsed, err := time.Parse(dateLayout, req.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("expiration_date must be in YYYY-MM-DD format")
		}
		expiration = parsed
	}
	return &domain.Medication{
		ID:             id,
		Name:           req.Name,
		Category:       req.Category,
		UnitPrice:      req.UnitPrice,
		Quantity:       req.Quantity,
		ExpirationDate: expiration,
		SupplierID:     req.SupplierID,
	}, nil
}

func (h *Handler) listMedications(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	var (
		items []domain.Medication
		err   error
	)
	switch {
	case query != "":
		items, err = h.ledger.SearchByName(query)
	case category != "":
		items, err = h.ledger.ByCategory(category)
	default:
		items, err = h.ledger.ListAll()
	}
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) createMedication(w http.ResponseWriter, r *http.Request) {
	var req medicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := req.toDomain(0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.ledger.Add(m)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	m.ID = id
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handler) getMedication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.ledger.FindByID(id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if m == nil {
		respondError(w, http.StatusNotFound, "medication not found")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) updateMedication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req medicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := req.toDomain(id)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ledger.Update(m); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMedication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.ledger.Remove(id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) restockMedication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Quantity int64 `json:"quantity"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.ledger.Restock(id, payload.Quantity)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Delta int64 `json:"delta"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.ledger.AdjustStock(id, payload.Delta)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) expiredMedications(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.Expired(time.Now())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) nearExpiryMedications(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = h.alertWindowDays
	}
	items, err := h.ledger.NearExpiry(time.Now(), days)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) lowStockMedications(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.ParseInt(r.URL.Query().Get("threshold"), 10, 64)
	if err != nil || threshold < 0 {
		threshold = h.lowStockThreshold
	}
	items, err := h.ledger.LowStock(threshold)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) outOfStockMedications(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.OutOfStock()
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Suppliers

type supplierRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	ContactPerson string `json:"contact_person"`
	Notes         string `json:"notes"`
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var (
		suppliers []domain.Supplier
		err       error
	)
	if query != "" {
		suppliers, err = h.store.SearchSuppliersByName(query)
	} else {
		suppliers, err = h.store.LoadAllSuppliers()
	}
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	sup := &domain.Supplier{
		Name:          req.Name,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		ContactPerson: req.ContactPerson,
		Notes:         req.Notes,
	}
	id, err := h.store.InsertSupplier(sup)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	sup.ID = id
	respondJSON(w, http.StatusCreated, sup)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sup, err := h.store.LoadSupplierByID(id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	if sup == nil {
		respondError(w, http.StatusNotFound, "supplier not found")
		return
	}
	respondJSON(w, http.StatusOK, sup)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	sup := &domain.Supplier{
		ID:            id,
		Name:          req.Name,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		ContactPerson: req.ContactPerson,
		Notes:         req.Notes,
	}
	if err := h.store.UpdateSupplier(sup); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sup)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteSupplier(id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) supplierMedications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	items, err := h.ledger.BySupplier(id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Sales

type saleRequest struct {
	MedicationID int64  `json:"medication_id"`
	Quantity     int64  `json:"quantity"`
	SaleDate     string `json:"sale_date"`
	Customer     string `json:"customer"`
	Notes        string `json:"notes"`
}

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saleDate := time.Now()
	if req.SaleDate != "" {
		parsed, err := time.Parse(dateLayout, req.SaleDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "sale_date must be in YYYY-MM-DD format")
			return
		}
		saleDate = parsed
	}

	sale, err := h.recorder.RecordSale(req.MedicationID, req.Quantity, saleDate)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

func (h *Handler) cancelSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.recorder.CancelSale(id); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	var (
		salesList []domain.Sale
		err       error
	)

	medicationID := strings.TrimSpace(r.URL.Query().Get("medication_id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	startDate := strings.TrimSpace(r.URL.Query().Get("start_date"))
	endDate := strings.TrimSpace(r.URL.Query().Get("end_date"))

	switch {
	case medicationID != "":
		id, parseErr := strconv.ParseInt(medicationID, 10, 64)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "invalid medication_id")
			return
		}
		salesList, err = h.store.LoadSalesByMedication(id)
	case date != "":
		day, parseErr := time.Parse(dateLayout, date)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
			return
		}
		salesList, err = h.store.LoadSalesByDate(day)
	case startDate != "" && endDate != "":
		from, parseErr := time.Parse(dateLayout, startDate)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
			return
		}
		to, parseErr := time.Parse(dateLayout, endDate)
		if parseErr != nil {
			respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
			return
		}
		salesList, err = h.store.LoadSalesBetween(from, to)
	default:
		salesList, err = h.store.LoadAllSales()
	}
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, salesList)
}

// Reports

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.DailySales(time.Now())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.MonthlySales(time.Now())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(dateLayout, r.URL.Query().Get("start_date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format")
		return
	}
	to, err := time.Parse(dateLayout, r.URL.Query().Get("end_date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format")
		return
	}
	summary, err := h.reports.PeriodSales(from, to)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) topSellers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 5
	}
	ranked, err := h.reports.TopSellers(limit)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ranked)
}

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.ParseInt(r.URL.Query().Get("threshold"), 10, 64)
	if err != nil || threshold < 0 {
		threshold = h.lowStockThreshold
	}
	overview, err := h.reports.StockReport(threshold)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// Monitor

func (h *Handler) monitorStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"running":          h.monitor.Running(),
		"interval_seconds": int(h.monitor.Interval().Seconds()),
	})
}

func (h *Handler) startMonitor(w http.ResponseWriter, r *http.Request) {
	h.monitor.Start()
	respondJSON(w, http.StatusOK, map[string]any{"running": h.monitor.Running()})
}

func (h *Handler) stopMonitor(w http.ResponseWriter, r *http.Request) {
	h.monitor.Stop()
	respondJSON(w, http.StatusOK, map[string]any{"running": h.monitor.Running()})
}

func (h *Handler) checkMonitor(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.CheckNow(); err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "scan complete"})
}

func (h *Handler) alertCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.monitor.CountAlerts()
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"alert_count": count})
}

func (h *Handler) expirationReport(w http.ResponseWriter, r *http.Request) {
	text, err := h.monitor.Report()
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// Export / import

func (h *Handler) exportStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.ListAll()
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="stock.csv"`)
	if err := export.WriteStock(w, items); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to export stock")
	}
}

func (h *Handler) importStock(w http.ResponseWriter, r *http.Request) {
	items, err := export.ReadStock(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Bad rows are skipped, not fatal, so one malformed line cannot leave a
	// half-applied import behind an error response.
	imported, skipped := 0, 0
	for i := range items {
		item := items[i]
		item.ID = 0
		if _, err := h.ledger.Add(&item); err != nil {
			var validation *domain.ValidationError
			if errors.As(err, &validation) {
				skipped++
				continue
			}
			h.respondDomainError(w, err)
			return
		}
		imported++
	}
	respondJSON(w, http.StatusCreated, map[string]int{"imported": imported, "skipped": skipped})
}

// Helpers

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// respondDomainError maps business errors onto status codes the UI can act
// on; store failures surface as a generic operation failure.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error": validation.Error(),
			"field": validation.Field,
		})
		return
	}
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":      insufficient.Error(),
			"medication": insufficient.MedicationName,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
		return
	}
	var expired *domain.ExpiredMedicationError
	if errors.As(err, &expired) {
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":           expired.Error(),
			"medication":      expired.MedicationName,
			"expiration_date": expired.ExpirationDate.Format(dateLayout),
		})
		return
	}
	var negative *domain.NegativeStockError
	if errors.As(err, &negative) {
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":      negative.Error(),
			"medication": negative.MedicationName,
			"available":  negative.Available,
			"delta":      negative.Delta,
		})
		return
	}
	respondError(w, http.StatusInternalServerError, "operation failed")
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
