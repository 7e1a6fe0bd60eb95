package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/retail-checkout-service/internal/config"
	"github.com/fairyhunter13/retail-checkout-service/internal/engine"
	httpopenapi "github.com/fairyhunter13/retail-checkout-service/internal/http/openapi"
	"github.com/fairyhunter13/retail-checkout-service/internal/model"
	"github.com/fairyhunter13/retail-checkout-service/internal/obs"
)

type App struct {
	Cfg     config.Config
	Engine  *engine.Engine
	started time.Time
}

func NewApp(cfg config.Config, e *engine.Engine) *App {
	return &App{Cfg: cfg, Engine: e, started: time.Now()}
}

// StartShutdown closes purchase intake. Handlers observe it through the
// engine's atomic flag, so the signal goroutine and request goroutines never
// race on a plain field.
func (a *App) StartShutdown() {
	a.Engine.CloseIntake()
}

// purchaseRequest is the cart shape submitted by the session. The price field
// is accepted for compatibility with the cart form but never trusted; the
// catalog re-prices every line.
type purchaseRequest struct {
	CustomerID string `json:"customer_id"`
	OrderID    string `json:"order_id,omitempty"`
	Items      []struct {
		Name     string           `json:"name"`
		Quantity int64            `json:"quantity"`
		Price    *decimal.Decimal `json:"price,omitempty"`
	} `json:"items"`
}

type purchaseResponse struct {
	Status         string          `json:"status"`
	RequestID      string          `json:"request_id"`
	OrderID        string          `json:"order_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	LoyaltyPoints  decimal.Decimal `json:"loyalty_points"`
	Date           string          `json:"date"`
	AlreadyApplied bool            `json:"already_applied,omitempty"`
}

func (a *App) postPurchaseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	if a.Engine.IsShuttingDown() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var req purchaseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.CustomerID == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "customer_id is required")
		return
	}
	cart := model.Cart{CustomerID: req.CustomerID, Items: make([]model.CartItem, 0, len(req.Items))}
	for _, it := range req.Items {
		cart.Items = append(cart.Items, model.CartItem{Name: it.Name, Quantity: it.Quantity})
	}
	rc, err := a.Engine.Purchase(r.Context(), cart, req.OrderID)
	if err != nil {
		if errors.Is(err, engine.ErrShuttingDown) {
			WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
			return
		}
		WriteFault(w, err)
		return
	}
	resp := purchaseResponse{
		Status:         "completed",
		RequestID:      RequestIDFromContext(r.Context()),
		OrderID:        rc.OrderID,
		TotalAmount:    rc.TotalAmount,
		LoyaltyPoints:  rc.LoyaltyPoints,
		Date:           rc.Date.String(),
		AlreadyApplied: rc.AlreadyApplied,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
	obs.Logger.Info("purchase_completed",
		"request_id", resp.RequestID,
		"order_id", resp.OrderID,
		"customer_id", req.CustomerID,
		"total_amount", resp.TotalAmount.String(),
		"already_applied", resp.AlreadyApplied,
	)
}

type goodRequest struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (a *App) goodsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"goods": a.Engine.Goods()})
	case http.MethodPost:
		var req goodRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		g := model.Good{Name: req.Name, Quantity: req.Quantity, Price: req.Price}
		if err := a.Engine.AddGood(r.Context(), g); err != nil {
			WriteFault(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "good added successfully"})
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) goodHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/goods/")
	if name == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodGet:
		g, ok := a.Engine.FindGood(name)
		if !ok {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(g)
	case http.MethodDelete:
		if err := a.Engine.RemoveGood(r.Context(), name); err != nil {
			WriteFault(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "good removed successfully"})
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) customersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"customers": a.Engine.Customers()})
}

func (a *App) customerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/customers/")
	if id == "" {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	c, ok := a.Engine.FindCustomer(id)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

func (a *App) salesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"sales": a.Engine.Sales()})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	em := a.Engine.EngineMetrics()
	m := map[string]any{
		"purchases_accepted":  em.Accepted,
		"purchases_rejected":  em.Rejected,
		"purchases_aborted":   em.Aborted,
		"purchases_in_flight": em.InFlight,
		"sale_count":          em.SaleCount,
		"stock_value":         em.StockValue.String(),
		"uptime_sec":          time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
