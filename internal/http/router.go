package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/purchases", app.postPurchaseHandler)
	mux.HandleFunc("/goods", app.goodsHandler)
	mux.HandleFunc("/goods/", app.goodHandler)
	mux.HandleFunc("/customers", app.customersHandler)
	mux.HandleFunc("/customers/", app.customerHandler)
	mux.HandleFunc("/sales", app.salesHandler)
	mux.HandleFunc("/healthz", app.healthHandler)
	mux.HandleFunc("/debug/metrics", app.metricsHandler)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/openapi.yaml", app.openapiHandler)
	mux.HandleFunc("/docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}
