// Package www is the HTTP front door of the gateway. Gateway routes resolve the
// program and version through the engine's router and map the canonical result
// status to an HTTP code; operator routes expose the audit trail behind a
// session login.
package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cvgateway/engine"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
}

func NewRouter(eng *engine.Engine) http.Handler {
	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
	}
	h.ensureDefaultOperator()

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(countRequests)

	r.Get("/health", h.handleHealth)
	r.Get("/health/programcode/{programcode}/ctsversion/{ctsversion}", h.handleProviderHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Reference-id keyed routes (call-center integrations)
	r.Post("/data", h.handleSaveByReference)
	r.Get("/data/{id}/programcode/{programcode}", h.handleGetByReference)
	r.Post("/agentassignment", h.handleAgentAssignment)
	r.Post("/terminate", h.handleTerminateByReference)

	// Msisdn keyed routes
	r.Get("/data/{msisdn}/programcode/{programcode}/ctsversion/{ctsversion}", h.handleGetVehicleData)
	r.Post("/data/{msisdn}/programcode/{programcode}/ctsversion/{ctsversion}", h.handleSaveVehicleData)
	r.Post("/terminate/{msisdn}/programcode/{programcode}/ctsversion/{ctsversion}", h.handleTerminate)

	// Porsche pushes carry the msisdn in the payload
	r.Post("/vehicleinfo", h.handleSaveVehicleInfo)
	r.Get("/vehicleinfo", h.handleGetVehicleInfo)

	// Operator console
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/api/records/{program}/{subscriber}", h.apiListRecords)
		r.Get("/api/routes", h.apiListRoutes)
		r.Get("/api/status", h.apiStatus)
		r.Post("/api/config/reload", h.apiReloadProviders)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}
