package www

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cvgateway/audit"
	"cvgateway/config"
	"cvgateway/provider"
)

const defaultRecordLimit = 20

// apiListRecords returns the newest audit records for an identity.
func (h *Handlers) apiListRecords(w http.ResponseWriter, r *http.Request) {
	program := provider.ParseProgram(chi.URLParam(r, "program"))
	subscriber := chi.URLParam(r, "subscriber")

	limit := defaultRecordLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := h.engine.Records().ListRecords(r.Context(), audit.PartitionKey(string(program), subscriber), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*audit.Record{}
	}
	writeData(w, http.StatusOK, recs)
}

type routeInfo struct {
	Program string `json:"program"`
	Version string `json:"version"`
	Adapter string `json:"adapter"`
}

func (h *Handlers) apiListRoutes(w http.ResponseWriter, r *http.Request) {
	rt := h.engine.Router()
	var out []routeInfo
	for _, p := range rt.Pairs() {
		a := rt.Select(string(p.Program), string(p.Version))
		out = append(out, routeInfo{Program: string(p.Program), Version: string(p.Version), Adapter: a.Name()})
	}
	writeData(w, http.StatusOK, out)
}

type statusResponse struct {
	Database     string `json:"database"`
	Messaging    string `json:"messaging"`
	Connected    bool   `json:"messaging_connected"`
	SOAPBindings int    `json:"soap_bindings"`
}

func (h *Handlers) apiStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Database:     "ok",
		Messaging:    "disabled",
		SOAPBindings: h.engine.Bindings().Len(),
	}
	if err := h.engine.Ready(r.Context()); err != nil {
		resp.Database = err.Error()
	}
	if mc := h.engine.MsgClient(); mc != nil {
		resp.Messaging = mc.Backend()
		resp.Connected = mc.IsConnected()
	}
	writeData(w, http.StatusOK, resp)
}

// apiReloadProviders re-reads the provider section of the config file. Requests
// already in flight keep the settings they started with.
func (h *Handlers) apiReloadProviders(w http.ResponseWriter, r *http.Request) {
	path := h.engine.ConfigPath()
	if path == "" {
		writeError(w, http.StatusBadRequest, "no config file in use")
		return
	}
	cfg, err := config.Load(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.engine.AppConfig().SetProviders(cfg.Providers)
	log.Printf("www: provider settings reloaded from %s", path)
	writeData(w, http.StatusOK, map[string]string{"reloaded": path})
}
