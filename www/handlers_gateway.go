package www

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cvgateway/provider"
)

const maxBodyBytes = 1 << 20

func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return nil, false
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return nil, false
	}
	return body, true
}

// resolve selects the adapter for the request and builds its identity.
func (h *Handlers) resolve(w http.ResponseWriter, program, version, subscriber string) (provider.Adapter, provider.Identity, bool) {
	a, err := h.engine.Router().Resolve(program, version)
	if err != nil {
		writeDispatchError(w, err)
		return nil, provider.Identity{}, false
	}
	id := provider.Identity{
		Program:    provider.ParseProgram(program),
		Version:    provider.ParseVersion(version),
		Subscriber: subscriber,
	}
	return a, id, true
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, healthResponse{Success: true, ResponseMessage: "HealthCheck passed"})
}

func (h *Handlers) handleProviderHealth(w http.ResponseWriter, r *http.Request) {
	program, version := chi.URLParam(r, "programcode"), chi.URLParam(r, "ctsversion")
	a, _, ok := h.resolve(w, program, version, "")
	if !ok {
		return
	}
	res, err := provider.Health(r.Context(), a)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() {
		log.Printf("www: [%s] health %s/%s failed: %s", requestIDFrom(r.Context()), program, version, res.Message)
		writeFailure(w, res)
		return
	}
	writeData(w, http.StatusOK, healthResponse{Success: true, ResponseMessage: res.Message})
}

func (h *Handlers) handleSaveByReference(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req struct {
		ProgramCode *string `json:"programcode"`
		ReferenceID any     `json:"referenceid"`
	}
	json.Unmarshal(body, &req)
	if req.ProgramCode == nil || req.ReferenceID == nil {
		writeError(w, http.StatusBadRequest, "SaveVehicleData: Json payload is invalid. Payload requires programcode and referenceid")
		return
	}
	ref := scalarString(req.ReferenceID)
	a, id, ok := h.resolve(w, *req.ProgramCode, "", ref)
	if !ok {
		return
	}
	res, err := provider.SaveVehicleData(r.Context(), a, id, body)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() {
		log.Printf("www: [%s] save %s failed: %s", requestIDFrom(r.Context()), id, res.Message)
		writeFailure(w, res)
		return
	}
	hex := res.Hex
	if hex == nil {
		hex = []provider.HexValue{}
	}
	writeJSON(w, http.StatusCreated, hex)
}

func (h *Handlers) handleGetByReference(w http.ResponseWriter, r *http.Request) {
	h.getVehicleData(w, r, chi.URLParam(r, "id"), chi.URLParam(r, "programcode"), "")
}

func (h *Handlers) handleGetVehicleData(w http.ResponseWriter, r *http.Request) {
	h.getVehicleData(w, r, chi.URLParam(r, "msisdn"), chi.URLParam(r, "programcode"), chi.URLParam(r, "ctsversion"))
}

func (h *Handlers) getVehicleData(w http.ResponseWriter, r *http.Request, subscriber, program, version string) {
	a, id, ok := h.resolve(w, program, version, subscriber)
	if !ok {
		return
	}
	res, err := provider.GetVehicleData(r.Context(), a, id)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() || res.Record == nil {
		log.Printf("www: [%s] get %s failed: %s", requestIDFrom(r.Context()), id, res.Message)
		writeFailure(w, res)
		return
	}
	v := ""
	if version != "" {
		v = string(id.Version)
	}
	writeData(w, http.StatusOK, newVehicleDataResponse(res.Record, v, "Successfully retrieved"))
}

func (h *Handlers) handleAgentAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReferenceID string `json:"referenceid"`
		IsAssigned  bool   `json:"isassigned"`
		ProgramCode string `json:"programcode"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent assignment payload")
		return
	}
	if strings.TrimSpace(req.ReferenceID) == "" || req.ProgramCode == "" {
		writeError(w, http.StatusBadRequest, "referenceid and programcode are required")
		return
	}
	a, id, ok := h.resolve(w, req.ProgramCode, "", req.ReferenceID)
	if !ok {
		return
	}
	assigned, res, err := provider.AssignAgent(r.Context(), a, provider.Assignment{
		Program:     id.Program,
		ReferenceID: req.ReferenceID,
		Assigned:    req.IsAssigned,
	})
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !assigned {
		log.Printf("www: [%s] agent assignment %s failed: %s", requestIDFrom(r.Context()), id, res.Message)
		writeFailure(w, res)
		return
	}
	writeData(w, http.StatusCreated, agentAssignmentResponse{
		ReferenceID:   req.ReferenceID,
		AgentAssigned: req.IsAssigned,
		Status:        http.StatusCreated,
	})
}

func (h *Handlers) handleTerminateByReference(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req struct {
		ReferenceID string `json:"referenceid"`
		ProgramCode string `json:"programcode"`
	}
	json.Unmarshal(body, &req)
	if strings.TrimSpace(req.ReferenceID) == "" || req.ProgramCode == "" {
		writeError(w, http.StatusBadRequest, "referenceid and programcode are required")
		return
	}
	a, id, ok := h.resolve(w, req.ProgramCode, "", req.ReferenceID)
	if !ok {
		return
	}
	res, err := provider.Terminate(r.Context(), a, id, body)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() {
		log.Printf("www: [%s] terminate %s failed: %s", requestIDFrom(r.Context()), id, res.Message)
		writeFailure(w, res)
		return
	}
	writeData(w, http.StatusCreated, terminateResponse{ReferenceID: req.ReferenceID, Status: http.StatusCreated})
}

func (h *Handlers) handleSaveVehicleData(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	msisdn := chi.URLParam(r, "msisdn")
	a, id, ok := h.resolve(w, chi.URLParam(r, "programcode"), chi.URLParam(r, "ctsversion"), msisdn)
	if !ok {
		return
	}
	res, err := provider.SaveVehicleData(r.Context(), a, id, body)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() {
		log.Printf("www: [%s] save %s failed: %s", requestIDFrom(r.Context()), id, res.Message)
		writeFailure(w, res)
		return
	}
	writeData(w, http.StatusCreated, saveResponse{MSISDN: msisdn, Status: http.StatusCreated, ResponseMessage: res.Message})
}

func (h *Handlers) handleTerminate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	msisdn := chi.URLParam(r, "msisdn")
	a, id, ok := h.resolve(w, chi.URLParam(r, "programcode"), chi.URLParam(r, "ctsversion"), msisdn)
	if !ok {
		return
	}
	res, err := provider.Terminate(r.Context(), a, id, body)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() {
		log.Printf("www: [%s] terminate %s failed: %s", requestIDFrom(r.Context()), id, res.Message)
		writeFailure(w, res)
		return
	}
	writeData(w, http.StatusCreated, terminateResponse{MSISDN: msisdn, Status: http.StatusCreated})
}

func (h *Handlers) handleSaveVehicleInfo(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	a, id, ok := h.resolve(w, string(provider.Porsche), string(provider.V1), "")
	if !ok {
		return
	}
	res, err := provider.SaveVehicleInfo(r.Context(), a, id.Program, body)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() {
		log.Printf("www: [%s] save vehicle info failed: %s", requestIDFrom(r.Context()), res.Message)
		writeFailure(w, res)
		return
	}
	msisdn := ""
	if res.Record != nil {
		msisdn = res.Record.Subscriber
	}
	writeData(w, http.StatusOK, saveResponse{MSISDN: msisdn, Status: http.StatusOK, ResponseMessage: res.Message})
}

// handleGetVehicleInfo returns the last Porsche push exactly as it was received.
func (h *Handlers) handleGetVehicleInfo(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phonecontact")
	a, id, ok := h.resolve(w, string(provider.Porsche), string(provider.V1), phone)
	if !ok {
		return
	}
	res, err := provider.GetVehicleData(r.Context(), a, id)
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	if !res.Status.OK() || res.Record == nil {
		writeFailure(w, res)
		return
	}
	if len(res.Record.Raw) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(res.Record.Raw)
}

// scalarString renders a JSON scalar (string or number) as text.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return ""
	}
}
