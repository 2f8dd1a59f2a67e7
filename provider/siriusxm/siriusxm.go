// Package siriusxm adapts the SiriusXM roadside service. Vehicle data is pushed
// to the gateway keyed by reference id and read back from the audit store.
// Agent assignment and call termination go out over SOAP.
package siriusxm

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"log"
	"strconv"
	"strings"
	"time"

	"cvgateway/audit"
	"cvgateway/config"
	"cvgateway/identity"
	"cvgateway/provider"
	"cvgateway/soap"
	"cvgateway/status"
)

const name = "siriusxm"

// HexVarName is the variable name the telephony platform reads the hex value from.
const HexVarName = "User-to-User"

// Adapter implements VehicleDataGetter, VehicleDataSaver, AgentAssigner,
// Terminator and HealthChecker.
type Adapter struct {
	cfg      config.SiriusXMConfig
	store    audit.Store
	bindings *soap.BindingCache
	logf     provider.LogFunc
	now      func() time.Time
}

func New(cfg config.SiriusXMConfig, store audit.Store, bindings *soap.BindingCache, logf provider.LogFunc) *Adapter {
	if logf == nil {
		logf = log.Printf
	}
	if bindings == nil {
		bindings = soap.NewBindingCache()
	}
	return &Adapter{cfg: cfg, store: store, bindings: bindings, logf: logf, now: time.Now}
}

func (a *Adapter) Name() string { return name }

func (a *Adapter) client() (*soap.Client, error) {
	return a.bindings.Client(name, a.cfg.BaseURL, a.cfg.Timeout, a.cfg.RootCert)
}

// SaveVehicleData stores the roadside push and returns the hex-encoded summary
// the telephony platform attaches to the call.
func (a *Adapter) SaveVehicleData(ctx context.Context, id provider.Identity, payload json.RawMessage) provider.Result {
	var p savePayload
	if len(payload) == 0 || json.Unmarshal(payload, &p) != nil {
		return provider.Fail(status.BadRequest, "SaveVehicleData: No Data found")
	}
	ref := p.ReferenceID.String()
	if ref == "" {
		ref = id.Subscriber
	}
	ref, err := identity.Reference(ref)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	lat, lon := position(&p)
	vin := strings.TrimSpace(p.VIN.String())
	lang := strings.TrimSpace(p.Language.String())
	switch {
	case vin == "":
		return provider.Fail(status.BadRequest, "vin is required for referenceid: %s", ref)
	case lang == "":
		return provider.Fail(status.BadRequest, "language is required for referenceid: %s", ref)
	case lat == "" || lon == "":
		return provider.Fail(status.BadRequest, "latitude and longitude are required for referenceid: %s", ref)
	}
	latF, errLat := strconv.ParseFloat(lat, 64)
	lonF, errLon := strconv.ParseFloat(lon, 64)
	if errLat != nil || errLon != nil {
		return provider.Fail(status.BadRequest, "invalid position %s~%s for referenceid: %s", lat, lon, ref)
	}

	rec := audit.NewRecord(string(id.Program), ref, a.now())
	rec.Status = status.Success
	rec.ReferenceID = ref
	rec.MSISDN = p.ANI.String()
	rec.VIN = vin
	rec.Language = lang
	rec.Latitude = latF
	rec.Longitude = lonF
	rec.CallDate = rec.Timestamp.Format("2006-01-02")
	rec.CallTime = rec.Timestamp.Format("15:04")
	rec.Raw = payload

	if err := a.store.Put(ctx, rec); err != nil {
		a.logf("siriusxm: save for referenceid %s: %v", ref, err)
		return provider.Fail(status.InternalServerError, "Unable to save the vehicledata for referenceid: %s", ref)
	}
	a.logf("siriusxm: saved vehicle data for referenceid %s program %s", ref, id.Program)

	res := provider.Succeed("Successfully Saved.", rec)
	res.Hex = []provider.HexValue{{VarName: HexVarName, Value: EncodeHex(ref, lat, lon, vin, lang)}}
	return res
}

// EncodeHex renders the roadside summary as "00" followed by the hex of
// ROADSIDE~ref~lat~lon~vin~lang.
func EncodeHex(ref, lat, lon, vin, lang string) string {
	s := strings.Join([]string{"ROADSIDE", ref, lat, lon, vin, lang}, "~")
	return "00" + hex.EncodeToString([]byte(s))
}

func position(p *savePayload) (lat, lon string) {
	if geo := p.Geolocation.String(); geo != "" {
		parts := strings.Split(geo, "~")
		if len(parts) >= 2 {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
		return "", ""
	}
	return strings.TrimSpace(p.Latitude.String()), strings.TrimSpace(p.Longitude.String())
}

// GetVehicleData returns the latest record saved for the reference id.
func (a *Adapter) GetVehicleData(ctx context.Context, id provider.Identity) provider.Result {
	ref, err := identity.Reference(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	rec, err := a.store.QueryLatest(ctx, audit.PartitionKey(string(id.Program), ref), nil)
	if err != nil {
		a.logf("siriusxm: get vehicle data for referenceid %s: %v", ref, err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	if rec == nil {
		a.logf("siriusxm: no data for referenceid %s", ref)
		return provider.Fail(status.NotFound, "No data found")
	}
	return provider.Succeed("Successfully retrieved", rec)
}

// AssignAgent reports an agent assignment over SOAP.
func (a *Adapter) AssignAgent(ctx context.Context, asg provider.Assignment) (bool, provider.Result) {
	ref, err := identity.Reference(asg.ReferenceID)
	if err != nil {
		return false, provider.Fail(status.BadRequest, "%v", err)
	}
	req := agentAssignedRequest{
		XMLName:     xml.Name{Space: a.cfg.Namespace, Local: "agentAssigned"},
		ReferenceID: ref,
		IsAssigned:  asg.Assigned,
	}
	res := a.call(ctx, "agentAssigned", ref, req)
	a.logf("siriusxm: agent assignment for referenceid %s: %s %s", ref, res.Status, res.Message)
	return res.Status.OK(), res
}

// Terminate ends the roadside call over SOAP. The reason payload may carry a
// reasoncode.
func (a *Adapter) Terminate(ctx context.Context, id provider.Identity, reason json.RawMessage) provider.Result {
	ref, err := identity.Reference(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	req := terminateRequest{
		XMLName:     xml.Name{Space: a.cfg.Namespace, Local: "terminate"},
		ReferenceID: ref,
	}
	if p, err := provider.ParsePayload(reason); err == nil {
		req.ReasonCode = p.String("reasoncode")
	}
	res := a.call(ctx, "terminate", ref, req)
	a.logf("siriusxm: terminate for referenceid %s: %s %s", ref, res.Status, res.Message)
	return res
}

func (a *Adapter) call(ctx context.Context, action, ref string, req any) provider.Result {
	c, err := a.client()
	if err != nil {
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	var resp resultResponse
	if err := c.Call(ctx, action, nil, req, nil, &resp); err != nil {
		if ctx.Err() != nil {
			return provider.Fail(status.Canceled, "request canceled: %v", ctx.Err())
		}
		a.logf("siriusxm: %s for referenceid %s: %v", action, ref, err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	if strings.TrimSpace(resp.ResultCode) == "" || resp.ResultMsg == nil {
		return provider.Fail(status.InternalServerError, "%s: missing result-code or result-msg", action)
	}
	return provider.Result{Status: Normalize(resp.ResultCode, *resp.ResultMsg), Message: *resp.ResultMsg}
}

// Health fetches the service WSDL.
func (a *Adapter) Health(ctx context.Context) provider.Result {
	c, err := a.client()
	if err != nil {
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	resp, err := c.WSDL(ctx)
	if err != nil {
		a.logf("siriusxm: health: %v", err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	if resp.StatusCode == 200 && resp.IsXML() {
		return provider.Result{Status: status.Success, Message: "HealthCheck passed"}
	}
	s := Normalize(resp.Text(), "")
	a.logf("siriusxm: health failed: HTTP %d %s", resp.StatusCode, s)
	return provider.Result{Status: s, Message: resp.Text()}
}
