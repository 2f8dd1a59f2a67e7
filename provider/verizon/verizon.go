// Package verizon adapts the Verizon vehicle location SOAP service.
package verizon

import (
	"context"
	"encoding/xml"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvgateway/audit"
	"cvgateway/config"
	"cvgateway/identity"
	"cvgateway/metrics"
	"cvgateway/provider"
	"cvgateway/soap"
	"cvgateway/status"
)

const name = "verizon"

const action = "RequestVehicleLocation"

// Adapter implements VehicleDataGetter and HealthChecker.
type Adapter struct {
	cfg      config.VerizonConfig
	store    audit.Store
	bindings *soap.BindingCache
	logf     provider.LogFunc
	now      func() time.Time
}

func New(cfg config.VerizonConfig, store audit.Store, bindings *soap.BindingCache, logf provider.LogFunc) *Adapter {
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

// GetVehicleData requests the vehicle location for an MDN. The result is
// written to the audit store; a failed write does not change the outcome.
func (a *Adapter) GetVehicleData(ctx context.Context, id provider.Identity) provider.Result {
	msisdn, err := identity.Normalize(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	program := string(id.Program)
	a.logf("verizon: get vehicle data for msisdn %s program %s", msisdn, program)

	if a.cfg.FreshnessCheck {
		if rec := audit.FreshRecord(ctx, a.store, program, msisdn, a.cfg.FreshnessWindowMinutes, a.now()); rec != nil {
			metrics.FreshnessHitsTotal.WithLabelValues(name).Inc()
			a.logf("verizon: served msisdn %s from audit record %d", msisdn, rec.SortKey)
			return provider.Succeed("Successfully retrieved", rec)
		}
	}

	c, err := a.client()
	if err != nil {
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	req := vehicleLocationRequest{
		XMLName: xml.Name{Space: a.cfg.Namespace, Local: action},
		Header: requestHeader{
			SourceName:    a.cfg.SourceName,
			TargetName:    a.cfg.TargetName,
			TransactionID: uuid.NewString(),
			Timestamp:     a.now().UTC().Format(time.RFC3339),
		},
		MDN: msisdn,
	}
	var hdr flowHeader
	var resp vehicleLocationResponse
	if err := c.Call(ctx, action, nil, req, &hdr, &resp); err != nil {
		if ctx.Err() != nil {
			return provider.Fail(status.Canceled, "request canceled: %v", ctx.Err())
		}
		a.logf("verizon: %s for msisdn %s: %v", action, msisdn, err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}

	r := resp.Response
	if r == nil || r.ResponseStatus == nil || r.ResponseDescription == nil {
		a.logf("verizon: %s for msisdn %s: missing response status", action, msisdn)
		return provider.Fail(status.InternalServerError, "%s: missing ResponseStatus or ResponseDescription", action)
	}
	s := Normalize(*r.ResponseStatus, *r.ResponseDescription)
	if s != status.Success {
		a.logf("verizon: %s for msisdn %s: %s %s", action, msisdn, s, *r.ResponseStatus)
		return provider.Result{Status: s, Message: *r.ResponseStatus + ", " + *r.ResponseDescription}
	}

	rec := mapRecord(program, msisdn, &resp, &hdr, a.now())
	if err := a.store.Put(ctx, rec); err != nil {
		metrics.AuditWriteFailuresTotal.WithLabelValues(name).Inc()
		a.logf("verizon: audit write for msisdn %s: %v", msisdn, err)
	}
	a.logf("verizon: retrieved vehicle data for msisdn %s", msisdn)
	return provider.Succeed("Successfully retrieved", rec)
}

func mapRecord(program, msisdn string, resp *vehicleLocationResponse, hdr *flowHeader, now time.Time) *audit.Record {
	rec := audit.NewRecord(program, msisdn, now)
	rec.Status = status.Success
	rec.Message = "Successfully retrieved"
	rec.MSISDN = msisdn
	if ts, ok := callTimestamp(resp.CallDate, resp.CallTime); ok {
		rec.Timestamp = ts
	}
	rec.CallDate = strings.TrimSpace(resp.CallDate)
	rec.CallTime = strings.TrimSpace(resp.CallTime)
	rec.EventID = hdr.FlowEventID
	rec.Latitude, _ = strconv.ParseFloat(strings.TrimSpace(resp.FromLocationLatitude), 64)
	rec.Longitude, _ = strconv.ParseFloat(strings.TrimSpace(resp.FromLocationLongitude), 64)
	rec.Altitude = resp.Altitude
	rec.HeadingDirection = resp.DirectionHeading
	rec.Language = resp.HMILanguage
	rec.CountryCode = resp.FromLocationCountry
	rec.VIN = resp.VIN
	rec.Brand = resp.Make
	rec.ModelCode = resp.Make
	rec.ModelName = resp.Model
	rec.ModelYear = resp.VehicleYear

	rec.SetExtra("flow_id", hdr.FlowID)
	rec.SetExtra("correlation_flow_id", hdr.CorrelationFlowID)
	rec.SetExtra("customer_first_name", resp.CustomerFirstName)
	rec.SetExtra("customer_last_name", resp.CustomerLastName)
	rec.SetExtra("model_color", resp.ExteriorColor)
	rec.SetExtra("phone_number", resp.FromLocationPhoneNo)
	rec.SetExtra("sr_number", resp.SRNumber)
	rec.SetExtra("location_address", resp.FromLocationAddress)
	rec.SetExtra("location_city", resp.FromLocationCity)
	rec.SetExtra("location_state", resp.FromLocationState)
	rec.SetExtra("location_postal_code", resp.FromLocationZip)
	rec.SetExtra("location_confidence", resp.LocationConfidence)
	rec.SetExtra("location_trueness", resp.LocationTrueness)
	rec.SetExtra("cruising_range", resp.CruisingRange)
	rec.SetExtra("is_moving", resp.IsMoving)
	return rec
}

// callTimestamp parses the upstream call date (MM/DD/YYYY) and time (HH:MM:SS).
func callTimestamp(date, clock string) (time.Time, bool) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse("01/02/2006 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

// Health fetches the service WSDL.
func (a *Adapter) Health(ctx context.Context) provider.Result {
	c, err := a.client()
	if err != nil {
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	resp, err := c.WSDL(ctx)
	if err != nil {
		a.logf("verizon: health: %v", err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	if resp.StatusCode == 200 && resp.IsXML() {
		return provider.Result{Status: status.Success, Message: "HealthCheck passed"}
	}
	s := Normalize(resp.Text(), "")
	a.logf("verizon: health failed: HTTP %d %s", resp.StatusCode, s)
	return provider.Result{Status: s, Message: resp.Text()}
}
