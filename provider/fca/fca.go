// Package fca adapts the FCA B-call REST API. Vehicle data is delivered out of
// band: a trigger asks FCA to push the data to the inbound save endpoint, and
// the adapter polls the audit store until it appears.
package fca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"cvgateway/audit"
	"cvgateway/config"
	"cvgateway/identity"
	"cvgateway/metrics"
	"cvgateway/provider"
	"cvgateway/status"
	"cvgateway/upstream"
)

const name = "fca"

// Adapter implements VehicleDataGetter, VehicleDataSaver and Terminator.
type Adapter struct {
	cfg       config.FCAConfig
	store     audit.Store
	client    *upstream.Client
	clientErr error
	logf      provider.LogFunc
	now       func() time.Time
}

func New(cfg config.FCAConfig, store audit.Store, logf provider.LogFunc) *Adapter {
	if logf == nil {
		logf = log.Printf
	}
	client, err := upstream.NewClient(name, cfg.BaseURL, cfg.Timeout, cfg.RootCert)
	return &Adapter{cfg: cfg, store: store, client: client, clientErr: err, logf: logf, now: time.Now}
}

func (a *Adapter) Name() string { return name }

func (a *Adapter) headers() http.Header {
	return http.Header{"APIKey": {a.cfg.APIKey}}
}

func (a *Adapter) msisdn(raw string) (string, error) {
	v, err := identity.Normalize(raw)
	if err != nil {
		return "", err
	}
	return ReformatMSISDN(v, a.cfg.MaxANILength), nil
}

// GetVehicleData answers from a fresh audit record when one exists, otherwise
// triggers a B-call data push and polls the audit store for it.
func (a *Adapter) GetVehicleData(ctx context.Context, id provider.Identity) provider.Result {
	msisdn, err := a.msisdn(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	program := string(id.Program)
	a.logf("fca: get vehicle data for msisdn %s program %s", msisdn, program)

	if rec := audit.FreshRecord(ctx, a.store, program, msisdn, a.cfg.FreshnessWindowMinutes, a.now()); rec != nil {
		metrics.FreshnessHitsTotal.WithLabelValues(name).Inc()
		a.logf("fca: served msisdn %s from audit record %d", msisdn, rec.SortKey)
		return provider.Succeed("Successfully retrieved", rec)
	}
	if a.clientErr != nil {
		return provider.Fail(status.InternalServerError, "%v", a.clientErr)
	}

	pk := audit.PartitionKey(program, msisdn)
	since := a.now().Add(-a.cfg.PollLookback)
	pp := &provider.PushPoll{
		MaxAttempts: a.cfg.MaxRetries,
		Delay:       a.cfg.RetryDelay,
		Trigger: func(ctx context.Context) provider.Ack {
			return a.requestBcallData(ctx, msisdn)
		},
		Lookup: func(ctx context.Context) (*audit.Record, error) {
			return a.store.QueryLatest(ctx, pk, audit.Since(since))
		},
		NotFoundMessage: fmt.Sprintf("No data is available for msisdn: %s", msisdn),
		Logf:            a.logf,
	}
	res := pp.Run(ctx)
	a.logf("fca: get vehicle data for msisdn %s: %s %s", msisdn, res.Status, res.Message)
	return res
}

func (a *Adapter) requestBcallData(ctx context.Context, msisdn string) provider.Ack {
	resp, err := a.client.PostJSON(ctx, a.cfg.BcallDataURL, triggerRequest{MSISDN: msisdn}, a.headers())
	if err != nil {
		a.logf("fca: bcall trigger for msisdn %s: %v", msisdn, err)
		return provider.Ack{
			Status:  status.InternalServerError,
			Message: fmt.Sprintf("Exception calling fca bcall endpoint for msisdn: %s", msisdn),
		}
	}
	if resp.Accepted() && resp.IsJSON() {
		var body ackBody
		if err := resp.Decode(&body); err != nil {
			a.logf("fca: bcall ack for msisdn %s: %v", msisdn, err)
		}
		return provider.Ack{Accepted: true, Message: body.Message.String()}
	}
	code, msg := errorDetail(resp)
	a.logf("fca: bcall trigger for msisdn %s rejected: HTTP %d %s", msisdn, resp.StatusCode, code)
	return provider.Ack{Status: Normalize(code), Message: formatError(code, msg)}
}

// Terminate ends a B-call. The reason payload must carry callstatus TERMINATED.
func (a *Adapter) Terminate(ctx context.Context, id provider.Identity, reason json.RawMessage) provider.Result {
	msisdn, err := a.msisdn(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	p, err := provider.ParsePayload(reason)
	if err != nil || p.String("callstatus") != "TERMINATED" {
		a.logf("fca: terminate for msisdn %s: missing or invalid callstatus", msisdn)
		return provider.Fail(status.BadRequest, "callstatus in payload is missing or invalid")
	}
	if a.clientErr != nil {
		return provider.Fail(status.InternalServerError, "%v", a.clientErr)
	}

	resp, err := a.client.PostJSON(ctx, a.cfg.TerminateBcallURL,
		terminateRequest{MSISDN: msisdn, CallStatus: "TERMINATED"}, a.headers())
	if err != nil {
		a.logf("fca: terminate for msisdn %s: %v", msisdn, err)
		return provider.Fail(status.InternalServerError, "Exception calling fca terminate endpoint for msisdn: %s", msisdn)
	}
	if resp.Accepted() && resp.IsJSON() {
		var body ackBody
		resp.Decode(&body)
		msg := body.Message.String()
		if msg == "" {
			msg = "Successfully terminated the call"
		}
		a.logf("fca: terminated call for msisdn %s", msisdn)
		return provider.Result{Status: status.Success, Message: msg}
	}
	code, msg := errorDetail(resp)
	s := Normalize(code)
	a.logf("fca: terminate for msisdn %s: %s %s", msisdn, s, code)
	return provider.Result{Status: s, Message: formatError(code, msg)}
}

// SaveVehicleData stores a B-call data push as the current audit record and
// keeps the device detail as a supplement.
func (a *Adapter) SaveVehicleData(ctx context.Context, id provider.Identity, payload json.RawMessage) provider.Result {
	msisdn, err := a.msisdn(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	invalid := provider.Fail(status.BadRequest, "SaveVehicleData: Json payload is invalid for msisdn: %s", msisdn)

	p, err := provider.ParsePayload(payload)
	if err != nil || !p.Has("Data", "customExtension") {
		a.logf("fca: save for msisdn %s: invalid payload", msisdn)
		return invalid
	}
	data, _ := p.Object("Data")
	ext, _ := data.Object("customExtension")
	if ext.Present("vehicleDataUpload") && !ext.Has("vehicleDataUpload") {
		a.logf("fca: save for msisdn %s: null vehicleDataUpload", msisdn)
		return invalid
	}

	var req vehicleDataRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		a.logf("fca: save for msisdn %s: %v", msisdn, err)
		return invalid
	}
	block := &req.Data.CustomExtension.extensionBlock
	if block.VehicleInfo == nil && req.Data.CustomExtension.VehicleDataUpload != nil {
		block = req.Data.CustomExtension.VehicleDataUpload
	}
	if block.VehicleInfo == nil {
		a.logf("fca: save for msisdn %s: no vehicleInfo", msisdn)
		return invalid
	}

	rec := mapRecord(string(id.Program), msisdn, &req, block, a.now())
	if err := a.store.Put(ctx, rec); err != nil {
		a.logf("fca: save for msisdn %s: %v", msisdn, err)
		return provider.Fail(status.InternalServerError, "Unable to save the vehicledata for msisdn: %s", msisdn)
	}
	a.saveSupplement(ctx, rec, &req, block)

	a.logf("fca: saved vehicle data for msisdn %s at %d", msisdn, rec.SortKey)
	return provider.Succeed(fmt.Sprintf("Successfully saved the vehicledata for msisdn: %s", msisdn), rec)
}

func (a *Adapter) saveSupplement(ctx context.Context, rec *audit.Record, req *vehicleDataRequest, block *extensionBlock) {
	ss, ok := a.store.(audit.SupplementStore)
	if !ok {
		return
	}
	loc := block.VehicleInfo.VehicleLocation
	sup := supplement{
		CallCenterNumber:                req.Data.CallCenterNumber.String(),
		Device:                          block.Device,
		DistanceRemainingForNextService: block.DistanceRemainingForNextService,
		DaysRemainingForNextService:     block.DaysRemainingForNextService,
		EstimatedPositionError:          loc.EstimatedPositionError,
		EstimatedAltitudeError:          loc.EstimatedAltitudeError,
		IsGPSFixNotAvailable:            loc.IsGPSFixNotAvailable,
		GPSFixType:                      loc.GPSFixTypeEnum.String(),
		ErrorTellTale:                   nonNull(block.ErrorTellTale),
		FuelRemaining:                   block.FuelRemaining,
		StateOfCharge:                   block.StateOfCharge,
		TirePressure:                    nonNull(block.TirePressure),
	}
	sup.Device = nonNull(sup.Device)
	data, err := json.Marshal(sup)
	if err != nil {
		a.logf("fca: supplement for %s: %v", rec.PartitionKey, err)
		return
	}
	err = ss.PutSupplement(ctx, &audit.Supplement{
		PartitionKey: rec.PartitionKey,
		SortKey:      rec.SortKey,
		Program:      rec.Program,
		Subscriber:   rec.Subscriber,
		Data:         data,
	})
	if err != nil {
		a.logf("fca: supplement for %s: %v", rec.PartitionKey, err)
	}
}

func mapRecord(program, msisdn string, req *vehicleDataRequest, block *extensionBlock, now time.Time) *audit.Record {
	vi := block.VehicleInfo
	loc := vi.VehicleLocation

	rec := audit.NewRecord(program, msisdn, now)
	rec.Status = status.Success
	rec.MSISDN = msisdn
	rec.EventID = req.EventID.String()
	if req.Timestamp > 0 {
		rec.Timestamp = audit.FromEpoch(int64(req.Timestamp))
	}
	rec.CallDate = rec.Timestamp.Format("2006-01-02")
	rec.CallTime = rec.Timestamp.Format("15:04")
	rec.CountryCode = vi.Country.String()
	rec.Language = vi.Language.String()
	rec.Latitude = float64(req.Data.Latitude)
	if loc.PositionLatitude != nil {
		rec.Latitude = float64(*loc.PositionLatitude)
	}
	rec.Longitude = float64(req.Data.Longitude)
	if loc.PositionLongitude != nil {
		rec.Longitude = float64(*loc.PositionLongitude)
	}
	if loc.PositionAltitude != nil {
		rec.Altitude = loc.PositionAltitude.Format()
	}
	if loc.PositionDirection != nil {
		rec.HeadingDirection = loc.PositionDirection.Format()
	}
	rec.VIN = vi.VIN.String()
	rec.Brand = vi.Brand.String()
	rec.ModelName = vi.Model.String()
	rec.ModelYear = vi.Year.String()
	if vi.Odometer != nil {
		rec.Odometer = vi.Odometer.Format()
	}
	rec.SetExtra("service_type", req.Data.BcallType.String())
	rec.SetExtra("call_reason", req.Data.CallReason.String())
	rec.SetExtra("call_trigger", req.Data.CallTrigger.String())
	rec.SetExtra("call_type", block.CallType.String())
	rec.SetExtra("vehicle_type", vi.VehicleType.String())
	rec.SetExtra("engine_status", vi.EngineStatusEnum.String())
	if vi.VehicleSpeed != nil {
		rec.SetExtra("vehicle_speed", vi.VehicleSpeed.Format())
	}
	return rec
}

// errorDetail extracts an error code and message from a rejected reply. JSON
// bodies may be a single object or a list whose first entry is used. Anything
// else falls back to the HTTP reason and raw text.
func errorDetail(resp *upstream.Response) (code, msg string) {
	if resp.IsJSON() {
		var eb errorBody
		if resp.DecodeFirst(&eb) == nil {
			code = eb.DetailedErrorCode.String()
			if code == "" {
				code = eb.Error.String()
			}
			if code == "" {
				code = "NA"
			}
			msg = eb.Message.String()
			if msg == "" {
				msg = "NA"
			}
			return code, msg
		}
	}
	return resp.Reason, resp.Text()
}

func formatError(code, msg string) string {
	if msg == "" {
		return code
	}
	return code + ", " + msg
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	return raw
}
