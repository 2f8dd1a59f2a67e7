// Package aeris adapts the Aeris vehicle data REST API used for VW Car-Net 2.0.
package aeris

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"cvgateway/audit"
	"cvgateway/config"
	"cvgateway/identity"
	"cvgateway/metrics"
	"cvgateway/provider"
	"cvgateway/status"
	"cvgateway/upstream"
)

const name = "aeris"

type dataEnvelope struct {
	Data  *vehicleData `json:"data"`
	Error *errorBody   `json:"error"`
}

type vehicleData struct {
	CallDate       provider.Text `json:"callDate"`
	CallTime       provider.Text `json:"callTime"`
	Odometer       provider.Text `json:"odometer"`
	OdometerScale  *int          `json:"odometerScale"`
	ActivationType provider.Text `json:"activationType"`
	Location       struct {
		Latitude         provider.Number `json:"latitude"`
		Longitude        provider.Number `json:"longitude"`
		HeadingDirection provider.Text   `json:"headingDirection"`
	} `json:"location"`
	Vehicle struct {
		VIN       provider.Text `json:"vin"`
		Brand     provider.Text `json:"brand"`
		ModelName provider.Text `json:"modelName"`
		ModelYear provider.Text `json:"modelYear"`
		ModelCode provider.Text `json:"modelCode"`
		ModelDesc provider.Text `json:"modelDesc"`
		OcuSim    struct {
			Market provider.Text `json:"market"`
		} `json:"ocuSim"`
	} `json:"vehicle"`
}

type errorBody struct {
	Status           provider.Text `json:"status"`
	ErrorCode        provider.Text `json:"errorCode"`
	ErrorDescription provider.Text `json:"errorDescription"`
}

// Adapter implements VehicleDataGetter.
type Adapter struct {
	cfg       config.AerisConfig
	store     audit.Store
	client    *upstream.Client
	clientErr error
	logf      provider.LogFunc
	now       func() time.Time
}

func New(cfg config.AerisConfig, store audit.Store, logf provider.LogFunc) *Adapter {
	if logf == nil {
		logf = log.Printf
	}
	client, err := upstream.NewClient(name, cfg.BaseURL, cfg.Timeout, cfg.RootCert)
	return &Adapter{cfg: cfg, store: store, client: client, clientErr: err, logf: logf, now: time.Now}
}

func (a *Adapter) Name() string { return name }

// GetVehicleData fetches vehicle data for an msisdn and keeps an audit copy.
// A failed audit write does not change the outcome.
func (a *Adapter) GetVehicleData(ctx context.Context, id provider.Identity) provider.Result {
	msisdn, err := identity.Normalize(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	program := string(id.Program)
	a.logf("aeris: get vehicle data for msisdn %s program %s", msisdn, program)

	if a.cfg.FreshnessCheck {
		if rec := audit.FreshRecord(ctx, a.store, program, msisdn, a.cfg.FreshnessWindowMinutes, a.now()); rec != nil {
			metrics.FreshnessHitsTotal.WithLabelValues(name).Inc()
			a.logf("aeris: served msisdn %s from audit record %d", msisdn, rec.SortKey)
			return provider.Succeed("Successfully retrieved", rec)
		}
	}
	if a.clientErr != nil {
		return provider.Fail(status.InternalServerError, "%v", a.clientErr)
	}

	resp, err := a.client.Get(ctx, "/"+msisdn, nil)
	if err != nil {
		if ctx.Err() != nil {
			return provider.Fail(status.Canceled, "request canceled: %v", ctx.Err())
		}
		a.logf("aeris: get vehicle data for msisdn %s: %v", msisdn, err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	a.logf("aeris: msisdn %s answered HTTP %d", msisdn, resp.StatusCode)

	var env dataEnvelope
	decoded := resp.IsJSON() && json.Unmarshal(resp.Body, &env) == nil
	if resp.StatusCode == 200 && decoded && env.Data != nil {
		rec, err := mapRecord(program, msisdn, env.Data, a.now())
		if err != nil {
			a.logf("aeris: map vehicle data for msisdn %s: %v", msisdn, err)
			return provider.Fail(status.InternalServerError, "%v", err)
		}
		if err := a.store.Put(ctx, rec); err != nil {
			metrics.AuditWriteFailuresTotal.WithLabelValues(name).Inc()
			a.logf("aeris: audit write for msisdn %s: %v", msisdn, err)
		}
		return provider.Succeed("Successfully retrieved", rec)
	}

	eb := errorBody{
		Status:           provider.Text(resp.Reason),
		ErrorCode:        provider.Text(resp.Reason),
		ErrorDescription: provider.Text(resp.Text()),
	}
	if decoded && env.Error != nil {
		eb = *env.Error
	}
	s := Normalize(eb.Status.String())
	a.logf("aeris: get vehicle data for msisdn %s: %s %s", msisdn, s, eb.Status)
	return provider.Result{Status: s, Message: errorMessage(&eb)}
}

func errorMessage(eb *errorBody) string {
	msg := eb.ErrorCode.String()
	if d := eb.ErrorDescription.String(); d != "" {
		msg += ", " + d
	}
	return msg
}

func mapRecord(program, msisdn string, d *vehicleData, now time.Time) (*audit.Record, error) {
	rec := audit.NewRecord(program, msisdn, now)
	rec.Status = status.Success
	rec.Message = "Successfully retrieved"
	rec.MSISDN = msisdn
	rec.CallDate = d.CallDate.String()
	rec.CallTime = d.CallTime.String()
	if rec.CallDate != "" && rec.CallTime != "" {
		ts, err := time.Parse("2006-01-02 15:04", rec.CallDate+" "+rec.CallTime)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = ts.UTC()
	}
	rec.Odometer = d.Odometer.String()
	if d.OdometerScale != nil {
		rec.OdometerScale = provider.OdometerScale(*d.OdometerScale)
	}
	rec.Latitude = float64(d.Location.Latitude)
	rec.Longitude = float64(d.Location.Longitude)
	rec.HeadingDirection = d.Location.HeadingDirection.String()
	rec.VIN = d.Vehicle.VIN.String()
	rec.Brand = d.Vehicle.Brand.String()
	rec.ModelName = d.Vehicle.ModelName.String()
	rec.ModelYear = d.Vehicle.ModelYear.String()
	rec.ModelCode = d.Vehicle.ModelCode.String()
	rec.ModelDesc = d.Vehicle.ModelDesc.String()
	rec.SetExtra("activation_type", d.ActivationType.String())
	rec.SetExtra("market", d.Vehicle.OcuSim.Market.String())
	return rec, nil
}
