// Package vodafone serves Porsche vehicle data. Vodafone pushes the data to
// the gateway and reads are answered from the audit store.
package vodafone

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"cvgateway/audit"
	"cvgateway/config"
	"cvgateway/identity"
	"cvgateway/provider"
	"cvgateway/status"
)

const name = "vodafone"

// Adapter implements VehicleDataGetter, VehicleDataSaver and VehicleInfoSaver.
type Adapter struct {
	cfg   config.VodafoneConfig
	store audit.Store
	logf  provider.LogFunc
	now   func() time.Time
}

func New(cfg config.VodafoneConfig, store audit.Store, logf provider.LogFunc) *Adapter {
	if logf == nil {
		logf = log.Printf
	}
	return &Adapter{cfg: cfg, store: store, logf: logf, now: time.Now}
}

func (a *Adapter) Name() string { return name }

// ReformatMSISDN prefixes the North American country code to 10 digit numbers.
func ReformatMSISDN(msisdn string) string {
	return identity.PrefixCountryCode(msisdn)
}

func msisdnOf(raw string) (string, error) {
	v, err := identity.Normalize(raw)
	if err != nil {
		return "", err
	}
	return ReformatMSISDN(v), nil
}

// GetVehicleData returns the latest saved record for the msisdn.
func (a *Adapter) GetVehicleData(ctx context.Context, id provider.Identity) provider.Result {
	msisdn, err := msisdnOf(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	rec, err := a.store.QueryLatest(ctx, audit.PartitionKey(string(id.Program), msisdn), nil)
	if err != nil {
		a.logf("vodafone: get vehicle data for msisdn %s: %v", msisdn, err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	if rec == nil {
		a.logf("vodafone: no data for msisdn %s", msisdn)
		return provider.Fail(status.NotFound, "No data found")
	}
	return provider.Succeed("Successfully retrieved", rec)
}

// SaveVehicleInfo saves a push whose msisdn is carried in userData.phoneContact.
func (a *Adapter) SaveVehicleInfo(ctx context.Context, program provider.Program, payload json.RawMessage) provider.Result {
	p, err := provider.ParsePayload(payload)
	if err != nil || !p.Has("userData", "phoneContact") {
		return provider.Fail(status.BadRequest, "Missing PhoneContact/Msisdn")
	}
	user, _ := p.Object("userData")
	id := provider.Identity{Program: program, Version: provider.V1, Subscriber: user.String("phoneContact")}
	return a.SaveVehicleData(ctx, id, payload)
}

// SaveVehicleData stores the push as the current record and keeps registration,
// fuel, range and tyre detail as a supplement.
func (a *Adapter) SaveVehicleData(ctx context.Context, id provider.Identity, payload json.RawMessage) provider.Result {
	msisdn, err := msisdnOf(id.Subscriber)
	if err != nil {
		return provider.Fail(status.BadRequest, "%v", err)
	}
	invalid := provider.Fail(status.BadRequest, "SaveVehicleData: Json payload is invalid for msisdn: %s", msisdn)
	p, err := provider.ParsePayload(payload)
	if err != nil || !p.Has("gpsData") || !p.Has("userData") || !p.Has("vehicleData") {
		a.logf("vodafone: save for msisdn %s: invalid payload", msisdn)
		return invalid
	}
	var req vehicleDataRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		a.logf("vodafone: save for msisdn %s: %v", msisdn, err)
		return invalid
	}

	rec := audit.NewRecord(string(id.Program), msisdn, a.now())
	rec.Status = status.Success
	rec.MSISDN = msisdn
	if req.Timestamp > 0 {
		rec.Timestamp = audit.FromEpoch(int64(req.Timestamp))
	}
	rec.CallDate = rec.Timestamp.Format("2006-01-02")
	rec.CallTime = rec.Timestamp.Format("15:04")
	rec.CountryCode = req.CountryCode.String()
	rec.Latitude = float64(req.GPSData.Latitude)
	rec.Longitude = float64(req.GPSData.Longitude)
	rec.VIN = req.VehicleData.VIN.String()
	rec.Brand = strings.ToUpper(string(id.Program))
	rec.Mileage = req.VehicleData.Mileage.Value.String()
	rec.MileageUnit = provider.MileageUnit(req.VehicleData.Mileage.Unit.String())
	rec.Raw = payload

	if err := a.store.Put(ctx, rec); err != nil {
		a.logf("vodafone: save for msisdn %s: %v", msisdn, err)
		return provider.Fail(status.InternalServerError, "Unable to save the vehicledata for msisdn: %s", msisdn)
	}
	a.saveSupplement(ctx, rec, &req)

	a.logf("vodafone: saved vehicle data for msisdn %s at %d", msisdn, rec.SortKey)
	return provider.Succeed(fmt.Sprintf("Successfully saved the vehicledata for msisdn: %s", msisdn), rec)
}

func (a *Adapter) saveSupplement(ctx context.Context, rec *audit.Record, req *vehicleDataRequest) {
	ss, ok := a.store.(audit.SupplementStore)
	if !ok {
		return
	}
	vd := &req.VehicleData
	data, err := json.Marshal(supplement{
		RegistrationNumber:      vd.Registration.Number.String(),
		RegistrationStateCode:   vd.Registration.StateCode.String(),
		RegistrationCountryCode: vd.Registration.CountryCode.String(),
		CrankInhibition:         vd.CrankInhibition.String(),
		IgnitionKey:             vd.IgnitionKey.String(),
		EVBatteryPercentage:     vd.EVBatteryPercentage.String(),
		FuelLevelPercentage:     vd.FuelLevelPercentage.String(),
		Range:                   vd.Range.Value.String(),
		RangeUnit:               vd.Range.Unit.String(),
		TyrePressureDelta:       vd.TyrePressureDelta,
	})
	if err != nil {
		a.logf("vodafone: supplement for %s: %v", rec.PartitionKey, err)
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
		a.logf("vodafone: supplement for %s: %v", rec.PartitionKey, err)
	}
}
