package www

import (
	"time"

	"cvgateway/audit"
)

type healthResponse struct {
	Success         bool   `json:"success"`
	ResponseMessage string `json:"responsemessage"`
}

type vehicleHeader struct {
	CountryCode   string     `json:"countrycode,omitempty"`
	Language      string     `json:"language,omitempty"`
	ProgramCode   string     `json:"programcode,omitempty"`
	Version       string     `json:"version,omitempty"`
	ReferenceID   string     `json:"referenceid,omitempty"`
	EventID       string     `json:"eventid,omitempty"`
	MSISDN        string     `json:"msisdn,omitempty"`
	CallDate      string     `json:"calldate,omitempty"`
	CallTime      string     `json:"calltime,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Odometer      string     `json:"odometer,omitempty"`
	OdometerScale string     `json:"odometerscale,omitempty"`
}

type vehicleLocation struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	HeadingDirection string  `json:"headingdirection,omitempty"`
}

type vehicleBrand struct {
	BrandName string `json:"brandname,omitempty"`
	ModelName string `json:"modelname,omitempty"`
	ModelYear string `json:"modelyear,omitempty"`
	ModelCode string `json:"modelcode,omitempty"`
	ModelDesc string `json:"modeldesc,omitempty"`
}

type vehicleInfo struct {
	VIN         string        `json:"vin,omitempty"`
	Brand       *vehicleBrand `json:"brand,omitempty"`
	Mileage     string        `json:"mileage,omitempty"`
	MileageUnit string        `json:"mileageunit,omitempty"`
}

type vehicleDataResponse struct {
	Header          vehicleHeader   `json:"header"`
	Location        vehicleLocation `json:"location"`
	Vehicle         vehicleInfo     `json:"vehicle"`
	Status          int             `json:"status"`
	ResponseMessage string          `json:"responsemessage"`
}

func newVehicleDataResponse(rec *audit.Record, version, message string) vehicleDataResponse {
	resp := vehicleDataResponse{
		Header: vehicleHeader{
			CountryCode:   rec.CountryCode,
			Language:      rec.Language,
			ProgramCode:   rec.Program,
			Version:       version,
			ReferenceID:   rec.ReferenceID,
			EventID:       rec.EventID,
			MSISDN:        rec.MSISDN,
			CallDate:      rec.CallDate,
			CallTime:      rec.CallTime,
			Odometer:      rec.Odometer,
			OdometerScale: rec.OdometerScale,
		},
		Location: vehicleLocation{
			Latitude:         rec.Latitude,
			Longitude:        rec.Longitude,
			HeadingDirection: rec.HeadingDirection,
		},
		Vehicle: vehicleInfo{
			VIN:         rec.VIN,
			Mileage:     rec.Mileage,
			MileageUnit: rec.MileageUnit,
		},
		Status:          200,
		ResponseMessage: message,
	}
	if !rec.Timestamp.IsZero() {
		ts := rec.Timestamp
		resp.Header.Timestamp = &ts
	}
	if rec.Brand != "" || rec.ModelName != "" || rec.ModelYear != "" || rec.ModelCode != "" || rec.ModelDesc != "" {
		resp.Vehicle.Brand = &vehicleBrand{
			BrandName: rec.Brand,
			ModelName: rec.ModelName,
			ModelYear: rec.ModelYear,
			ModelCode: rec.ModelCode,
			ModelDesc: rec.ModelDesc,
		}
	}
	return resp
}

type agentAssignmentResponse struct {
	ReferenceID   string `json:"reference_id"`
	AgentAssigned bool   `json:"agent_assigned"`
	Status        int    `json:"status"`
}

type terminateResponse struct {
	ReferenceID string `json:"reference_id,omitempty"`
	MSISDN      string `json:"msisdn,omitempty"`
	Status      int    `json:"status"`
}

type saveResponse struct {
	MSISDN          string `json:"msisdn"`
	Status          int    `json:"status"`
	ResponseMessage string `json:"responsemessage"`
}
