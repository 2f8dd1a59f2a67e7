package vodafone

import (
	"encoding/json"

	"cvgateway/provider"
)

type measure struct {
	Value provider.Text `json:"value"`
	Unit  provider.Text `json:"unit"`
}

// vehicleDataRequest is the Porsche vehicle push relayed by Vodafone.
type vehicleDataRequest struct {
	CountryCode provider.Text   `json:"countryCode"`
	Timestamp   provider.Number `json:"timestamp"`
	GPSData     struct {
		Latitude  provider.Number `json:"latitude"`
		Longitude provider.Number `json:"longitude"`
	} `json:"gpsData"`
	UserData struct {
		PhoneContact provider.Text `json:"phoneContact"`
	} `json:"userData"`
	VehicleData struct {
		VIN          provider.Text `json:"vin"`
		Registration struct {
			Number      provider.Text `json:"number"`
			StateCode   provider.Text `json:"stateCode"`
			CountryCode provider.Text `json:"countryCode"`
		} `json:"registration"`
		CrankInhibition     provider.Text   `json:"crankInhibition"`
		IgnitionKey         provider.Text   `json:"ignitionKey"`
		Mileage             measure         `json:"mileage"`
		FuelLevelPercentage provider.Text   `json:"fuelLevelPercentage"`
		EVBatteryPercentage provider.Text   `json:"evBatteryPercentage"`
		Range               measure         `json:"range"`
		TyrePressureDelta   json.RawMessage `json:"tyrePressureDelta"`
	} `json:"vehicleData"`
}

type supplement struct {
	RegistrationNumber      string          `json:"registration_number,omitempty"`
	RegistrationStateCode   string          `json:"registration_state_code,omitempty"`
	RegistrationCountryCode string          `json:"registration_country_code,omitempty"`
	CrankInhibition         string          `json:"crank_inhibition,omitempty"`
	IgnitionKey             string          `json:"ignition_key,omitempty"`
	EVBatteryPercentage     string          `json:"ev_battery_percentage,omitempty"`
	FuelLevelPercentage     string          `json:"fuel_level_percentage,omitempty"`
	Range                   string          `json:"range,omitempty"`
	RangeUnit               string          `json:"range_unit,omitempty"`
	TyrePressureDelta       json.RawMessage `json:"tyre_pressure_delta,omitempty"`
}
