package fca

import (
	"encoding/json"

	"cvgateway/provider"
)

// vehicleDataRequest is the B-call data push FCA posts after a trigger.
type vehicleDataRequest struct {
	Data      callData        `json:"Data"`
	EventID   provider.Text   `json:"EventID"`
	Timestamp provider.Number `json:"Timestamp"`
	Version   provider.Text   `json:"Version"`
}

type callData struct {
	CallCenterNumber provider.Text   `json:"callCenterNumber"`
	BcallType        provider.Text   `json:"bcallType"`
	CallTrigger      provider.Text   `json:"callTrigger"`
	CallReason       provider.Text   `json:"callReason"`
	CustomExtension  customExtension `json:"customExtension"`
	Language         provider.Text   `json:"language"`
	Latitude         provider.Number `json:"latitude"`
	Longitude        provider.Number `json:"longitude"`
	FuelRemaining    provider.Number `json:"fuelRemaining"`
	EngineStatus     provider.Text   `json:"engineStatus"`
}

// extensionBlock is shared by customExtension and its vehicleDataUpload variant.
type extensionBlock struct {
	CallCenterNumber                provider.Text    `json:"callCenterNumber"`
	CallReasonEnum                  provider.Text    `json:"CallReasonEnum"`
	CallTriggerEnum                 provider.Text    `json:"callTriggerEnum"`
	CallType                        provider.Text    `json:"calltype"`
	DaysRemainingForNextService     *provider.Number `json:"daysRemainingForNextService"`
	DistanceRemainingForNextService *provider.Number `json:"distanceRemainingForNextService"`
	Device                          json.RawMessage  `json:"device"`
	ErrorTellTale                   json.RawMessage  `json:"errorTellTale"`
	FuelRemaining                   *provider.Number `json:"fuelRemaining"`
	StateOfCharge                   *provider.Number `json:"stateofCharge"`
	TirePressure                    json.RawMessage  `json:"tirePressure"`
	VehicleInfo                     *vehicleInfo     `json:"vehicleInfo"`
}

type customExtension struct {
	extensionBlock
	VehicleDataUpload *extensionBlock `json:"vehicleDataUpload"`
}

type vehicleInfo struct {
	VehicleLocation  vehicleLocation  `json:"vehicleLocation"`
	VehicleSpeed     *provider.Number `json:"vehicleSpeed"`
	Odometer         *provider.Number `json:"odometer"`
	EngineStatusEnum provider.Text    `json:"engineStatusEnum"`
	Language         provider.Text    `json:"language"`
	Country          provider.Text    `json:"country"`
	VehicleType      provider.Text    `json:"vehicleType"`
	VIN              provider.Text    `json:"vin"`
	Brand            provider.Text    `json:"brand"`
	Model            provider.Text    `json:"model"`
	Year             provider.Text    `json:"year"`
}

type vehicleLocation struct {
	PositionLatitude       *provider.Number `json:"positionLatitude"`
	PositionLongitude      *provider.Number `json:"positionLongitude"`
	EstimatedPositionError *provider.Number `json:"estimatedPositionError"`
	PositionAltitude       *provider.Number `json:"positionAltitude"`
	GPSFixTypeEnum         provider.Text    `json:"gpsFixTypeEnum"`
	IsGPSFixNotAvailable   *bool            `json:"isGPSFixNotAvailable"`
	EstimatedAltitudeError *provider.Number `json:"estimatedAltitudeError"`
	PositionDirection      *provider.Number `json:"positionDirection"`
}

// supplement is the secondary record kept next to each push.
type supplement struct {
	CallCenterNumber                string           `json:"callCenterNumber,omitempty"`
	Device                          json.RawMessage  `json:"device,omitempty"`
	DistanceRemainingForNextService *provider.Number `json:"distanceRemainingForNextService,omitempty"`
	DaysRemainingForNextService     *provider.Number `json:"daysRemainingForNextService,omitempty"`
	EstimatedPositionError          *provider.Number `json:"estimatedPositionError,omitempty"`
	EstimatedAltitudeError          *provider.Number `json:"estimatedAltitudeError,omitempty"`
	IsGPSFixNotAvailable            *bool            `json:"isGPSFixNotAvailable,omitempty"`
	GPSFixType                      string           `json:"gpsFixType,omitempty"`
	ErrorTellTale                   json.RawMessage  `json:"errorTellTale,omitempty"`
	FuelRemaining                   *provider.Number `json:"fuelRemaining,omitempty"`
	StateOfCharge                   *provider.Number `json:"stateOfCharge,omitempty"`
	TirePressure                    json.RawMessage  `json:"tirePressure,omitempty"`
}

type triggerRequest struct {
	MSISDN string `json:"msisdn"`
}

type terminateRequest struct {
	MSISDN     string `json:"msisdn"`
	CallStatus string `json:"callStatus"`
}

type ackBody struct {
	Message provider.Text `json:"message"`
}

type errorBody struct {
	DetailedErrorCode provider.Text `json:"detailedErrorCode"`
	Error             provider.Text `json:"error"`
	Message           provider.Text `json:"message"`
}
