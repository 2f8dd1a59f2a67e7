package siriusxm

import (
	"encoding/xml"

	"cvgateway/provider"
)

// savePayload is the roadside push SiriusXM posts for a reference id.
// Position arrives either as geolocation "lat~lon" or as separate fields.
type savePayload struct {
	ReferenceID provider.Text `json:"referenceid"`
	ANI         provider.Text `json:"ani"`
	VIN         provider.Text `json:"vin"`
	Language    provider.Text `json:"language"`
	Geolocation provider.Text `json:"geolocation"`
	Latitude    provider.Text `json:"latitude"`
	Longitude   provider.Text `json:"longitude"`
}

type agentAssignedRequest struct {
	XMLName     xml.Name
	ReferenceID string `xml:"reference-id"`
	IsAssigned  bool   `xml:"is-assigned"`
}

type terminateRequest struct {
	XMLName     xml.Name
	ReferenceID string `xml:"reference-id"`
	ReasonCode  string `xml:"reason-code,omitempty"`
}

// resultResponse is the reply shape shared by agentAssigned and terminate.
type resultResponse struct {
	ReferenceID string  `xml:"reference-id"`
	ResultCode  string  `xml:"result-code"`
	ResultMsg   *string `xml:"result-msg"`
}
