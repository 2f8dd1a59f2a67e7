package verizon

import (
	"encoding/xml"
	"strings"
)

type requestHeader struct {
	SourceName    string `xml:"SourceName"`
	TargetName    string `xml:"TargetName"`
	TransactionID string `xml:"TransactionId"`
	Timestamp     string `xml:"Timestamp"`
}

type vehicleLocationRequest struct {
	XMLName          xml.Name
	Header           requestHeader `xml:"Header"`
	CTIInteractionID string        `xml:"CTIInteractionID"`
	MDN              string        `xml:"MDN"`
}

type responseStatus struct {
	ResponseStatus      *string `xml:"ResponseStatus"`
	ResponseDescription *string `xml:"ResponseDescription"`
}

type vehicleLocationResponse struct {
	Response              *responseStatus `xml:"Response"`
	CallDate              string          `xml:"CallDate"`
	CallTime              string          `xml:"CallTime"`
	CustomerFirstName     string          `xml:"CustomerFirstName"`
	CustomerLastName      string          `xml:"CustomerLastName"`
	VehicleYear           string          `xml:"VehicleYear"`
	Make                  string          `xml:"Make"`
	Model                 string          `xml:"Model"`
	VIN                   string          `xml:"VIN"`
	ExteriorColor         string          `xml:"ExteriorColor"`
	FromLocationPhoneNo   string          `xml:"FromLocationPhoneNo"`
	SRNumber              string          `xml:"SRNumber"`
	FromLocationAddress   string          `xml:"FromLocationAddress"`
	FromLocationCity      string          `xml:"FromLocationCity"`
	FromLocationState     string          `xml:"FromLocationState"`
	FromLocationZip       string          `xml:"FromLocationZip"`
	FromLocationCountry   string          `xml:"FromLocationCountry"`
	LocationConfidence    string          `xml:"Location_confidence"`
	LocationTrueness      string          `xml:"Location_trueness"`
	CruisingRange         string          `xml:"Cruising_range"`
	IsMoving              string          `xml:"Is_moving"`
	FromLocationLatitude  string          `xml:"FromLocationLatitude"`
	FromLocationLongitude string          `xml:"FromLocationLongitude"`
	Altitude              string          `xml:"Altitude"`
	DirectionHeading      string          `xml:"Direction_heading"`
	HMILanguage           string          `xml:"Hmi_language"`
}

// flowHeader collects the flow tracking ids from the reply header. They may
// sit at any depth, so elements are matched by local name.
type flowHeader struct {
	FlowEventID       string
	FlowID            string
	CorrelationFlowID string
}

func (h *flowHeader) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 1
	var cur string
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			cur = t.Name.Local
		case xml.EndElement:
			depth--
			cur = ""
		case xml.CharData:
			v := strings.TrimSpace(string(t))
			switch cur {
			case "FlowEventId":
				h.FlowEventID = v
			case "FlowId":
				h.FlowID = v
			case "CorrelationFlowId":
				h.CorrelationFlowID = v
			}
		}
	}
	return nil
}
