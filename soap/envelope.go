// Package soap is a small SOAP 1.1 client for the XML providers, plus the
// binding cache that keeps one prepared client per provider.
package soap

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

type requestEnvelope struct {
	XMLName xml.Name       `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Header  *requestHeader `xml:"http://schemas.xmlsoap.org/soap/envelope/ Header,omitempty"`
	Body    requestBody    `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type requestHeader struct {
	Content any
}

type requestBody struct {
	Content any
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Header  struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"Header"`
	Body struct {
		Fault *Fault `xml:"Fault"`
		Inner []byte `xml:",innerxml"`
	} `xml:"Body"`
}

// Fault is a SOAP 1.1 fault returned in place of a response body.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Actor  string `xml:"faultactor"`
	Detail string `xml:"detail"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

// Encode wraps header and body in an envelope. header may be nil.
func Encode(header, body any) ([]byte, error) {
	env := requestEnvelope{Body: requestBody{Content: body}}
	if header != nil {
		env.Header = &requestHeader{Content: header}
	}
	data, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("soap encode: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// Decode parses a response envelope into outHeader and outBody, either of which
// may be nil. outHeader stands for the Header element itself, so its fields match
// the header entries. outBody stands for the first element inside Body. A fault in
// the body is returned as *Fault.
func Decode(data []byte, outHeader, outBody any) error {
	var env responseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("soap decode envelope: %w", err)
	}
	if env.XMLName.Space != "" && env.XMLName.Space != envelopeNS {
		return fmt.Errorf("soap decode: unexpected envelope namespace %q", env.XMLName.Space)
	}
	if env.Body.Fault != nil {
		return env.Body.Fault
	}
	if outHeader != nil && len(strings.TrimSpace(string(env.Header.Inner))) > 0 {
		wrapped := make([]byte, 0, len(env.Header.Inner)+17)
		wrapped = append(wrapped, "<Header>"...)
		wrapped = append(wrapped, env.Header.Inner...)
		wrapped = append(wrapped, "</Header>"...)
		if err := xml.Unmarshal(wrapped, outHeader); err != nil {
			return fmt.Errorf("soap decode header: %w", err)
		}
	}
	if outBody != nil {
		if len(strings.TrimSpace(string(env.Body.Inner))) == 0 {
			return fmt.Errorf("soap decode: empty body")
		}
		if err := xml.Unmarshal(env.Body.Inner, outBody); err != nil {
			return fmt.Errorf("soap decode body: %w", err)
		}
	}
	return nil
}
