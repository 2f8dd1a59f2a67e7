package soap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cvgateway/upstream"
)

// Client posts SOAP envelopes to one service address.
type Client struct {
	url  string
	http *upstream.Client
}

func NewClient(name, url string, timeout time.Duration, rootCert string) (*Client, error) {
	hc, err := upstream.NewClient(name, url, timeout, rootCert)
	if err != nil {
		return nil, err
	}
	return &Client{url: url, http: hc}, nil
}

// URL returns the service address the client was built for.
func (c *Client) URL() string { return c.url }

// Call sends body under the given SOAPAction and decodes the reply.
// Transport failures, faults and undecodable replies are returned as errors.
func (c *Client) Call(ctx context.Context, action string, header, body, outHeader, outBody any) error {
	payload, err := Encode(header, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(ctx, "", "text/xml; charset=utf-8", payload,
		http.Header{"SOAPAction": {`"` + action + `"`}})
	if err != nil {
		return err
	}
	if !resp.IsXML() {
		return fmt.Errorf("soap HTTP %d: %s", resp.StatusCode, resp.Text())
	}
	if err := Decode(resp.Body, outHeader, outBody); err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("soap HTTP %d: %s", resp.StatusCode, resp.Reason)
	}
	return nil
}

// WSDL fetches the service description. Providers use it as a health check.
func (c *Client) WSDL(ctx context.Context) (*upstream.Response, error) {
	return c.http.Get(ctx, "?wsdl", nil)
}
