// Package upstream is the REST transport shared by the JSON providers.
package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for one provider. rootCert, when set, is a PEM file
// that replaces the system roots for this provider.
func NewClient(name, baseURL string, timeout time.Duration, rootCert string) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if rootCert != "" {
		pem, err := os.ReadFile(rootCert)
		if err != nil {
			return nil, fmt.Errorf("%s root cert: %w", name, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%s root cert %s: no certificates found", name, rootCert)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Response is a fully read upstream reply. Non-2xx replies are returned as
// responses, not errors, so adapters can normalize the provider's vocabulary.
type Response struct {
	StatusCode  int
	Reason      string
	ContentType string
	Body        []byte
}

// Accepted reports a 200 or 202 reply.
func (r *Response) Accepted() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusAccepted
}

func (r *Response) IsJSON() bool { return r.mediaType() == "application/json" }

func (r *Response) IsXML() bool {
	mt := r.mediaType()
	return mt == "text/xml" || mt == "application/xml" || strings.HasSuffix(mt, "+xml")
}

func (r *Response) mediaType() string {
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(r.ContentType))
	}
	return mt
}

// Decode unmarshals a JSON body.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode HTTP %d body: %w", r.StatusCode, err)
	}
	return nil
}

// DecodeFirst unmarshals a JSON body that is either a single object or a list,
// in which case the first entry is used.
func (r *Response) DecodeFirst(v any) error {
	body := bytes.TrimSpace(r.Body)
	if len(body) > 0 && body[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return fmt.Errorf("decode HTTP %d body: %w", r.StatusCode, err)
		}
		if len(list) == 0 {
			return fmt.Errorf("decode HTTP %d body: empty list", r.StatusCode)
		}
		body = list[0]
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode HTTP %d body: %w", r.StatusCode, err)
	}
	return nil
}

// Text returns the body as trimmed text.
func (r *Response) Text() string { return strings.TrimSpace(string(r.Body)) }

func (c *Client) Get(ctx context.Context, path string, header http.Header) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, "", nil, header)
}

// PostJSON marshals body and posts it.
func (c *Client) PostJSON(ctx context.Context, path string, body any, header http.Header) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s marshal: %w", c.name, err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", data, header)
}

func (c *Client) Post(ctx context.Context, path, contentType string, body []byte, header http.Header) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, contentType, body, header)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, header http.Header) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", c.name, method, path, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", c.name, method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", c.name, err)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		Reason:      reason(resp),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func reason(resp *http.Response) string {
	r := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if r == "" || r == resp.Status {
		return http.StatusText(resp.StatusCode)
	}
	return r
}
