// Package tmna adapts the Toyota Motor North America call termination API.
package tmna

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"cvgateway/config"
	"cvgateway/provider"
	"cvgateway/status"
	"cvgateway/upstream"
)

const name = "tmna"

type resultBody struct {
	ResultCode    provider.Text `json:"resultCode"`
	Error         provider.Text `json:"error"`
	ResultMessage provider.Text `json:"resultMessage"`
	Message       provider.Text `json:"message"`
}

// Adapter implements Terminator.
type Adapter struct {
	cfg       config.TMNAConfig
	client    *upstream.Client
	clientErr error
	logf      provider.LogFunc
}

func New(cfg config.TMNAConfig, logf provider.LogFunc) *Adapter {
	if logf == nil {
		logf = log.Printf
	}
	client, err := upstream.NewClient(name, cfg.BaseURL, cfg.Timeout, cfg.RootCert)
	return &Adapter{cfg: cfg, client: client, clientErr: err, logf: logf}
}

func (a *Adapter) Name() string { return name }

// Terminate forwards the termination payload for an event id. The payload must
// carry a non-blank eventId plus callEndIntentional and dispositionType.
func (a *Adapter) Terminate(ctx context.Context, id provider.Identity, reason json.RawMessage) provider.Result {
	eventID := id.Subscriber
	p, err := provider.ParsePayload(reason)
	if err != nil || strings.TrimSpace(p.String("eventId")) == "" || !p.Present("callEndIntentional") || !p.Present("dispositionType") {
		a.logf("tmna: terminate for event %s: payload is missing or invalid", eventID)
		return provider.Fail(status.BadRequest, "Payload is missing or invalid")
	}
	if a.clientErr != nil {
		return provider.Fail(status.InternalServerError, "%v", a.clientErr)
	}

	resp, err := a.client.Post(ctx, a.cfg.TerminateURL, "application/json", reason, nil)
	if err != nil {
		if ctx.Err() != nil {
			return provider.Fail(status.Canceled, "request canceled: %v", ctx.Err())
		}
		a.logf("tmna: terminate for event %s: %v", eventID, err)
		return provider.Fail(status.InternalServerError, "%v", err)
	}
	if resp.Accepted() && resp.IsJSON() {
		var body resultBody
		resp.Decode(&body)
		msg := body.ResultMessage.String()
		if msg == "" {
			msg = "Successfully terminated the call"
		}
		a.logf("tmna: terminated call for event %s", eventID)
		return provider.Result{Status: status.Success, Message: msg}
	}

	code, msg := errorDetail(resp)
	s := Normalize(code)
	a.logf("tmna: terminate for event %s: %s HTTP %d %s", eventID, s, resp.StatusCode, code)
	if msg != "" {
		msg = code + ", " + msg
	} else {
		msg = code
	}
	return provider.Result{Status: s, Message: msg}
}

func errorDetail(resp *upstream.Response) (code, msg string) {
	var body resultBody
	if resp.IsJSON() && resp.DecodeFirst(&body) == nil {
		code = firstNonBlank(body.ResultCode.String(), body.Error.String(), "NA")
		msg = firstNonBlank(body.ResultMessage.String(), body.Message.String(), "NA")
		return code, msg
	}
	return resp.Reason, resp.Text()
}

func firstNonBlank(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
