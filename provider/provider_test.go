package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cvgateway/status"
)

type getterOnly struct{ res Result }

func (g *getterOnly) Name() string { return "getter" }
func (g *getterOnly) GetVehicleData(ctx context.Context, id Identity) Result {
	return g.res
}

type panicky struct{}

func (panicky) Name() string { return "panicky" }
func (panicky) Health(ctx context.Context) Result {
	panic("boom")
}

type assigner struct {
	ok  bool
	res Result
}

func (a *assigner) Name() string { return "assigner" }
func (a *assigner) AssignAgent(ctx context.Context, asg Assignment) (bool, Result) {
	return a.ok, a.res
}

func TestDispatchUnsupported(t *testing.T) {
	a := &getterOnly{}
	ctx := context.Background()
	id := Identity{Program: FCA, Version: V1, Subscriber: "12345678901"}

	if _, err := SaveVehicleData(ctx, a, id, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SaveVehicleData err = %v, want ErrUnsupported", err)
	}
	if _, err := Terminate(ctx, a, id, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Terminate err = %v, want ErrUnsupported", err)
	}
	if _, err := Health(ctx, a); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Health err = %v, want ErrUnsupported", err)
	}
	if _, err := SaveVehicleInfo(ctx, a, Porsche, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SaveVehicleInfo err = %v, want ErrUnsupported", err)
	}
	if _, _, err := AssignAgent(ctx, a, Assignment{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("AssignAgent err = %v, want ErrUnsupported", err)
	}
}

func TestDispatchGetVehicleData(t *testing.T) {
	a := &getterOnly{res: Succeed("ok", nil)}
	res, err := GetVehicleData(context.Background(), a, Identity{})
	if err != nil {
		t.Fatalf("GetVehicleData: %v", err)
	}
	if res.Status != status.Success {
		t.Errorf("Status = %v, want Success", res.Status)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	res, err := Health(context.Background(), panicky{})
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if res.Status != status.InternalServerError {
		t.Errorf("Status = %v, want InternalServerError", res.Status)
	}
}

func TestDispatchAssignAgentRequiresSuccess(t *testing.T) {
	a := &assigner{ok: true, res: Fail(status.NotFound, "REFERENCE_ID_NOT_FOUND")}
	ok, res, err := AssignAgent(context.Background(), a, Assignment{ReferenceID: "R1"})
	if err != nil {
		t.Fatalf("AssignAgent: %v", err)
	}
	if ok {
		t.Error("assigned = true with non-success status")
	}
	if res.Status != status.NotFound {
		t.Errorf("Status = %v, want NotFound", res.Status)
	}
}

func TestParseProgramAndVersion(t *testing.T) {
	if got := ParseProgram(" FCA "); got != FCA {
		t.Errorf("ParseProgram = %q, want fca", got)
	}
	if got := ParseVersion(""); got != V1 {
		t.Errorf("ParseVersion(\"\") = %q, want 1.0", got)
	}
	if got := ParseVersion(" 2.0"); got != V2 {
		t.Errorf("ParseVersion = %q, want 2.0", got)
	}
}

func TestPayloadHas(t *testing.T) {
	p, err := ParsePayload(json.RawMessage(`{"Data":{"customExtension":{"a":1},"vehicleDataUpload":null},"eventId":"E1","n":12.5}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	tests := []struct {
		path []string
		want bool
	}{
		{[]string{"Data"}, true},
		{[]string{"data", "customExtension"}, true},
		{[]string{"Data", "vehicleDataUpload"}, false},
		{[]string{"Data", "missing"}, false},
		{[]string{"eventId", "x"}, false},
		{[]string{"EVENTID"}, true},
	}
	for _, tt := range tests {
		if got := p.Has(tt.path...); got != tt.want {
			t.Errorf("Has(%v) = %v, want %v", tt.path, got, tt.want)
		}
	}
	data, _ := p.Object("Data")
	if !data.Present("vehicleDataUpload") {
		t.Error("Present(vehicleDataUpload) = false, want true")
	}
	if got := p.String("n"); got != "12.5" {
		t.Errorf("String(n) = %q, want 12.5", got)
	}
	if got := p.Float("n"); got != 12.5 {
		t.Errorf("Float(n) = %v, want 12.5", got)
	}
}

func TestParsePayloadRejects(t *testing.T) {
	for _, raw := range []string{"", "null", "[1,2]", "{"} {
		if _, err := ParsePayload(json.RawMessage(raw)); err == nil {
			t.Errorf("ParsePayload(%q) expected error", raw)
		}
	}
}

func TestTextAndNumber(t *testing.T) {
	var v struct {
		Year  Text    `json:"year"`
		Code  Text    `json:"code"`
		Lat   Number  `json:"lat"`
		Lon   Number  `json:"lon"`
		Miss  *Number `json:"miss"`
		Blank Number  `json:"blank"`
	}
	err := json.Unmarshal([]byte(`{"year":2021,"code":"X1","lat":"42.25","lon":-83.5,"miss":null,"blank":""}`), &v)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Year != "2021" || v.Code != "X1" {
		t.Errorf("Year=%q Code=%q, want 2021/X1", v.Year, v.Code)
	}
	if v.Lat != 42.25 || v.Lon != -83.5 {
		t.Errorf("Lat=%v Lon=%v", v.Lat, v.Lon)
	}
	if v.Miss != nil {
		t.Error("Miss should stay nil")
	}
	if v.Blank != 0 {
		t.Errorf("Blank = %v, want 0", v.Blank)
	}
	if got := Number(12.50).Format(); got != "12.5" {
		t.Errorf("Format = %q, want 12.5", got)
	}
}

func TestUnits(t *testing.T) {
	if got := OdometerScale(0); got != Miles {
		t.Errorf("OdometerScale(0) = %q, want %q", got, Miles)
	}
	if got := OdometerScale(1); got != Kilometers {
		t.Errorf("OdometerScale(1) = %q, want %q", got, Kilometers)
	}
	if got := OdometerScale(7); got != "" {
		t.Errorf("OdometerScale(7) = %q, want blank", got)
	}
	for in, want := range map[string]string{"MI": Miles, "km": Kilometers, "Miles": Miles, "KILOMETERS": Kilometers, "leagues": ""} {
		if got := MileageUnit(in); got != want {
			t.Errorf("MileageUnit(%q) = %q, want %q", in, got, want)
		}
	}
}
