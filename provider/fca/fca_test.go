package fca

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cvgateway/audit"
	"cvgateway/audit/audittest"
	"cvgateway/config"
	"cvgateway/provider"
	"cvgateway/status"
)

func quietLog(string, ...any) {}

func testAdapter(t *testing.T, handler http.HandlerFunc, st audit.Store) (*Adapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.Defaults().Providers.FCA
	cfg.BaseURL = srv.URL
	cfg.APIKey = "key-1"
	cfg.RetryDelay = 5 * time.Millisecond
	return New(cfg, st, quietLog), srv
}

func fcaID(sub string) provider.Identity {
	return provider.Identity{Program: provider.FCA, Version: provider.V1, Subscriber: sub}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want status.Status
	}{
		{"NOT FOUND", status.NotFound},
		{"illegal_argument_error", status.NotFound},
		{"Msisdn_Doesnt_Exist", status.NotFound},
		{"REQUEST_SCHEMA_VALIDATION_FAILED", status.BadRequest},
		{"bad request", status.BadRequest},
		{"INVALID_STATE_ERROR", status.Forbidden},
		{"forbidden", status.Forbidden},
		{"Unauthorized", status.Forbidden},
		{"service_not_provisioned", status.Forbidden},
		{"Internal Server Error", status.InternalServerError},
		{"CANCELLED", status.Canceled},
		{"error", status.Error},
		{"SOMETHING_NEW", status.InternalServerError},
		{"", status.InternalServerError},
		{"NA", status.InternalServerError},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReformatMSISDN(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"5551234567", 11, "15551234567"},
		{"15551234567", 11, "15551234567"},
		{"0015551234567", 11, "15551234567"},
		{"0015551234567", 0, "0015551234567"},
	}
	for _, tt := range tests {
		if got := ReformatMSISDN(tt.in, tt.max); got != tt.want {
			t.Errorf("ReformatMSISDN(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestGetVehicleDataPushPoll(t *testing.T) {
	var triggers int32
	st := audittest.New()
	st.OnQuery = func(n int, pk string, within *audit.Range) *audit.Record {
		if pk != "fca-12345678901" {
			t.Errorf("partition = %q, want fca-12345678901", pk)
		}
		if atomic.LoadInt32(&triggers) >= 3 {
			return &audit.Record{PartitionKey: pk, VIN: "TESTVIN"}
		}
		return nil
	}
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bcall/data" {
			t.Errorf("path = %q, want /bcall/data", r.URL.Path)
		}
		if got := r.Header.Get("APIKey"); got != "key-1" {
			t.Errorf("APIKey = %q, want key-1", got)
		}
		var body triggerRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.MSISDN != "12345678901" {
			t.Errorf("msisdn = %q, want 12345678901", body.MSISDN)
		}
		atomic.AddInt32(&triggers, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message":"Bcall request sent successfully"}`))
	}, st)

	res := a.GetVehicleData(context.Background(), fcaID("12345678901"))
	if res.Status != status.Success {
		t.Fatalf("Status = %v (%s), want Success", res.Status, res.Message)
	}
	if res.Record == nil || res.Record.VIN != "TESTVIN" {
		t.Fatalf("Record = %+v, want VIN TESTVIN", res.Record)
	}
	if res.Message != "Bcall request sent successfully" {
		t.Errorf("Message = %q", res.Message)
	}
	if n := atomic.LoadInt32(&triggers); n != 3 {
		t.Errorf("triggers = %d, want 3", n)
	}
}

func TestGetVehicleDataNeverDelivered(t *testing.T) {
	var triggers int32
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&triggers, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"ok"}`))
	}, audittest.New())

	res := a.GetVehicleData(context.Background(), fcaID("5551234567"))
	if res.Status != status.NotFound {
		t.Fatalf("Status = %v, want NotFound", res.Status)
	}
	if res.Message != "No data is available for msisdn: 15551234567" {
		t.Errorf("Message = %q", res.Message)
	}
	if n := atomic.LoadInt32(&triggers); n != 3 {
		t.Errorf("triggers = %d, want 3", n)
	}
}

func TestGetVehicleDataTriggerErrorStopsPolling(t *testing.T) {
	var triggers int32
	st := audittest.New()
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&triggers, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`[{"detailedErrorCode":"SERVICE_NOT_PROVISIONED","message":"vehicle not enrolled"}]`))
	}, st)

	res := a.GetVehicleData(context.Background(), fcaID("12345678901"))
	if res.Status != status.Forbidden {
		t.Errorf("Status = %v, want Forbidden", res.Status)
	}
	if res.Message != "SERVICE_NOT_PROVISIONED, vehicle not enrolled" {
		t.Errorf("Message = %q", res.Message)
	}
	if n := atomic.LoadInt32(&triggers); n != 1 {
		t.Errorf("triggers = %d, want 1", n)
	}
	if st.Queries() != 0 {
		t.Errorf("queries = %d, want 0", st.Queries())
	}
}

func TestGetVehicleDataNonJSONError(t *testing.T) {
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("backend unavailable"))
	}, audittest.New())

	res := a.GetVehicleData(context.Background(), fcaID("12345678901"))
	if res.Status != status.InternalServerError {
		t.Errorf("Status = %v, want InternalServerError", res.Status)
	}
	if res.Message != "Internal Server Error, backend unavailable" {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestGetVehicleDataFreshRecord(t *testing.T) {
	var calls int32
	st := audittest.New()
	rec := audit.NewRecord("fca", "12345678901", time.Now().Add(-time.Minute))
	rec.VIN = "CACHED"
	st.Seed(rec)
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, st)
	a.cfg.FreshnessWindowMinutes = 2

	res := a.GetVehicleData(context.Background(), fcaID("12345678901"))
	if res.Status != status.Success || res.Record == nil || res.Record.VIN != "CACHED" {
		t.Fatalf("got %v %+v, want Success CACHED", res.Status, res.Record)
	}
	if calls != 0 {
		t.Errorf("upstream calls = %d, want 0", calls)
	}
}

func TestGetVehicleDataBadIdentity(t *testing.T) {
	var calls int32
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, audittest.New())

	for _, sub := range []string{"", "123-45", "12345abcde"} {
		if res := a.GetVehicleData(context.Background(), fcaID(sub)); res.Status != status.BadRequest {
			t.Errorf("GetVehicleData(%q) = %v, want BadRequest", sub, res.Status)
		}
	}
	if calls != 0 {
		t.Errorf("upstream calls = %d, want 0", calls)
	}
}

func TestGetVehicleDataCanceled(t *testing.T) {
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}, audittest.New())
	a.cfg.RetryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := a.GetVehicleData(ctx, fcaID("12345678901"))
	if res.Status != status.Canceled {
		t.Errorf("Status = %v, want Canceled", res.Status)
	}
}

func TestTerminate(t *testing.T) {
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bcall/terminate" {
			t.Errorf("path = %q, want /bcall/terminate", r.URL.Path)
		}
		var body terminateRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.CallStatus != "TERMINATED" {
			t.Errorf("callStatus = %q, want TERMINATED", body.CallStatus)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Call terminated"}`))
	}, audittest.New())

	res := a.Terminate(context.Background(), fcaID("12345678901"), json.RawMessage(`{"callstatus":"TERMINATED"}`))
	if res.Status != status.Success {
		t.Fatalf("Status = %v (%s), want Success", res.Status, res.Message)
	}
	if res.Message != "Call terminated" {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestTerminateInvalidCallStatus(t *testing.T) {
	var calls int32
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, audittest.New())

	for _, body := range []string{`{}`, `{"callstatus":"ACTIVE"}`, `{"callstatus":null}`, ``} {
		res := a.Terminate(context.Background(), fcaID("12345678901"), json.RawMessage(body))
		if res.Status != status.BadRequest {
			t.Errorf("Terminate(%s) = %v, want BadRequest", body, res.Status)
		}
	}
	if calls != 0 {
		t.Errorf("upstream calls = %d, want 0", calls)
	}
}

const savePayload = `{
  "EventID": "EV-1",
  "Timestamp": 1700000000000,
  "Data": {
    "bcallType": "ROADSIDE",
    "callTrigger": "MANUAL",
    "callReason": "FLAT_TIRE",
    "engineStatus": "ON",
    "latitude": 1.5,
    "longitude": 2.5,
    "callCenterNumber": "18005550100",
    "customExtension": {
      "calltype": "BCALL",
      "device": {"deviceType": "TBM", "simIccid": "8901"},
      "tirePressure": {"flTirePressure": 32.5},
      "vehicleInfo": {
        "vin": "1C4RJFAG0FC625797",
        "brand": "JEEP",
        "model": "Grand Cherokee",
        "year": 2021,
        "odometer": 12000,
        "language": "en",
        "country": "US",
        "vehicleLocation": {"positionLatitude": 42.33, "positionLongitude": -83.04, "positionDirection": 90}
      }
    }
  }
}`

func TestSaveVehicleData(t *testing.T) {
	st := audittest.New()
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {}, st)

	res := a.SaveVehicleData(context.Background(), fcaID("12345678901"), json.RawMessage(savePayload))
	if res.Status != status.Success {
		t.Fatalf("Status = %v (%s), want Success", res.Status, res.Message)
	}
	recs := st.Records("fca-12345678901")
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.VIN != "1C4RJFAG0FC625797" {
		t.Errorf("VIN = %q", rec.VIN)
	}
	if rec.ModelYear != "2021" {
		t.Errorf("ModelYear = %q, want 2021", rec.ModelYear)
	}
	if rec.Latitude != 42.33 || rec.Longitude != -83.04 {
		t.Errorf("position = %v,%v", rec.Latitude, rec.Longitude)
	}
	if rec.HeadingDirection != "90" {
		t.Errorf("HeadingDirection = %q, want 90", rec.HeadingDirection)
	}
	if rec.Extra["call_type"] != "BCALL" {
		t.Errorf("call_type = %q, want BCALL", rec.Extra["call_type"])
	}
	if !rec.Timestamp.Equal(audit.FromEpoch(1700000000000)) {
		t.Errorf("Timestamp = %v", rec.Timestamp)
	}
	sups := st.Supplements()
	if len(sups) != 1 {
		t.Fatalf("supplements = %d, want 1", len(sups))
	}
	var sup map[string]any
	json.Unmarshal(sups[0].Data, &sup)
	if _, ok := sup["device"]; !ok {
		t.Errorf("supplement missing device: %s", sups[0].Data)
	}
}

func TestSaveVehicleDataUploadVariant(t *testing.T) {
	st := audittest.New()
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {}, st)
	payload := `{"Data":{"latitude":3,"longitude":4,"customExtension":{"vehicleDataUpload":{"vehicleInfo":{"vin":"UPLOADVIN","vehicleLocation":{}}}}}}`

	res := a.SaveVehicleData(context.Background(), fcaID("12345678901"), json.RawMessage(payload))
	if res.Status != status.Success {
		t.Fatalf("Status = %v (%s), want Success", res.Status, res.Message)
	}
	rec := st.Records("fca-12345678901")[0]
	if rec.VIN != "UPLOADVIN" {
		t.Errorf("VIN = %q, want UPLOADVIN", rec.VIN)
	}
	if rec.Latitude != 3 || rec.Longitude != 4 {
		t.Errorf("position = %v,%v, want 3,4", rec.Latitude, rec.Longitude)
	}
}

func TestSaveVehicleDataInvalid(t *testing.T) {
	st := audittest.New()
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {}, st)
	bad := []string{
		``,
		`{}`,
		`{"Data":{}}`,
		`{"Data":{"customExtension":null}}`,
		`{"Data":{"customExtension":{"vehicleDataUpload":null}}}`,
		`{"Data":{"customExtension":{"calltype":"X"}}}`,
	}
	for _, body := range bad {
		res := a.SaveVehicleData(context.Background(), fcaID("12345678901"), json.RawMessage(body))
		if res.Status != status.BadRequest {
			t.Errorf("SaveVehicleData(%s) = %v, want BadRequest", body, res.Status)
		}
	}
	if st.Puts() != 0 {
		t.Errorf("puts = %d, want 0", st.Puts())
	}
}

func TestSaveVehicleDataStoreFailure(t *testing.T) {
	st := audittest.New()
	st.PutErr = errors.New("write failed")
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {}, st)

	res := a.SaveVehicleData(context.Background(), fcaID("12345678901"), json.RawMessage(savePayload))
	if res.Status != status.InternalServerError {
		t.Errorf("Status = %v, want InternalServerError", res.Status)
	}
}

func TestSaveVehicleDataSupplementFailureSwallowed(t *testing.T) {
	st := audittest.New()
	st.SupplementErr = errors.New("supplement table down")
	a, _ := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {}, st)

	res := a.SaveVehicleData(context.Background(), fcaID("12345678901"), json.RawMessage(savePayload))
	if res.Status != status.Success {
		t.Errorf("Status = %v, want Success", res.Status)
	}
}
