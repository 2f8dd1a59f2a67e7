package www

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cvgateway/config"
	"cvgateway/engine"
	"cvgateway/metrics"
	"cvgateway/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	return testServerWithConfig(t, "")
}

func testServerWithConfig(t *testing.T, configPath string) *httptest.Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "www.db")
	db, err := store.Open(&cfg.Database)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return testServerWithDB(t, cfg, db, configPath)
}

func testServerWithDB(t *testing.T, cfg *config.Config, db *store.DB, configPath string) *httptest.Server {
	t.Helper()
	eng := engine.New(engine.Config{AppConfig: cfg, ConfigPath: configPath, DB: db, LogFunc: t.Logf})
	srv := httptest.NewServer(NewRouter(eng))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, cookies ...*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func errorDetail(body map[string]any) string {
	errs, _ := body["errors"].([]any)
	if len(errs) == 0 {
		return ""
	}
	e, _ := errs[0].(map[string]any)
	d, _ := e["detail"].(string)
	return d
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	resp, body := do(t, "GET", srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["responsemessage"] != "HealthCheck passed" {
		t.Errorf("responsemessage = %v, want HealthCheck passed", data["responsemessage"])
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := testServer(t)
	req, _ := http.NewRequest("GET", srv.URL+"/health", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "corr-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "corr-123")
	}
}

func TestUnsupportedProgram(t *testing.T) {
	srv := testServer(t)
	resp, body := do(t, "GET", srv.URL+"/data/5551234567/programcode/tesla/ctsversion/1.0", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(errorDetail(body), "unsupported program") {
		t.Errorf("detail = %q", errorDetail(body))
	}
}

func TestUnsupportedOperation(t *testing.T) {
	srv := testServer(t)
	resp, _ := do(t, "GET", srv.URL+"/data/5551234567/programcode/subaru/ctsversion/2.0", "")
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

const porschePayload = `{
	"countryCode": "US",
	"timestamp": 1700000000,
	"gpsData": {"latitude": 33.75, "longitude": -84.39},
	"userData": {"phoneContact": "555-123-4567"},
	"vehicleData": {"vin": "WP0AA2A71JL000001", "mileage": {"value": 1200, "unit": "MI"}}
}`

func TestVodafoneSaveAndGet(t *testing.T) {
	srv := testServer(t)

	resp, body := do(t, "POST", srv.URL+"/data/5551234567/programcode/porsche/ctsversion/1.0", porschePayload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d, want 201 (%v)", resp.StatusCode, body)
	}

	resp, body = do(t, "GET", srv.URL+"/data/5551234567/programcode/PORSCHE/ctsversion/1.0", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200 (%v)", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	vehicle := data["vehicle"].(map[string]any)
	if vehicle["vin"] != "WP0AA2A71JL000001" {
		t.Errorf("vin = %v, want WP0AA2A71JL000001", vehicle["vin"])
	}
	if vehicle["mileageunit"] != "miles" {
		t.Errorf("mileageunit = %v, want miles", vehicle["mileageunit"])
	}
	header := data["header"].(map[string]any)
	if header["version"] != "1.0" {
		t.Errorf("version = %v, want 1.0", header["version"])
	}
}

func TestVodafoneNotFound(t *testing.T) {
	srv := testServer(t)
	resp, body := do(t, "GET", srv.URL+"/data/5559999999/programcode/porsche/ctsversion/1.0", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if errorDetail(body) != "No data found" {
		t.Errorf("detail = %q, want %q", errorDetail(body), "No data found")
	}
}

func TestVodafoneInvalidPayload(t *testing.T) {
	srv := testServer(t)
	resp, _ := do(t, "POST", srv.URL+"/data/5551234567/programcode/porsche/ctsversion/1.0", `{"gpsData":{}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp, _ = do(t, "POST", srv.URL+"/data/5551234567/programcode/porsche/ctsversion/1.0", `not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed body", resp.StatusCode)
	}
}

func TestVehicleInfoRoundTrip(t *testing.T) {
	srv := testServer(t)

	resp, body := do(t, "POST", srv.URL+"/vehicleinfo", porschePayload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want 200 (%v)", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["msisdn"] != "15551234567" {
		t.Errorf("msisdn = %v, want 15551234567", data["msisdn"])
	}

	resp, body = do(t, "GET", srv.URL+"/vehicleinfo?phonecontact=5551234567", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	if body["countryCode"] != "US" {
		t.Errorf("countryCode = %v, want US (raw payload)", body["countryCode"])
	}
}

func TestVehicleInfoMissingPhone(t *testing.T) {
	srv := testServer(t)
	resp, body := do(t, "POST", srv.URL+"/vehicleinfo", `{"userData":{}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if errorDetail(body) != "Missing PhoneContact/Msisdn" {
		t.Errorf("detail = %q", errorDetail(body))
	}
}

func TestSaveByReference(t *testing.T) {
	srv := testServer(t)

	payload := `{"programcode":"nissan","referenceid":"REF42","vin":"JN1AA","language":"en-US","geolocation":"36.1~-86.7"}`
	req, _ := http.NewRequest("POST", srv.URL+"/data", strings.NewReader(payload))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var hex []map[string]string
	json.NewDecoder(resp.Body).Decode(&hex)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if len(hex) != 1 || hex[0]["VarName"] != "User-to-User" || !strings.HasPrefix(hex[0]["Value"], "00") {
		t.Errorf("hex = %v", hex)
	}

	resp2, body := do(t, "GET", srv.URL+"/data/REF42/programcode/nissan", "")
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp2.StatusCode)
	}
	header := body["data"].(map[string]any)["header"].(map[string]any)
	if header["referenceid"] != "REF42" {
		t.Errorf("referenceid = %v, want REF42", header["referenceid"])
	}
	if _, ok := header["version"]; ok {
		t.Error("version set on a reference-id read")
	}
}

func TestSaveByReferenceRequiresKeys(t *testing.T) {
	srv := testServer(t)
	resp, body := do(t, "POST", srv.URL+"/data", `{"referenceid":"REF42"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(errorDetail(body), "requires programcode and referenceid") {
		t.Errorf("detail = %q", errorDetail(body))
	}
}

func TestAgentAssignmentValidation(t *testing.T) {
	srv := testServer(t)
	resp, _ := do(t, "POST", srv.URL+"/agentassignment", `{"programcode":"nissan"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp, _ = do(t, "POST", srv.URL+"/agentassignment", `{"programcode":"porsche","referenceid":"R1","isassigned":true}`)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 for porsche", resp.StatusCode)
	}
}

func TestTerminateUnsupported(t *testing.T) {
	srv := testServer(t)
	resp, _ := do(t, "POST", srv.URL+"/terminate/5551234567/programcode/porsche/ctsversion/1.0", `{}`)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

func TestProviderHealthUnsupported(t *testing.T) {
	srv := testServer(t)
	resp, _ := do(t, "GET", srv.URL+"/health/programcode/porsche/ctsversion/1.0", "")
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

func login(t *testing.T, srv *httptest.Server, user, pass string) *http.Response {
	t.Helper()
	resp, err := http.PostForm(srv.URL+"/login", url.Values{"username": {user}, "password": {pass}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp
}

func TestOperatorRecords(t *testing.T) {
	srv := testServer(t)
	do(t, "POST", srv.URL+"/data/5551234567/programcode/porsche/ctsversion/1.0", porschePayload)

	resp, _ := do(t, "GET", srv.URL+"/api/records/porsche/15551234567", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 before login", resp.StatusCode)
	}

	if resp := login(t, srv, "admin", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", resp.StatusCode)
	}
	resp = login(t, srv, "admin", "admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie")
	}

	resp, body := do(t, "GET", srv.URL+"/api/records/porsche/15551234567", "", cookies...)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("records status = %d, want 200", resp.StatusCode)
	}
	recs := body["data"].([]any)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if vin := recs[0].(map[string]any)["vin"]; vin != "WP0AA2A71JL000001" {
		t.Errorf("vin = %v", vin)
	}

	resp, body = do(t, "GET", srv.URL+"/api/routes", "", cookies...)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("routes status = %d, want 200", resp.StatusCode)
	}
	if n := len(body["data"].([]any)); n != 11 {
		t.Errorf("routes = %d, want 11", n)
	}
}

func TestSetOperatorPasswordReplacesDefault(t *testing.T) {
	cfg := config.Defaults()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "www.db")
	db, err := store.Open(&cfg.Database)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := SetOperatorPassword(db, "admin", "s3cret"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	srv := testServerWithDB(t, cfg, db, "")

	if resp := login(t, srv, "admin", "admin"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("default password status = %d, want 401", resp.StatusCode)
	}
	if resp := login(t, srv, "admin", "s3cret"); resp.StatusCode != http.StatusOK {
		t.Errorf("new password status = %d, want 200", resp.StatusCode)
	}
	if err := SetOperatorPassword(db, "admin", ""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Register()
	srv := testServer(t)
	do(t, "GET", srv.URL+"/health", "")

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := testServer(t)
	resp, body := do(t, "GET", srv.URL+"/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if errorDetail(body) != "Not Found" {
		t.Errorf("detail = %q", errorDetail(body))
	}
}

func TestStatusAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cvgateway.yaml")
	yaml := []byte("providers:\n  wirelesscar:\n    base_url: https://wirelesscar.example\n")
	if err := os.WriteFile(path, yaml, 0644); err != nil {
		t.Fatal(err)
	}
	srv := testServerWithConfig(t, path)
	cookies := login(t, srv, "admin", "admin").Cookies()

	resp, body := do(t, "GET", srv.URL+"/api/status", "", cookies...)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["database"] != "ok" {
		t.Errorf("database = %v, want ok", data["database"])
	}
	if data["messaging"] != "disabled" {
		t.Errorf("messaging = %v, want disabled", data["messaging"])
	}

	resp, _ = do(t, "POST", srv.URL+"/api/config/reload", "", cookies...)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload status = %d, want 200", resp.StatusCode)
	}
}

func TestReloadWithoutConfigFile(t *testing.T) {
	srv := testServer(t)
	cookies := login(t, srv, "admin", "admin").Cookies()
	resp, _ := do(t, "POST", srv.URL+"/api/config/reload", "", cookies...)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
