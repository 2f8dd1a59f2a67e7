// Package provider defines the contract every upstream telematics adapter
// satisfies and the helpers callers use to dispatch to it.
//
// Adapters implement Adapter plus any subset of the capability interfaces.
// Callers go through the dispatch helpers in dispatch.go, which type-assert for
// the capability and return ErrUnsupported when it is missing.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cvgateway/audit"
	"cvgateway/status"
)

// Program identifies an automotive program (partner).
type Program string

const (
	Nissan   Program = "nissan"
	Infiniti Program = "infiniti"
	FCA      Program = "fca"
	VWCarNet Program = "vwcarnet"
	Porsche  Program = "porsche"
	Toyota   Program = "toyota"
	Subaru   Program = "subaru"
)

// ParseProgram folds case and surrounding space.
func ParseProgram(v string) Program {
	return Program(strings.ToLower(strings.TrimSpace(v)))
}

// Version is the inbound protocol version for a program.
type Version string

const (
	V1 Version = "1.0"
	V2 Version = "2.0"
)

// ParseVersion defaults a blank version to 1.0.
func ParseVersion(v string) Version {
	v = strings.TrimSpace(v)
	if v == "" {
		return V1
	}
	return Version(v)
}

// ErrUnsupported is returned by the dispatch helpers when the adapter does not
// implement the requested operation. It is permanent and never retried.
var ErrUnsupported = errors.New("operation not supported by provider")

// LogFunc is the signature for log output.
type LogFunc func(format string, args ...any)

// Identity addresses a single vehicle or call context.
type Identity struct {
	Program    Program
	Version    Version
	Subscriber string
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Program, id.Version, id.Subscriber)
}

// HexValue is a named hex-encoded value returned to callers that save data.
type HexValue struct {
	VarName string `json:"VarName"`
	Value   string `json:"Value"`
}

// Result is the outcome of every adapter operation.
type Result struct {
	Status  status.Status
	Message string
	Record  *audit.Record
	Hex     []HexValue
}

// Fail builds a non-success result.
func Fail(s status.Status, format string, args ...any) Result {
	return Result{Status: s, Message: fmt.Sprintf(format, args...)}
}

// Succeed builds a success result carrying rec.
func Succeed(message string, rec *audit.Record) Result {
	return Result{Status: status.Success, Message: message, Record: rec}
}

// Assignment asks a provider to record that an agent picked up a call.
type Assignment struct {
	Program     Program
	ReferenceID string
	Assigned    bool
}

// Adapter is the common surface of every provider implementation.
type Adapter interface {
	// Name returns the provider name used in logs and metrics (e.g. "fca").
	Name() string
}

// VehicleDataGetter retrieves the current vehicle/call data for an identity.
type VehicleDataGetter interface {
	GetVehicleData(ctx context.Context, id Identity) Result
}

// VehicleDataSaver accepts a provider push of vehicle data.
type VehicleDataSaver interface {
	SaveVehicleData(ctx context.Context, id Identity, payload json.RawMessage) Result
}

// VehicleInfoSaver accepts a push whose subscriber is carried in the payload.
type VehicleInfoSaver interface {
	SaveVehicleInfo(ctx context.Context, program Program, payload json.RawMessage) Result
}

// AgentAssigner tells the provider an agent took the call. The bool reports
// whether the provider confirmed the assignment.
type AgentAssigner interface {
	AssignAgent(ctx context.Context, a Assignment) (bool, Result)
}

// Terminator ends an active call.
type Terminator interface {
	Terminate(ctx context.Context, id Identity, reason json.RawMessage) Result
}

// HealthChecker checks that the upstream provider is reachable.
type HealthChecker interface {
	Health(ctx context.Context) Result
}
