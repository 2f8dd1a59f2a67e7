package provider

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"cvgateway/metrics"
	"cvgateway/status"
)

// Operation names used in logs and metrics.
const (
	OpGetVehicleData  = "get_vehicle_data"
	OpSaveVehicleData = "save_vehicle_data"
	OpSaveVehicleInfo = "save_vehicle_info"
	OpAssignAgent     = "assign_agent"
	OpTerminate       = "terminate"
	OpHealth          = "health"
)

// GetVehicleData dispatches to a VehicleDataGetter.
func GetVehicleData(ctx context.Context, a Adapter, id Identity) (Result, error) {
	g, ok := a.(VehicleDataGetter)
	if !ok {
		return Result{}, ErrUnsupported
	}
	return run(a, OpGetVehicleData, func() Result { return g.GetVehicleData(ctx, id) }), nil
}

// SaveVehicleData dispatches to a VehicleDataSaver.
func SaveVehicleData(ctx context.Context, a Adapter, id Identity, payload json.RawMessage) (Result, error) {
	s, ok := a.(VehicleDataSaver)
	if !ok {
		return Result{}, ErrUnsupported
	}
	return run(a, OpSaveVehicleData, func() Result { return s.SaveVehicleData(ctx, id, payload) }), nil
}

// SaveVehicleInfo dispatches to a VehicleInfoSaver.
func SaveVehicleInfo(ctx context.Context, a Adapter, program Program, payload json.RawMessage) (Result, error) {
	s, ok := a.(VehicleInfoSaver)
	if !ok {
		return Result{}, ErrUnsupported
	}
	return run(a, OpSaveVehicleInfo, func() Result { return s.SaveVehicleInfo(ctx, program, payload) }), nil
}

// AssignAgent dispatches to an AgentAssigner.
func AssignAgent(ctx context.Context, a Adapter, asg Assignment) (bool, Result, error) {
	s, ok := a.(AgentAssigner)
	if !ok {
		return false, Result{}, ErrUnsupported
	}
	var assigned bool
	res := run(a, OpAssignAgent, func() Result {
		var r Result
		assigned, r = s.AssignAgent(ctx, asg)
		return r
	})
	if !res.Status.OK() {
		assigned = false
	}
	return assigned, res, nil
}

// Terminate dispatches to a Terminator.
func Terminate(ctx context.Context, a Adapter, id Identity, reason json.RawMessage) (Result, error) {
	t, ok := a.(Terminator)
	if !ok {
		return Result{}, ErrUnsupported
	}
	return run(a, OpTerminate, func() Result { return t.Terminate(ctx, id, reason) }), nil
}

// Health dispatches to a HealthChecker.
func Health(ctx context.Context, a Adapter) (Result, error) {
	h, ok := a.(HealthChecker)
	if !ok {
		return Result{}, ErrUnsupported
	}
	return run(a, OpHealth, func() Result { return h.Health(ctx) }), nil
}

// run times the operation, records its outcome and turns a panic into an
// InternalServerError result.
func run(a Adapter, op string, fn func() Result) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("provider: %s %s panic: %v", a.Name(), op, r)
			res = Fail(status.InternalServerError, "internal error in %s", a.Name())
		}
		metrics.ObserveOperation(a.Name(), op, res.Status.String(), time.Since(start))
	}()
	return fn()
}
