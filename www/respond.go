package www

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"cvgateway/provider"
	"cvgateway/router"
	"cvgateway/status"
)

type apiError struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

var errorCodes = map[int]string{
	http.StatusBadRequest:          "BadRequest",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "ForbiddenError",
	http.StatusNotFound:            "NotFound",
	http.StatusMethodNotAllowed:    "MethodNotAllowed",
	http.StatusInternalServerError: "InternalServerError",
	http.StatusNotImplemented:      "NotImplemented",
	statusClientClosed:             "Canceled",
}

const statusClientClosed = 499

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("www: encode response: %v", err)
	}
}

// writeData wraps v in the {"data": ...} envelope.
func writeData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, code int, detail string) {
	name, ok := errorCodes[code]
	if !ok {
		name = "Error"
	}
	title := http.StatusText(code)
	if code == statusClientClosed {
		title = "Client Closed Request"
	}
	writeJSON(w, code, map[string]any{"errors": []apiError{{
		Status: strconv.Itoa(code),
		Code:   name,
		Title:  title,
		Detail: detail,
	}}})
}

// writeFailure reports a non-success adapter result.
func writeFailure(w http.ResponseWriter, res provider.Result) {
	s := res.Status
	if s.OK() {
		s = status.InternalServerError
	}
	writeError(w, s.HTTPCode(), res.Message)
}

// writeDispatchError maps routing and capability errors.
func writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, router.ErrUnsupportedProgram):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
