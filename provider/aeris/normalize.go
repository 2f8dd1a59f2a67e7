package aeris

import "cvgateway/status"

// Normalize maps an Aeris error status to a canonical status.
func Normalize(code string) status.Status {
	switch status.Token(code) {
	case "ILLEGAL_ARGUMENT_ERROR", "NOT_FOUND":
		return status.NotFound
	case "INVALID_STATE_ERROR":
		return status.Forbidden
	case "INTERNAL_SERVER_ERROR":
		return status.InternalServerError
	case "BAD_REQUEST":
		return status.BadRequest
	default:
		return status.InternalServerError
	}
}
