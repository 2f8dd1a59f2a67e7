package tmna

import "cvgateway/status"

// Normalize maps a TMNA result code to a canonical status.
func Normalize(code string) status.Status {
	switch status.Token(code) {
	case "NOT FOUND", "ILLEGAL_ARGUMENT_ERROR", "INVALID EVENT ID":
		return status.NotFound
	case "REQUEST_SCHEMA_VALIDATION_FAILED", "INVALID REQUEST", "BAD REQUEST":
		return status.BadRequest
	case "INVALID_STATE_ERROR", "FORBIDDEN", "UNAUTHORIZED", "SERVICE_NOT_PROVISIONED":
		return status.Forbidden
	case "INTERNAL SERVER ERROR":
		return status.InternalServerError
	case "CANCELLED":
		return status.Canceled
	case "ERROR":
		return status.Error
	default:
		return status.InternalServerError
	}
}
