package siriusxm

import "cvgateway/status"

// Normalize maps a SiriusXM result code to a canonical status. SERVICE_ERROR is
// split on the accompanying message.
func Normalize(code, msg string) status.Status {
	switch status.Token(code) {
	case "NO_ERROR":
		return status.Success
	case "ILLEGAL_ARGUMENT_ERROR", "REFERENCE_ID_NOT_FOUND", "FILE NOT FOUND":
		return status.NotFound
	case "INVALID_STATE_ERROR":
		return status.Forbidden
	case "INTERNAL_SERVER_ERROR":
		return status.InternalServerError
	case "BAD_REQUEST":
		return status.BadRequest
	case "CANCELLED":
		return status.Canceled
	case "ERROR":
		return status.Error
	case "SERVICE_ERROR":
		if status.ContainsFold(msg, "no reference id found") {
			return status.NotFound
		}
		return status.InternalServerError
	default:
		return status.InternalServerError
	}
}
