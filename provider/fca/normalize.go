package fca

import "cvgateway/status"

// Normalize maps an FCA error code to a canonical status.
func Normalize(code string) status.Status {
	switch status.Token(code) {
	case "NOT FOUND", "ILLEGAL_ARGUMENT_ERROR", "MSISDN_DOESNT_EXIST":
		return status.NotFound
	case "REQUEST_SCHEMA_VALIDATION_FAILED", "BAD REQUEST":
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

// ReformatMSISDN shapes a normalized number for the FCA telecom configuration:
// ten digits get the country code, longer numbers keep their last maxLen digits.
func ReformatMSISDN(msisdn string, maxLen int) string {
	if len(msisdn) == 10 {
		return "1" + msisdn
	}
	if maxLen > 0 && len(msisdn) > maxLen {
		return msisdn[len(msisdn)-maxLen:]
	}
	return msisdn
}
