package verizon

import "cvgateway/status"

// Normalize maps a Verizon ResponseStatus to a canonical status. FAILED
// EXECUTION is NotFound only when the description reports no data.
func Normalize(responseStatus, description string) status.Status {
	switch status.Token(responseStatus) {
	case "SUCCESSFUL EXECUTION":
		return status.Success
	case "FAILED EXECUTION":
		if status.ContainsFold(description, "No Data Found") {
			return status.NotFound
		}
		return status.InternalServerError
	case "FILE NOT FOUND":
		return status.NotFound
	default:
		return status.InternalServerError
	}
}
