package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrInvalidPastureID = ErrorResponse{
		Status:  "error",
		Error:   "invalid_pasture_id",
		Details: "Invalid pasture ID format",
	}

	ErrPastureNotFound = ErrorResponse{
		Status:  "error",
		Error:   "pasture_not_found",
		Details: "Pasture not found",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)
