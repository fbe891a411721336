package dto

// SweepDetails breaks down one sweep run for the trigger response.
type SweepDetails struct {
	EmailsSent     int      `json:"emailsSent"`
	ProcessedUsers int      `json:"processedUsers"`
	ErrorCount     int      `json:"errorCount"`
	Errors         []string `json:"errors,omitempty"`
}

// SweepResponse is the body returned by the sweep trigger endpoint. Both
// successful and handled-failure runs use HTTP 200 with Success flagging the
// outcome, so schedulers can distinguish run failures from transport ones.
type SweepResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Details SweepDetails `json:"details"`
}
