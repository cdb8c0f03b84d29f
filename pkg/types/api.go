package types

// LaunchPayload is the JSON body sent to the backend for both provisioning
// calls. A fresh ModelUID is generated per launch attempt.
type LaunchPayload struct {
	// Unique instance identifier, generated per attempt.
	// example: 9f1c7b2e-55d0-4a8e-9a63-1f2d3c4b5a69
	ModelUID string `json:"model_uid" example:"9f1c7b2e-55d0-4a8e-9a63-1f2d3c4b5a69"`
	// Model family name from the catalog.
	// example: llama-2-chat
	ModelName string `json:"model_name" example:"llama-2-chat"`
	// Chosen weight format.
	// example: pytorch
	ModelFormat string `json:"model_format" example:"pytorch"`
	// Chosen size in billions of parameters.
	// example: 7
	ModelSizeInBillions float64 `json:"model_size_in_billions" example:"7"`
	// Chosen quantization; may be empty for formats exempt from it.
	// example: int4
	Quantization string `json:"quantization,omitempty" example:"int4"`
}

// LaunchRequest is the gateway's inbound body for POST /launch.
type LaunchRequest struct {
	// Catalog entry to launch.
	// example: llama-2-chat
	ModelName string `json:"model_name" example:"llama-2-chat"`
	// Chosen weight format.
	// example: pytorch
	ModelFormat string `json:"model_format" example:"pytorch"`
	// Chosen size in billions; string form is accepted as-is from UI controls.
	// example: 7
	ModelSizeInBillions string `json:"model_size_in_billions" example:"7"`
	// Chosen quantization.
	// example: int4
	Quantization string `json:"quantization,omitempty" example:"int4"`
}

// LaunchResponse reports a successful launch.
type LaunchResponse struct {
	// Identifier of the launched instance.
	ModelUID string `json:"model_uid"`
	// Instance endpoint opened on success.
	// example: http://127.0.0.1:9997/9f1c7b2e-55d0-4a8e-9a63-1f2d3c4b5a69
	Endpoint string `json:"endpoint" example:"http://127.0.0.1:9997/9f1c7b2e-55d0-4a8e-9a63-1f2d3c4b5a69"`
}

// OptionsResponse carries the derived option lists for a selection prefix.
// Downstream lists are omitted until their upstream choice is made.
type OptionsResponse struct {
	Formats       []string  `json:"formats"`
	Sizes         []float64 `json:"sizes,omitempty"`
	Quantizations []string  `json:"quantizations,omitempty"`
}

// CatalogResponse wraps the entries returned by GET /catalog.
type CatalogResponse struct {
	Models []CatalogEntry `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status on the gateway.
type StatusResponse struct {
	// Upstream serving backend base URL.
	// example: http://127.0.0.1:9997
	BackendURL string `json:"backend_url" example:"http://127.0.0.1:9997"`
	// Number of catalog entries loaded.
	// example: 12
	CatalogEntries int `json:"catalog_entries" example:"12"`
	// Whether a launch is currently in flight.
	// example: false
	LaunchInFlight bool `json:"launch_in_flight" example:"false"`
	// Total launches attempted since start.
	// example: 3
	LaunchesTotal uint64 `json:"launches_total" example:"3"`
	// Uptime of the gateway in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
