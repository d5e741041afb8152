package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldRunID is the ingestion run ID
	FieldRunID = "run_id"

	// FieldPage is the upstream page number being processed
	FieldPage = "page"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldJobID is the external job identifier
	FieldJobID = "job_id"
)

// Standard metric fields used for aggregation and alerting.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldStatus     = "status"
)
