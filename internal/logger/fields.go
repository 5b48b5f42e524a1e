package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields propagated through the call chain.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldHotelID   = "hotel_id"
	FieldImageID   = "image_id"
	FieldTopic     = "topic"
)

// Metric fields, used for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldStatus     = "status"
)
