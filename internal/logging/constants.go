package logging

// Shared field names so the pipeline's log output stays filterable: every
// component tags the same concept with the same key.
const (
	FieldFile       = "file_path"
	FieldLine       = "line"
	FieldDelimiter  = "delimiter"
	FieldMerchant   = "merchant"
	FieldCategory   = "category"
	FieldMethod     = "method"
	FieldConfidence = "confidence"
	FieldOperation  = "operation"
	FieldCount      = "count"
	FieldDuration   = "duration_ms"
)
