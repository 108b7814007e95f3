package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSource     = "source"
	FieldRows       = "rows"
	FieldParsed     = "parsed"
	FieldSkipped    = "skipped"
	FieldKept       = "kept"
	FieldYears      = "years"
	FieldEmpty      = "empty"
	FieldSnapshotID = "snapshot_id"
	FieldMessageID  = "message_id"
	FieldCacheHit   = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentPipeline = "pipeline"
	ComponentDataset  = "dataset"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentCache    = "cache"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpParse    = "parse"
	OpPrepare  = "prepare"
	OpRefresh  = "refresh"
	OpSave     = "save"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithSource(name string) LogFields {
	f[FieldSource] = name
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithPipelineStats adds the row counts of one pipeline run.
func (f LogFields) WithPipelineStats(rows, parsed, skipped, kept, years int) LogFields {
	f[FieldRows] = rows
	f[FieldParsed] = parsed
	f[FieldSkipped] = skipped
	f[FieldKept] = kept
	f[FieldYears] = years
	f[FieldEmpty] = kept == 0
	return f
}

// WithHTTPResponse adds HTTP request/response fields
func (f LogFields) WithHTTPResponse(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
