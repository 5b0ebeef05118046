package log

// Common field names for structured logging
const (
	FieldComponent = "component"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentTransfer = "transfer"
	ComponentView     = "view"
)
