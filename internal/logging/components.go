package logging

// Component constants for structured logging.
const (
	ComponentStartup  = "startup"
	ComponentShutdown = "shutdown"
	ComponentAuth     = "auth"
	ComponentConvert  = "convert"
	ComponentRenderer = "renderer"
	ComponentPolicy   = "resource-policy"
)
