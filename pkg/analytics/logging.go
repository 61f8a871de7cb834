package analytics

import "github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"

// Log event types.
const (
	LogTypeClientInfo  = "CLIENT_INFO"
	LogTypeClientError = "CLIENT_ERROR"
)

// LogEvent is a diagnostic event about the client itself, not about the viewer.
type LogEvent struct {
	Type    string
	Subtype string
	Message string
}

// TrackLogging records a diagnostic event.
func TrackLogging(event LogEvent) {
	switch event.Type {
	case LogTypeClientError:
		logger.Error(event.Message, "type", event.Type, "subtype", event.Subtype)
	default:
		logger.Info(event.Message, "type", event.Type, "subtype", event.Subtype)
	}
}
