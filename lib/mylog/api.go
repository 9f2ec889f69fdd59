package mylog

import "context"

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

var New func(name string) Logger

type Logger interface {
	Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any)
}

// Scrub returns a copy of a request payload with credential-carrying
// fields removed so the payload can be logged safely.
func Scrub(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	forbidden := map[string]bool{
		"password":        true,
		"password_repeat": true,
		"token":           true,
		"authid":          true,
		"authId":          true,
	}

	cleaned := make(map[string]any, len(data))
	for key, value := range data {
		if forbidden[key] {
			continue
		}
		cleaned[key] = value
	}

	return cleaned
}
