package notify

// Message colors for services that draw a colored border or card.
const (
	colorInfo    = "#439FE0"
	colorSuccess = "#2EB886"
	colorError   = "#A30200"
)

// severityParams returns the shoutrrr parameters that style a message of the
// given severity on a service, keyed by URL scheme. Services without a color
// or priority setting get none.
func severityParams(scheme string, severity Severity) map[string]string {
	switch scheme {
	case "slack", "teams":
		color := colorInfo
		switch severity {
		case SeveritySuccess:
			color = colorSuccess
		case SeverityError:
			color = colorError
		}
		return map[string]string{"color": color}
	case "gotify":
		if severity == SeverityError {
			return map[string]string{"priority": "8"}
		}
		return map[string]string{"priority": "4"}
	case "pushover":
		if severity == SeverityError {
			return map[string]string{"priority": "1"}
		}
		return map[string]string{"priority": "0"}
	case "ntfy":
		if severity == SeverityError {
			return map[string]string{"priority": "high"}
		}
		return map[string]string{"priority": "default"}
	default:
		return nil
	}
}
