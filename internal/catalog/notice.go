package catalog

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notice is the status message a lifecycle operation hands to the
// presentation layer.
type Notice struct {
	Message  string
	Severity Severity
}

func Success(message string) Notice {
	return Notice{Message: message, Severity: SeveritySuccess}
}

func Failure(message string) Notice {
	return Notice{Message: message, Severity: SeverityError}
}

func (n Notice) IsError() bool {
	return n.Severity == SeverityError
}
