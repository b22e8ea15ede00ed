package diag

// Severity orders diagnostics from informational to fatal for the file.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// IsError reports whether s fails the run.
func (s Severity) IsError() bool { return s >= SevError }

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
