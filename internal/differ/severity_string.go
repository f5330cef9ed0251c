package differ

import "fmt"

// SeverityString to lowercase
func SeverityString(s SeverityLevel) string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityModerate:
		return "moderate"
	case SeveritySafe:
		return "info"
	default:
		return "unknown"
	}
}

// ParseSeverity is the inverse of SeverityString
func ParseSeverity(s string) (SeverityLevel, error) {
	switch s {
	case "critical":
		return SeverityCritical, nil
	case "moderate":
		return SeverityModerate, nil
	case "info":
		return SeveritySafe, nil
	default:
		return 0, fmt.Errorf("unknown severity %q (want critical, moderate or info)", s)
	}
}
