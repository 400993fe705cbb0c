package render

import "strings"

// Tone classifies an entry code into a colour family.
func Tone(code string) string {
	switch {
	case code == "Law":
		return "law"
	case code == "Procedure":
		return "procedure"
	case strings.HasPrefix(code, "C"):
		return "general"
	case strings.HasPrefix(code, "M"):
		return "medical"
	case strings.HasPrefix(code, "T"):
		return "trauma"
	case strings.HasPrefix(code, "S"):
		return "special"
	default:
		return "other"
	}
}

// Icon names the card icon for an entry code.
func Icon(code string) string {
	switch {
	case code == "Law":
		return "gavel"
	case code == "Procedure":
		return "file-text"
	case strings.HasPrefix(code, "C"), strings.HasPrefix(code, "S"):
		return "shield"
	case strings.HasPrefix(code, "M"):
		return "stethoscope"
	case strings.HasPrefix(code, "T"):
		return "alert-circle"
	default:
		return "activity"
	}
}
