package cmd

import (
	"strings"

	"github.com/fatih/color"

	"github.com/sitegrade/sitegrade/internal/scanner"
)

var (
	colorPass = color.New(color.FgGreen).SprintFunc()
	colorInfo = color.New(color.FgCyan).SprintFunc()
	colorWarn = color.New(color.FgYellow).SprintFunc()
	colorFail = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status scanner.Status) string {
	switch status {
	case scanner.StatusPass:
		return colorPass(string(status))
	case scanner.StatusWarning:
		return colorWarn(string(status))
	case scanner.StatusFail, scanner.StatusError:
		return colorFail(string(status))
	default:
		return string(status)
	}
}

// formatGradeWithColor colors A/B green, C/D yellow, F red.
func formatGradeWithColor(grade string) string {
	switch strings.ToUpper(grade) {
	case "A", "B":
		return colorPass(grade)
	case "C", "D":
		return colorWarn(grade)
	case "F":
		return colorFail(grade)
	default:
		return grade
	}
}
