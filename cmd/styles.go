package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	majorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	minorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	patchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("135"))
	skimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

// renderClassification colors a classification by severity, appending a
// breaking marker when set.
func renderClassification(class domain.Classification, breaking bool) string {
	label := string(class)
	if breaking {
		label += " (breaking)"
	}
	switch class {
	case domain.ClassMajor:
		return majorStyle.Render(label)
	case domain.ClassMinor:
		if breaking {
			return majorStyle.Render(label)
		}
		return minorStyle.Render(label)
	case domain.ClassPatch:
		return patchStyle.Render(label)
	case domain.ClassUnknownFormat:
		return unknownStyle.Render(label)
	default:
		return mutedStyle.Render(label)
	}
}

// renderAction colors a recommended action by urgency.
func renderAction(action domain.Action) string {
	label := strings.ToUpper(strings.ReplaceAll(string(action), "_", " "))
	switch action {
	case domain.ActionUrgent:
		return majorStyle.Render(label)
	case domain.ActionDeepDive:
		return minorStyle.Render(label)
	case domain.ActionSkim:
		return skimStyle.Render(label)
	default:
		return mutedStyle.Render(label)
	}
}
