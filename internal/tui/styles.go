package tui

import "github.com/charmbracelet/lipgloss"

var (
	activeBoldStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	activeRegularStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	dimBoldStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8C8C8C"))
	dimRegularStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headingStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	simplifiedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF87"))
	simplifiableStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFD7"))

	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Italic(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")).Bold(true)
	listenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)

	tocTitleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	tocSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tocPreviewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Italic(true)
)
