// Package ui renders placectl output: coloured status lines (fatih/color)
// and bordered place and route cards (lipgloss).
package ui
