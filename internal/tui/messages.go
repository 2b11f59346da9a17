// Package tui provides Bubble Tea models for browsing card version histories.
package tui

import "github.com/h0rv/cardsync/internal/domain"

// ProjectSelectedMsg is emitted when the user selects a project.
type ProjectSelectedMsg struct {
	Project domain.Project
}

// GroupingSelectedMsg is emitted when the user selects a board grouping.
type GroupingSelectedMsg struct {
	Grouping Grouping
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
