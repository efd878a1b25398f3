package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sadopc/pixelpomo/internal/timer"
)

// newTaskForm asks for the text of a new quest.
func newTaskForm(text *string) *huh.Form {
	*text = ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New quest").
				Placeholder("What needs doing?").
				CharLimit(120).
				Value(text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("quest needs a name")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// validMinutes accepts whole minutes within the duration bounds.
func validMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of minutes")
	}
	if n < timer.MinMinutes || n > timer.MaxMinutes {
		return errors.New("minutes must be between 1 and 99")
	}
	return nil
}
