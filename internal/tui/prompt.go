package tui

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// ErrInteractiveDisabled is returned when a prompt is needed but cannot be shown
var ErrInteractiveDisabled = fmt.Errorf("interactive prompts are disabled (not a terminal or GUW_NON_INTERACTIVE is set)")

// Confirm asks a yes/no question
func Confirm(message string, defaultValue bool) (bool, error) {
	if !IsInteractive() {
		return false, ErrInteractiveDisabled
	}
	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}
