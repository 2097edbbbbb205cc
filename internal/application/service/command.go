package service

import (
	"strings"

	appErrors "memento/internal/pkg/errors"
)

// CommandSeparator splits the time expression from the reminder text.
const CommandSeparator = "|"

// ParseCommand splits "<time> | <text>" on the first separator. The text may itself
// contain the separator.
func ParseCommand(input string) (timeExpr, text string, err error) {
	parts := strings.SplitN(input, CommandSeparator, 2)
	if len(parts) != 2 {
		return "", "", appErrors.ErrUnparseableCommand
	}
	timeExpr = strings.TrimSpace(parts[0])
	text = strings.TrimSpace(parts[1])
	if timeExpr == "" {
		return "", "", appErrors.ErrUnparseableCommand
	}
	return timeExpr, text, nil
}
