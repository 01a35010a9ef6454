package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"etarefas/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	TaskNum int            // 1-based position in the listing, 0 if IsID
	ID      service.TaskID // task id, set if IsID
	IsID    bool           // true for "#<id>" references
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses task reference from args.
// Returns the parsed reference and any error.
//
// Parsing rules:
// 1. If first arg is all digits → position in the listing (1-based)
// 2. If first arg is '#' followed by digits → task id
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}

	firstArg := args[0]

	if isAllDigits(firstArg) {
		num, err := strconv.Atoi(firstArg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", firstArg)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
		}
		return TaskRef{TaskNum: num}, nil
	}

	if len(firstArg) > 1 && firstArg[0] == '#' && isAllDigits(firstArg[1:]) {
		id, err := strconv.ParseInt(firstArg[1:], 10, 64)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", firstArg)
		}
		return TaskRef{ID: service.TaskID(id), IsID: true}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", firstArg)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
