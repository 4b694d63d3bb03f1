package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

type Type string

const (
	TypeAdd         Type = "add"
	TypeDelete      Type = "delete"
	TypeList        Type = "list"
	TypeTest        Type = "test"
	TypeExport      Type = "export"
	TypePurgeAlarms Type = "purge-alarms"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
	ErrCodeAmbiguousID     ErrorCode = "ambiguous_id"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Name     string
	Deadline time.Time
	Priority model.Priority
}

type DeleteArgs struct {
	ID string
}

type ExportArgs struct {
	Path string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Delete *DeleteArgs
	Export *ExportArgs
}

// Parse reads one command line. now anchors relative deadlines.
//
//	add <name> [@ <when>] [priority:<low|medium|high>]
//	delete <id>
//	list | test | purge-alarms
//	export <path>
func Parse(input string, now time.Time) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args, now)
	case TypeDelete, "rm":
		if len(args) != 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delete requires a task id"}
		}
		return Command{Type: TypeDelete, Raw: input, Delete: &DeleteArgs{ID: args[0]}}, nil
	case TypeList, "ls":
		return Command{Type: TypeList, Raw: input}, nil
	case TypeTest:
		return Command{Type: TypeTest, Raw: input}, nil
	case TypePurgeAlarms:
		return Command{Type: TypePurgeAlarms, Raw: input}, nil
	case TypeExport:
		if len(args) == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "export requires a file path"}
		}
		return Command{Type: TypeExport, Raw: input, Export: &ExportArgs{Path: strings.Join(args, " ")}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string, now time.Time) (Command, error) {
	priority := model.PriorityMedium
	var nameParts, whenParts []string
	inWhen := false
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "priority:"):
			p, err := model.ParsePriority(strings.TrimPrefix(lower, "priority:"))
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "priority must be low, medium or high"}
			}
			priority = p
		case arg == "@":
			inWhen = true
		case inWhen:
			whenParts = append(whenParts, arg)
		default:
			nameParts = append(nameParts, arg)
		}
	}

	name := strings.TrimSpace(strings.Join(nameParts, " "))
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a task name"}
	}
	deadline, err := ParseDeadline(strings.Join(whenParts, " "), now)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Name: name, Deadline: deadline, Priority: priority}}, nil
}
