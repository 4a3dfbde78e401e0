package admin

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/access"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

// Category classifies a failed operation
type Category string

const (
	CategoryNone          Category = ""
	CategoryAuthorization Category = "authorization"
	CategoryNotFound      Category = "not_found"
	CategoryValidation    Category = "validation"
	CategoryUnexpected    Category = "unexpected"
)

// Result is the envelope every admin operation returns
type Result struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Data     any      `json:"data,omitempty"`
	Category Category `json:"category,omitempty"`
}

func ok(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func denied(required access.Tier) Result {
	return Result{
		Message:  fmt.Sprintf("Insufficient permission, %s required", required),
		Category: CategoryAuthorization,
	}
}

// errNotFound and errInvalid build boundary-level errors that classify like
// the core sentinels
func errNotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dialogue.ErrNotFound, fmt.Sprintf(format, args...))
}

func errInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dialogue.ErrValidation, fmt.Sprintf(format, args...))
}

// classify maps a core error onto a Category
func classify(err error) Category {
	switch {
	case errors.Is(err, dialogue.ErrNotFound),
		errors.Is(err, items.ErrNotFound),
		errors.Is(err, world.ErrUnknownMap),
		errors.Is(err, world.ErrUnknownRegion),
		errors.Is(err, world.ErrNotLive):
		return CategoryNotFound
	case errors.Is(err, dialogue.ErrValidation),
		errors.Is(err, dialogue.ErrConflict),
		errors.Is(err, items.ErrValidation),
		errors.Is(err, world.ErrInvalidCell),
		errors.Is(err, world.ErrAlreadyLive):
		return CategoryValidation
	default:
		return CategoryUnexpected
	}
}
