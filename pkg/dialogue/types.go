// Package dialogue stores NPC dialogue graphs as flat, identity-indexed records.
//
// Pages reference each other through integer ids (success page, check fail
// page, button destination). Cycles are allowed. Every edge mutation goes
// through the Store so its reverse-edge index stays exact. A Store is not safe
// for concurrent use; callers serialize access.
package dialogue

import "errors"

var (
	// ErrNotFound is returned when a referenced record id does not resolve.
	ErrNotFound = errors.New("dialogue: not found")
	// ErrValidation is returned for malformed input, before anything is mutated.
	ErrValidation = errors.New("dialogue: invalid input")
	// ErrConflict is returned when a slot that must be empty is already set.
	ErrConflict = errors.New("dialogue: conflict")
)

// NPC is an admin-authored NPC definition
type NPC struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       int    `json:"image"`                   // sprite reference
	RegionID    int    `json:"region_id,omitempty"`     // 0 when unplaced
	EntryPageID int    `json:"entry_page_id,omitempty"` // 0 when the NPC has no dialogue
}

// Page is one node of the dialogue graph
type Page struct {
	ID            int        `json:"id"`
	Description   string     `json:"description"`
	DialogKind    DialogKind `json:"dialog_kind"`
	Say           string     `json:"say"`                       // body text template
	Arguments     string     `json:"arguments,omitempty"`       // free-form arguments for the dialog kind
	SuccessPageID int        `json:"success_page_id,omitempty"` // followed when every check passes
	CheckIDs      []int      `json:"check_ids,omitempty"`
	ActionIDs     []int      `json:"action_ids,omitempty"`
	ButtonIDs     []int      `json:"button_ids,omitempty"`
	GoodIDs       []int      `json:"good_ids,omitempty"`
}

// Check gates a page on player state; on failure the dialogue jumps to FailPageID
type Check struct {
	ID          int       `json:"id"`
	PageID      int       `json:"page_id"`
	Kind        CheckKind `json:"kind"`
	Operator    Operator  `json:"operator"`
	StringParam string    `json:"string_param,omitempty"`
	IntParam1   int       `json:"int_param1,omitempty"`
	IntParam2   int       `json:"int_param2,omitempty"`
	ItemID      int       `json:"item_id,omitempty"`
	FailPageID  int       `json:"fail_page_id,omitempty"`
}

// Action is a side-effecting step with no outgoing edge
type Action struct {
	ID          int        `json:"id"`
	PageID      int        `json:"page_id"`
	Kind        ActionKind `json:"kind"`
	StringParam string     `json:"string_param,omitempty"`
	IntParam1   int        `json:"int_param1,omitempty"`
	IntParam2   int        `json:"int_param2,omitempty"`
	ItemID      int        `json:"item_id,omitempty"`
	MapID       int        `json:"map_id,omitempty"`
}

// Button is a player-visible choice
type Button struct {
	ID                int `json:"id"`
	PageID            int `json:"page_id"`
	ButtonID          int `json:"button_id"`
	DestinationPageID int `json:"destination_page_id,omitempty"`
}

// Good is a purchasable item offer
type Good struct {
	ID     int     `json:"id"`
	PageID int     `json:"page_id"`
	ItemID int     `json:"item_id"`
	Rate   float64 `json:"rate"`
	Cost   int     `json:"cost"`
}

// PageFields are the scalar, edge-free fields of a Page
type PageFields struct {
	Description string
	DialogKind  DialogKind
	Say         string
	Arguments   string
}

// CheckFields are the scalar, edge-free fields of a Check
type CheckFields struct {
	Kind        CheckKind
	Operator    Operator
	StringParam string
	IntParam1   int
	IntParam2   int
	ItemID      int
}

// ActionFields are the scalar fields of an Action
type ActionFields struct {
	Kind        ActionKind
	StringParam string
	IntParam1   int
	IntParam2   int
	ItemID      int
	MapID       int
}

// GoodFields are the scalar fields of a Good
type GoodFields struct {
	ItemID int
	Rate   float64
	Cost   int
}

// EdgeKind names the slot an edge into a page lives in
type EdgeKind int

const (
	EdgeEntry       EdgeKind = iota // NPC.EntryPageID, owner is an NPC id
	EdgeSuccess                     // Page.SuccessPageID, owner is a page id
	EdgeFail                        // Check.FailPageID, owner is a check id
	EdgeDestination                 // Button.DestinationPageID, owner is a button id
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeEntry:
		return "entry"
	case EdgeSuccess:
		return "success"
	case EdgeFail:
		return "fail"
	case EdgeDestination:
		return "destination"
	}
	return "unknown"
}

// EdgeRef identifies one edge by its slot and the record that owns the slot
type EdgeRef struct {
	Kind  EdgeKind `json:"kind"`
	Owner int      `json:"owner"`
}
