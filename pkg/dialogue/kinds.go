package dialogue

import "fmt"

// DialogKind tags what a page opens on the client beyond its text
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogBuySell
	DialogRepair
	DialogRefine
	DialogRefineRetrieve
	DialogCompanionManage
	DialogWeddingRing
	DialogRefinementStone
	DialogMasterRefine
	DialogWeaponReset
	DialogItemFragment
	DialogAccessoryRefine
	DialogWeaponCraft
)

var dialogKindNames = []string{
	"None",
	"BuySell",
	"Repair",
	"Refine",
	"RefineRetrieve",
	"CompanionManage",
	"WeddingRing",
	"RefinementStone",
	"MasterRefine",
	"WeaponReset",
	"ItemFragment",
	"AccessoryRefine",
	"WeaponCraft",
}

func (k DialogKind) String() string { return enumName(dialogKindNames, int(k)) }

// ParseDialogKind converts a raw client value into a DialogKind
func ParseDialogKind(v int) (DialogKind, error) {
	if v < 0 || v >= len(dialogKindNames) {
		return 0, fmt.Errorf("%w: dialog kind %d out of range", ErrValidation, v)
	}
	return DialogKind(v), nil
}

// CheckKind is the player-state property a Check inspects
type CheckKind int

const (
	CheckLevel CheckKind = iota
	CheckGender
	CheckClass
	CheckGold
	CheckHasItem
	CheckHasWeapon
	CheckHorse
	CheckRandom
	CheckPKPoints
	CheckDaysOfWeek
	CheckHourOfDay
)

var checkKindNames = []string{
	"Level",
	"Gender",
	"Class",
	"Gold",
	"HasItem",
	"HasWeapon",
	"Horse",
	"Random",
	"PKPoints",
	"DaysOfWeek",
	"HourOfDay",
}

func (k CheckKind) String() string { return enumName(checkKindNames, int(k)) }

// ParseCheckKind converts a raw client value into a CheckKind
func ParseCheckKind(v int) (CheckKind, error) {
	if v < 0 || v >= len(checkKindNames) {
		return 0, fmt.Errorf("%w: check kind %d out of range", ErrValidation, v)
	}
	return CheckKind(v), nil
}

// Operator compares a checked value against the check's parameters
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

var operatorNames = []string{
	"Equal",
	"NotEqual",
	"LessThan",
	"LessThanOrEqual",
	"GreaterThan",
	"GreaterThanOrEqual",
}

func (o Operator) String() string { return enumName(operatorNames, int(o)) }

// ParseOperator converts a raw client value into an Operator
func ParseOperator(v int) (Operator, error) {
	if v < 0 || v >= len(operatorNames) {
		return 0, fmt.Errorf("%w: operator %d out of range", ErrValidation, v)
	}
	return Operator(v), nil
}

// ActionKind is the side effect an Action applies when its page runs
type ActionKind int

const (
	ActionTeleport ActionKind = iota
	ActionTakeGold
	ActionGiveGold
	ActionGiveItem
	ActionTakeItem
	ActionChangeElement
	ActionChangeHorse
	ActionMarriage
	ActionDivorce
	ActionRemoveWedding
	ActionSetFlag
)

var actionKindNames = []string{
	"Teleport",
	"TakeGold",
	"GiveGold",
	"GiveItem",
	"TakeItem",
	"ChangeElement",
	"ChangeHorse",
	"Marriage",
	"Divorce",
	"RemoveWedding",
	"SetFlag",
}

func (k ActionKind) String() string { return enumName(actionKindNames, int(k)) }

// ParseActionKind converts a raw client value into an ActionKind
func ParseActionKind(v int) (ActionKind, error) {
	if v < 0 || v >= len(actionKindNames) {
		return 0, fmt.Errorf("%w: action kind %d out of range", ErrValidation, v)
	}
	return ActionKind(v), nil
}

// EnumValue is one entry of an enumeration listing
type EnumValue struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

// DialogKinds lists every DialogKind in declaration order
func DialogKinds() []EnumValue { return enumValues(dialogKindNames) }

// CheckKinds lists every CheckKind in declaration order
func CheckKinds() []EnumValue { return enumValues(checkKindNames) }

// Operators lists every Operator in declaration order
func Operators() []EnumValue { return enumValues(operatorNames) }

// ActionKinds lists every ActionKind in declaration order
func ActionKinds() []EnumValue { return enumValues(actionKindNames) }

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("Unknown(%d)", v)
	}
	return names[v]
}

func enumValues(names []string) []EnumValue {
	out := make([]EnumValue, len(names))
	for i, n := range names {
		out[i] = EnumValue{Value: i, Name: n}
	}
	return out
}
