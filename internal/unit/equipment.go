package unit

import (
	"fmt"
	"slices"
)

// EquipmentType tags what kind of item a piece of equipment is.
type EquipmentType uint8

const (
	EquipOneHandedWeapon EquipmentType = iota
	EquipTwoHandedWeapon
	EquipShield
	EquipHeldItem
	EquipHead
	EquipBody
	EquipAccessory
	equipmentTypeCount
)

var equipmentTypeNames = [equipmentTypeCount]string{
	EquipOneHandedWeapon: "oneHandedWeapon",
	EquipTwoHandedWeapon: "twoHandedWeapon",
	EquipShield:          "shield",
	EquipHeldItem:        "heldItem",
	EquipHead:            "head",
	EquipBody:            "body",
	EquipAccessory:       "accessory",
}

func (t EquipmentType) String() string {
	if t >= equipmentTypeCount {
		return "unknown"
	}
	return equipmentTypeNames[t]
}

// ParseEquipmentType resolves a type tag from its String form.
func ParseEquipmentType(name string) (EquipmentType, error) {
	for i, n := range equipmentTypeNames {
		if n == name {
			return EquipmentType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown equipment type %q", name)
}

// IsWeapon reports whether the type occupies the weapon role.
func (t EquipmentType) IsWeapon() bool {
	return t == EquipOneHandedWeapon || t == EquipTwoHandedWeapon
}

// Slot is an equipment position on a humanoid.
type Slot uint8

const (
	SlotLeftHand Slot = iota
	SlotRightHand
	SlotHead
	SlotBody
	SlotAccessory
	slotCount
)

var slotNames = [slotCount]string{
	SlotLeftHand:  "leftHand",
	SlotRightHand: "rightHand",
	SlotHead:      "head",
	SlotBody:      "body",
	SlotAccessory: "accessory",
}

func (s Slot) String() string {
	if s >= slotCount {
		return "unknown"
	}
	return slotNames[s]
}

// ParseSlot resolves a slot from its String form.
func ParseSlot(name string) (Slot, error) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), nil
		}
	}
	return 0, fmt.Errorf("unknown slot %q", name)
}

// AllSlots returns every slot in declaration order.
func AllSlots() []Slot {
	return []Slot{SlotLeftHand, SlotRightHand, SlotHead, SlotBody, SlotAccessory}
}

func (s Slot) isHand() bool { return s == SlotLeftHand || s == SlotRightHand }

func (s Slot) otherHand() Slot {
	if s == SlotLeftHand {
		return SlotRightHand
	}
	return SlotLeftHand
}

// accepts reports whether an item of type t may sit in slot s.
func (s Slot) accepts(t EquipmentType) bool {
	switch s {
	case SlotLeftHand, SlotRightHand:
		return t == EquipOneHandedWeapon || t == EquipTwoHandedWeapon || t == EquipShield || t == EquipHeldItem
	case SlotHead:
		return t == EquipHead
	case SlotBody:
		return t == EquipBody
	case SlotAccessory:
		return t == EquipAccessory
	default:
		return false
	}
}

// Equipment is an immutable item definition. Units hold pointers to shared
// definitions; equipping swaps references and never mutates the item.
type Equipment struct {
	ID          string
	Name        string
	Type        EquipmentType
	Modifiers   map[Stat]float64 // flat contributions
	Multipliers map[Stat]float64 // multiplicative contributions (1.0 = neutral)
	MinRange    int              // weapons only
	MaxRange    int              // weapons only
	// AllowedClasses restricts who may wear the item to these class ids or
	// class tags. Empty means anyone.
	AllowedClasses []string
}

// Range returns the weapon's inclusive attack range.
func (e *Equipment) Range() (int, int) {
	return e.MinRange, e.MaxRange
}

// permits reports whether a class with the given id and tags may wear e.
func (e *Equipment) permits(classID string, tags []string) bool {
	if len(e.AllowedClasses) == 0 {
		return true
	}
	for _, allowed := range e.AllowedClasses {
		if allowed == classID || slices.Contains(tags, allowed) {
			return true
		}
	}
	return false
}

// --- Equip results ---

// EquipReason is the closed set of reasons an equip attempt can fail.
type EquipReason uint8

const (
	EquipOK                     EquipReason = iota
	ReasonTwoHandedBlocksLeft                // a two-handed weapon in the right hand blocks the left
	ReasonTwoHandedBlocksRight               // a two-handed weapon in the left hand blocks the right
	ReasonTwoHandedNeedsEmptyLeft            // equipping two-handed into the right needs the left empty
	ReasonTwoHandedNeedsEmptyRight           // equipping two-handed into the left needs the right empty
	ReasonCannotDualWield
	ReasonDualWieldRangeMismatch
	ReasonSlotTypeMismatch
	ReasonClassRestriction
)

func (r EquipReason) String() string {
	switch r {
	case EquipOK:
		return "ok"
	case ReasonTwoHandedBlocksLeft:
		return "two-handed-blocks-left"
	case ReasonTwoHandedBlocksRight:
		return "two-handed-blocks-right"
	case ReasonTwoHandedNeedsEmptyLeft:
		return "two-handed-needs-empty-left"
	case ReasonTwoHandedNeedsEmptyRight:
		return "two-handed-needs-empty-right"
	case ReasonCannotDualWield:
		return "cannot-dual-wield"
	case ReasonDualWieldRangeMismatch:
		return "dual-wield-range-mismatch"
	case ReasonSlotTypeMismatch:
		return "slot-type-mismatch"
	case ReasonClassRestriction:
		return "class-restriction"
	default:
		return "unknown"
	}
}

// EquipmentResult describes the outcome of an Equip call.
type EquipmentResult struct {
	Success  bool
	Message  string
	Reason   EquipReason // EquipOK on success
	Previous *Equipment  // item displaced from the slot, if any
}

func equipFailed(reason EquipReason, format string, args ...any) EquipmentResult {
	return EquipmentResult{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func blocksReason(slot Slot) EquipReason {
	if slot == SlotLeftHand {
		return ReasonTwoHandedBlocksLeft
	}
	return ReasonTwoHandedBlocksRight
}

func needsEmptyReason(other Slot) EquipReason {
	if other == SlotLeftHand {
		return ReasonTwoHandedNeedsEmptyLeft
	}
	return ReasonTwoHandedNeedsEmptyRight
}

// Equip places item into slot, or clears the slot when item is nil. Every
// rule violation is reported through the result; nothing is changed on
// failure.
func (u *Unit) Equip(slot Slot, item *Equipment) EquipmentResult {
	h := u.humanoid
	if h == nil {
		return equipFailed(ReasonSlotTypeMismatch, "%s cannot use equipment", u.Name)
	}
	if slot >= slotCount {
		return equipFailed(ReasonSlotTypeMismatch, "invalid slot %d", slot)
	}
	if item == nil {
		prev := h.slots[slot]
		h.slots[slot] = nil
		if prev == nil {
			return EquipmentResult{Success: true, Message: fmt.Sprintf("%s is already empty", slot)}
		}
		return EquipmentResult{Success: true, Message: fmt.Sprintf("unequipped %s from %s", prev.Name, slot), Previous: prev}
	}
	if !slot.accepts(item.Type) {
		return equipFailed(ReasonSlotTypeMismatch, "%s (%s) does not fit %s", item.Name, item.Type, slot)
	}
	classID, tags := "", []string(nil)
	if h.class != nil {
		classID, tags = h.class.ID, h.class.Tags
	}
	if !item.permits(classID, tags) {
		return equipFailed(ReasonClassRestriction, "%s cannot be worn by class %q", item.Name, classID)
	}

	if slot.isHand() {
		other := slot.otherHand()
		otherItem := h.slots[other]
		if item.Type == EquipTwoHandedWeapon && otherItem != nil {
			return equipFailed(needsEmptyReason(other), "%s needs %s empty", item.Name, other)
		}
		if otherItem != nil && otherItem.Type == EquipTwoHandedWeapon {
			return equipFailed(blocksReason(slot), "%s in %s blocks %s", otherItem.Name, other, slot)
		}
		if item.Type == EquipOneHandedWeapon && otherItem != nil && otherItem.Type == EquipOneHandedWeapon {
			if !u.CanDualWield() {
				return equipFailed(ReasonCannotDualWield, "%s cannot dual wield", u.Name)
			}
			if item.MinRange != otherItem.MinRange || item.MaxRange != otherItem.MaxRange {
				return equipFailed(ReasonDualWieldRangeMismatch,
					"%s range %d-%d does not match %s range %d-%d",
					item.Name, item.MinRange, item.MaxRange, otherItem.Name, otherItem.MinRange, otherItem.MaxRange)
			}
		}
	}

	prev := h.slots[slot]
	h.slots[slot] = item
	return EquipmentResult{Success: true, Message: fmt.Sprintf("equipped %s to %s", item.Name, slot), Previous: prev}
}

// Equipped returns the item sitting directly in slot.
func (u *Unit) Equipped(slot Slot) *Equipment {
	if u.humanoid == nil || slot >= slotCount {
		return nil
	}
	return u.humanoid.slots[slot]
}

// HandBlocked reports whether a hand slot is unusable because the other hand
// holds a two-handed weapon.
func (u *Unit) HandBlocked(slot Slot) bool {
	if u.humanoid == nil || !slot.isHand() {
		return false
	}
	other := u.humanoid.slots[slot.otherHand()]
	return other != nil && other.Type == EquipTwoHandedWeapon
}

// equippedItems returns every equipped item once, slot order.
func (u *Unit) equippedItems() []*Equipment {
	if u.humanoid == nil {
		return nil
	}
	out := make([]*Equipment, 0, slotCount)
	for _, it := range u.humanoid.slots {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Weapons returns the equipped weapons, right hand first.
func (u *Unit) Weapons() []*Equipment {
	if u.humanoid == nil {
		return nil
	}
	var out []*Equipment
	for _, s := range []Slot{SlotRightHand, SlotLeftHand} {
		if it := u.humanoid.slots[s]; it != nil && it.Type.IsWeapon() {
			out = append(out, it)
		}
	}
	return out
}
