package model

// Category identifies one resource pool managed by the tracker.
type Category int

const (
	CategoryParking Category = iota
	CategoryBatteryCable
	CategoryLockerUmbrella
	CategoryValetInflation
)

// AllCategories lists every category in scan order.
var AllCategories = []Category{
	CategoryParking,
	CategoryBatteryCable,
	CategoryLockerUmbrella,
	CategoryValetInflation,
}

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryParking:
		return "parking"
	case CategoryBatteryCable:
		return "battery_cable"
	case CategoryLockerUmbrella:
		return "locker_umbrella"
	case CategoryValetInflation:
		return "valet_inflation"
	default:
		return "unknown"
	}
}

// Devices returns the names of the physical devices making up the category,
// in the order they are printed on booking reports.
func (c Category) Devices() []string {
	switch c {
	case CategoryParking:
		return []string{"Parking Slot"}
	case CategoryBatteryCable:
		return []string{"Battery", "Cable"}
	case CategoryLockerUmbrella:
		return []string{"Locker", "Umbrella"}
	case CategoryValetInflation:
		return []string{"Inflation Service", "Valet Parking"}
	default:
		return nil
	}
}

// EssentialMask is the 3-bit essential selection of a request.
// Bit 2 is battery+cable, bit 1 locker+umbrella and bit 0 valet+inflation.
type EssentialMask uint8

const (
	EssentialValetInflation EssentialMask = 1 << iota
	EssentialLockerUmbrella
	EssentialBatteryCable

	essentialAll = EssentialBatteryCable | EssentialLockerUmbrella | EssentialValetInflation
)

// Has reports whether the mask selects the essential pair of category c.
func (m EssentialMask) Has(c Category) bool {
	switch c {
	case CategoryBatteryCable:
		return m&EssentialBatteryCable != 0
	case CategoryLockerUmbrella:
		return m&EssentialLockerUmbrella != 0
	case CategoryValetInflation:
		return m&EssentialValetInflation != 0
	default:
		return false
	}
}

// Count returns the number of essential pairs selected.
func (m EssentialMask) Count() int {
	n := 0
	for _, b := range []EssentialMask{EssentialBatteryCable, EssentialLockerUmbrella, EssentialValetInflation} {
		if m&b != 0 {
			n++
		}
	}
	return n
}

// Valid reports whether only the three defined bits are set.
func (m EssentialMask) Valid() bool { return m&^essentialAll == 0 }

// Requested returns the categories needed by a booking in scan order.
func Requested(parking bool, mask EssentialMask) []Category {
	cats := make([]Category, 0, 4)
	if parking {
		cats = append(cats, CategoryParking)
	}
	for _, c := range AllCategories[1:] {
		if mask.Has(c) {
			cats = append(cats, c)
		}
	}
	return cats
}

// Placement records the instance chosen in each category for an accepted
// request. Unused categories hold -1.
type Placement [4]int

// NoPlacement returns a Placement with every category unset.
func NoPlacement() Placement { return Placement{-1, -1, -1, -1} }

// Instance returns the instance used for category c or -1.
func (p Placement) Instance(c Category) int { return p[c] }
