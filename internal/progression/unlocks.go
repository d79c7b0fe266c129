package progression

import "fmt"

// Unlock is an avatar customization item gated behind an XP threshold.
type Unlock struct {
	Threshold int    `json:"threshold"`
	Category  string `json:"category"`
	Name      string `json:"name"`
}

// String renders the descriptor shown to clients, e.g. "Hairstyle: Wave Cut".
func (u Unlock) String() string {
	return fmt.Sprintf("%s: %s", u.Category, u.Name)
}

// ItemType is the avatar item type the unlock is stored under.
func (u Unlock) ItemType() string {
	switch u.Category {
	case "Hairstyle":
		return "hair"
	case "Clothing":
		return "clothing"
	case "Accessory":
		return "accessory"
	case "Background":
		return "background"
	default:
		return "pose"
	}
}

// catalog is ascending by threshold and never mutated.
var catalog = []Unlock{
	{Threshold: 500, Category: "Hairstyle", Name: "Wave Cut"},
	{Threshold: 1000, Category: "Background", Name: "Rooftop NYC"},
	{Threshold: 1500, Category: "Clothing", Name: "Designer Jacket"},
	{Threshold: 2000, Category: "Accessory", Name: "Gold Chain"},
	{Threshold: 3000, Category: "Pose", Name: "Dancing"},
}

// Catalog returns a copy of the unlock catalog.
func Catalog() []Unlock {
	out := make([]Unlock, len(catalog))
	copy(out, catalog)
	return out
}

// UnlocksFor returns every catalog item whose threshold is at most xp, in catalog order.
func UnlocksFor(xp int) []Unlock {
	out := make([]Unlock, 0, len(catalog))
	for _, u := range catalog {
		if u.Threshold <= xp {
			out = append(out, u)
		}
	}
	return out
}

// LookupUnlock finds a catalog item by its descriptor string.
func LookupUnlock(descriptor string) (Unlock, bool) {
	for _, u := range catalog {
		if u.String() == descriptor || u.Name == descriptor {
			return u, true
		}
	}
	return Unlock{}, false
}

// Names renders unlocks as descriptor strings.
func Names(us []Unlock) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.String()
	}
	return out
}

// NewlyUnlocked returns the unlocks reached when moving from oldXP to newXP.
func NewlyUnlocked(oldXP, newXP int) []Unlock {
	var out []Unlock
	for _, u := range catalog {
		if u.Threshold > oldXP && u.Threshold <= newXP {
			out = append(out, u)
		}
	}
	return out
}
