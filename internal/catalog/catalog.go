// Package catalog is the fixed list of standard parts offered when
// registering a new part.
package catalog

import (
	"strings"

	"aerocode/internal/domain"
)

type Entry struct {
	Index    int           `json:"index"`
	Name     string        `json:"name"`
	Origin   domain.Origin `json:"origin"`
	Supplier string        `json:"supplier"`
	Group    string        `json:"group"`
}

const (
	GroupEngines     = "ENGINES"
	GroupFuselage    = "FUSELAGE"
	GroupWings       = "WINGS"
	GroupLandingGear = "LANDING_GEAR"
	GroupSystems     = "SYSTEMS"
	GroupAvionics    = "AVIONICS"
	GroupInterior    = "INTERIOR"
	GroupAuxiliary   = "AUXILIARY"
	GroupElectrical  = "ELECTRICAL"
	GroupSafety      = "SAFETY"
)

// Groups lists group names in catalog order.
var Groups = []string{
	GroupEngines, GroupFuselage, GroupWings, GroupLandingGear, GroupSystems,
	GroupAvionics, GroupInterior, GroupAuxiliary, GroupElectrical, GroupSafety,
}

const (
	dom = domain.OriginDomestic
	imp = domain.OriginImported
)

var entries = []Entry{
	{Name: "Pratt & Whitney PW1100G Engine", Origin: imp, Supplier: "Pratt & Whitney", Group: GroupEngines},
	{Name: "CFM56-7B Engine", Origin: imp, Supplier: "CFM International", Group: GroupEngines},
	{Name: "Rolls-Royce BR725 Engine", Origin: imp, Supplier: "Rolls-Royce", Group: GroupEngines},

	{Name: "Forward Fuselage", Origin: dom, Supplier: "Embraer Fabricação", Group: GroupFuselage},
	{Name: "Center Fuselage", Origin: dom, Supplier: "Embraer Fabricação", Group: GroupFuselage},
	{Name: "Aft Fuselage", Origin: dom, Supplier: "Embraer Fabricação", Group: GroupFuselage},
	{Name: "Tail Cone", Origin: dom, Supplier: "Embraer Fabricação", Group: GroupFuselage},

	{Name: "Main Wing", Origin: dom, Supplier: "Embraer Aeroestruturas", Group: GroupWings},
	{Name: "Winglet", Origin: dom, Supplier: "Embraer Aeroestruturas", Group: GroupWings},
	{Name: "Flap", Origin: dom, Supplier: "Liebherr Brasil", Group: GroupWings},
	{Name: "Aileron", Origin: dom, Supplier: "Liebherr Brasil", Group: GroupWings},

	{Name: "Main Landing Gear", Origin: imp, Supplier: "Liebherr Aerospace", Group: GroupLandingGear},
	{Name: "Nose Landing Gear", Origin: imp, Supplier: "Liebherr Aerospace", Group: GroupLandingGear},

	{Name: "Primary Hydraulic System", Origin: imp, Supplier: "Parker Hannifin", Group: GroupSystems},
	{Name: "Backup Hydraulic System", Origin: imp, Supplier: "Parker Hannifin", Group: GroupSystems},
	{Name: "Flight Control System", Origin: imp, Supplier: "Honeywell", Group: GroupSystems},
	{Name: "Flight Computer", Origin: imp, Supplier: "Thales", Group: GroupSystems},

	{Name: "Weather Radar", Origin: imp, Supplier: "Honeywell", Group: GroupAvionics},
	{Name: "GPS Navigation System", Origin: imp, Supplier: "Garmin", Group: GroupAvionics},
	{Name: "VHF Transceiver", Origin: imp, Supplier: "Collins Aerospace", Group: GroupAvionics},
	{Name: "Transponder", Origin: imp, Supplier: "Collins Aerospace", Group: GroupAvionics},

	{Name: "Executive Seats", Origin: dom, Supplier: "Recaro Brasil", Group: GroupInterior},
	{Name: "Economy Seats", Origin: dom, Supplier: "Recaro Brasil", Group: GroupInterior},
	{Name: "Compact Galley", Origin: imp, Supplier: "Zodiac Aerospace", Group: GroupInterior},
	{Name: "Executive Lavatory", Origin: imp, Supplier: "Zodiac Aerospace", Group: GroupInterior},

	{Name: "APU (Auxiliary Power Unit)", Origin: imp, Supplier: "Honeywell", Group: GroupAuxiliary},
	{Name: "Air Conditioning System", Origin: imp, Supplier: "Liebherr Aerospace", Group: GroupAuxiliary},
	{Name: "Pressurization System", Origin: imp, Supplier: "Liebherr Aerospace", Group: GroupAuxiliary},
	{Name: "Fuel System", Origin: imp, Supplier: "Parker Hannifin", Group: GroupAuxiliary},

	{Name: "Main Electrical Generator", Origin: imp, Supplier: "Hamilton Sundstrand", Group: GroupElectrical},
	{Name: "Auxiliary Electrical Generator", Origin: imp, Supplier: "Hamilton Sundstrand", Group: GroupElectrical},
	{Name: "Main Battery", Origin: imp, Supplier: "Saft", Group: GroupElectrical},
	{Name: "LED Lighting System", Origin: dom, Supplier: "Helibras", Group: GroupElectrical},

	{Name: "Oxygen System", Origin: imp, Supplier: "Air Liquide", Group: GroupSafety},
	{Name: "Fire Suppression System", Origin: imp, Supplier: "Kidde Aerospace", Group: GroupSafety},
	{Name: "Life Vest", Origin: dom, Supplier: "Embraer Safety", Group: GroupSafety},
}

func init() {
	for i := range entries {
		entries[i].Index = i
	}
}

// All returns a copy of every entry in catalog order.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

func Len() int { return len(entries) }

// Get returns the entry at a zero-based index.
func Get(index int) (Entry, bool) {
	if index < 0 || index >= len(entries) {
		return Entry{}, false
	}
	return entries[index], true
}

// Search matches term case-insensitively against name and supplier. An empty
// term matches nothing.
func Search(term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), term) || strings.Contains(strings.ToLower(e.Supplier), term) {
			out = append(out, e)
		}
	}
	return out
}

func ByGroup(group string) []Entry {
	var out []Entry
	for _, e := range entries {
		if strings.EqualFold(e.Group, group) {
			out = append(out, e)
		}
	}
	return out
}

func ByOrigin(origin domain.Origin) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Origin == origin {
			out = append(out, e)
		}
	}
	return out
}

// Known reports whether name, and supplier when given, match an entry.
func Known(name, supplier string) bool {
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) && (supplier == "" || strings.EqualFold(e.Supplier, supplier)) {
			return true
		}
	}
	return false
}
