package department

import (
	"fmt"
	"strings"

	"github.com/rccmquiz/rccm/internal/question"
)

// Department is one of the 13 exam departments. The zero value is invalid.
type Department int

const (
	Unknown Department = iota
	Basic
	Road
	Tunnel
	RiverSabo
	UrbanPlanning
	Landscape
	ConstructionEnv
	SteelConcrete
	SoilFoundation
	ConstructionPlanning
	WaterSupply
	Forestry
	Agriculture
)

// Info describes a department. Name is the only string ever compared with
// a question's category.
type Info struct {
	Department Department
	Slug       string
	Name       string
	Tier       question.Tier
}

var catalog = []Info{
	{Basic, "basic", "共通", question.TierBasic},
	{Road, "road", "道路", question.TierSpecialist},
	{Tunnel, "tunnel", "トンネル", question.TierSpecialist},
	{RiverSabo, "river", "河川、砂防及び海岸・海洋", question.TierSpecialist},
	{UrbanPlanning, "urban_planning", "都市計画及び地方計画", question.TierSpecialist},
	{Landscape, "landscape", "造園", question.TierSpecialist},
	{ConstructionEnv, "construction_env", "建設環境", question.TierSpecialist},
	{SteelConcrete, "steel_concrete", "鋼構造及びコンクリート", question.TierSpecialist},
	{SoilFoundation, "soil_foundation", "土質及び基礎", question.TierSpecialist},
	{ConstructionPlanning, "construction_planning", "施工計画、施工設備及び積算", question.TierSpecialist},
	{WaterSupply, "water_supply", "上水道及び工業用水道", question.TierSpecialist},
	{Forestry, "forestry", "森林土木", question.TierSpecialist},
	{Agriculture, "agriculture", "農業土木", question.TierSpecialist},
}

// All returns every department in display order.
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// ByTier returns the departments belonging to a tier.
func ByTier(t question.Tier) []Info {
	var out []Info
	for _, info := range catalog {
		if info.Tier == t {
			out = append(out, info)
		}
	}
	return out
}

// Lookup returns the catalog entry for d.
func Lookup(d Department) (Info, bool) {
	i := int(d) - 1
	if i < 0 || i >= len(catalog) {
		return Info{}, false
	}
	return catalog[i], true
}

// Valid reports whether d is in the catalog.
func (d Department) Valid() bool {
	_, ok := Lookup(d)
	return ok
}

// Name returns the canonical category string, or "" for an invalid value.
func (d Department) Name() string {
	info, _ := Lookup(d)
	return info.Name
}

// Slug returns the ASCII identifier used on the command line.
func (d Department) Slug() string {
	info, _ := Lookup(d)
	return info.Slug
}

// Tier returns the tier the department belongs to.
func (d Department) Tier() question.Tier {
	info, _ := Lookup(d)
	return info.Tier
}

func (d Department) String() string {
	if info, ok := Lookup(d); ok {
		return info.Slug
	}
	return fmt.Sprintf("department(%d)", int(d))
}

// FromName maps an exact canonical name back to its department.
// No normalization is applied.
func FromName(name string) (Department, bool) {
	for _, info := range catalog {
		if info.Name == name {
			return info.Department, true
		}
	}
	return Unknown, false
}

// Parse resolves a command-line value: an exact slug (case-insensitive)
// or an exact canonical name.
func Parse(s string) (Department, error) {
	v := strings.TrimSpace(s)
	for _, info := range catalog {
		if strings.EqualFold(info.Slug, v) || info.Name == v {
			return info.Department, nil
		}
	}
	return Unknown, fmt.Errorf("unknown department %q", s)
}

// CheckTier verifies that d belongs to tier t.
func CheckTier(d Department, t question.Tier) error {
	info, ok := Lookup(d)
	if !ok {
		return fmt.Errorf("unknown department %d", int(d))
	}
	if info.Tier != t {
		return fmt.Errorf("department %s belongs to tier %s, not %s", info.Slug, info.Tier, t)
	}
	return nil
}

// categoryAliases maps the exact wording variants used across exam years
// to departments. Anything not listed here or in the catalog is unknown.
var categoryAliases = map[string]Department{
	"河川砂防":          RiverSabo,
	"河川砂防海岸":        RiverSabo,
	"河川砂防海岸海洋":      RiverSabo,
	"河川砂防及び海岸・海洋":   RiverSabo,
	"河川、砂防及び海岸･海洋":  RiverSabo,
	"河川・砂防及び海岸・海洋":  RiverSabo,
	"河川・砂防":         RiverSabo,
	"都市計画地方計画":      UrbanPlanning,
	"鋼構造コンクリート":     SteelConcrete,
	"施工計画":          ConstructionPlanning,
	"施工計画施工設備積算":    ConstructionPlanning,
	"施工計画、施工設備及び積算": ConstructionPlanning,
}

// NormalizeCategory maps a raw category from a data file to its department
// by exact match against canonical names and known wording variants. It is
// for loading only; pool selection compares canonical names.
func NormalizeCategory(raw string) (Department, bool) {
	v := strings.TrimSpace(raw)
	if d, ok := FromName(v); ok {
		return d, true
	}
	if d, ok := categoryAliases[v]; ok {
		return d, true
	}
	return Unknown, false
}
