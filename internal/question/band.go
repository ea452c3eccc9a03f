package question

import "fmt"

// Band is an inclusive id range reserved for one tier.
type Band struct {
	Min int64
	Max int64
}

// Contains reports whether id falls inside the band.
func (b Band) Contains(id int64) bool {
	return id >= b.Min && id <= b.Max
}

// Size is the number of ids the band can hold.
func (b Band) Size() int64 {
	return b.Max - b.Min + 1
}

var (
	BasicBand      = Band{Min: 1_000_000, Max: 1_999_999}
	SpecialistBand = Band{Min: 2_000_000, Max: 2_999_999}
)

// BandFor returns the id band of a tier.
func BandFor(t Tier) (Band, error) {
	switch t {
	case TierBasic:
		return BasicBand, nil
	case TierSpecialist:
		return SpecialistBand, nil
	default:
		return Band{}, fmt.Errorf("no id band for tier %q", t)
	}
}

// TierOfID classifies an id by band. ok is false for ids outside both bands.
func TierOfID(id int64) (t Tier, ok bool) {
	switch {
	case BasicBand.Contains(id):
		return TierBasic, true
	case SpecialistBand.Contains(id):
		return TierSpecialist, true
	default:
		return "", false
	}
}

// Specialist ids are laid out per exam year: each year from FirstYear owns
// YearSpan consecutive ids, indexed by the source file's id column.
const (
	FirstYear = 2000
	LastYear  = 2099 // SpecialistBand holds 100 years of YearSpan ids
	YearSpan  = 10_000
)

// StableID derives a question id from data that does not change when other
// files or rows are added: the tier, the exam year and the id column of the
// source file. Basic questions ignore the year.
func StableID(t Tier, year int, sourceID int64) (int64, error) {
	switch t {
	case TierBasic:
		if sourceID < 0 || sourceID >= BasicBand.Size() {
			return 0, fmt.Errorf("basic id %d outside [0,%d)", sourceID, BasicBand.Size())
		}
		return BasicBand.Min + sourceID, nil
	case TierSpecialist:
		if year < FirstYear || year > LastYear {
			return 0, fmt.Errorf("exam year %d outside [%d,%d]", year, FirstYear, LastYear)
		}
		if sourceID < 0 || sourceID >= YearSpan {
			return 0, fmt.Errorf("specialist id %d outside [0,%d)", sourceID, YearSpan)
		}
		return SpecialistBand.Min + int64(year-FirstYear)*YearSpan + sourceID, nil
	default:
		return 0, fmt.Errorf("no id band for tier %q", t)
	}
}
