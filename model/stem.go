package model

// StemType identifies one separated component of a source recording.
type StemType string

const (
	StemVocals StemType = "vocals"
	StemDrums  StemType = "drums"
	StemBass   StemType = "bass"
	StemOther  StemType = "other"
)

// AllStemTypes returns the four stem types in canonical order. Iterating
// this slice instead of an open map gives exhaustiveness at the call sites.
func AllStemTypes() []StemType {
	return []StemType{StemVocals, StemDrums, StemBass, StemOther}
}

// Valid reports whether s is one of the four known stem types.
func (s StemType) Valid() bool {
	switch s {
	case StemVocals, StemDrums, StemBass, StemOther:
		return true
	}
	return false
}
