// Package render turns backend records into display values. Nothing here
// performs I/O except the Opener used by Selection.
package render

import (
	"fmt"
	"math"
	"strings"
)

// Band is a coarse reading of a 0-100 confidence score.
type Band int

const (
	Uncertain Band = iota
	PossiblyHuman
	LikelyHuman
	VeryLikelyHuman
)

// Bands lists every band from most to least confident.
var Bands = []Band{VeryLikelyHuman, LikelyHuman, PossiblyHuman, Uncertain}

// BandOf maps a confidence score to its band. It is used for both search and
// classification confidence. NaN reads as Uncertain.
func BandOf(confidence float64) Band {
	switch {
	case math.IsNaN(confidence):
		return Uncertain
	case confidence >= 90:
		return VeryLikelyHuman
	case confidence >= 70:
		return LikelyHuman
	case confidence >= 50:
		return PossiblyHuman
	default:
		return Uncertain
	}
}

func (b Band) Label() string {
	switch b {
	case VeryLikelyHuman:
		return "very likely human"
	case LikelyHuman:
		return "likely human"
	case PossiblyHuman:
		return "possibly human"
	default:
		return "uncertain"
	}
}

func (b Band) Icon() string {
	switch b {
	case VeryLikelyHuman:
		return "✔✔"
	case LikelyHuman:
		return "✔"
	case PossiblyHuman:
		return "~"
	default:
		return "?"
	}
}

// Slug is the band's name in flags and query strings.
func (b Band) Slug() string {
	return strings.ReplaceAll(b.Label(), " ", "-")
}

func (b Band) String() string { return b.Label() }

// ParseBand accepts a Slug or a Label.
func ParseBand(s string) (Band, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, b := range Bands {
		if s == b.Slug() || s == b.Label() {
			return b, nil
		}
	}
	return Uncertain, fmt.Errorf("unknown confidence band %q", s)
}
