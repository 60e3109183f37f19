package fakebackend

import (
	"math"
	"strings"
	"unicode/utf8"
)

// machinePhrases are stock phrases the heuristic treats as generated text.
var machinePhrases = []string{
	"as an ai language model",
	"it is important to note",
	"in conclusion,",
	"delve into",
	"in today's fast-paced world",
	"a testament to",
}

type verdict struct {
	isHuman    bool
	confidence float64
	length     int
	complexity float64
	patterns   bool
}

// classify scores text by lexical diversity, penalising stock phrases. It
// stands in for the real classifier model and is deterministic.
func classify(text string) verdict {
	words := strings.Fields(strings.ToLower(text))
	v := verdict{length: utf8.RuneCountInString(text)}
	if len(words) == 0 {
		return v
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.Trim(w, ".,;:!?\"'()")] = struct{}{}
	}
	v.complexity = math.Round(float64(len(unique))/float64(len(words))*100) / 100

	lower := strings.ToLower(text)
	for _, p := range machinePhrases {
		if strings.Contains(lower, p) {
			v.patterns = true
			break
		}
	}

	score := 50 + 45*v.complexity
	if v.patterns {
		score -= 40
	}
	v.confidence = math.Round(math.Max(1, math.Min(99, score)))
	v.isHuman = !v.patterns && v.confidence >= 50
	return v
}
