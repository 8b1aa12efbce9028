// Package keywords rankt Einzelwort-Schlagwörter nach einem YAKE-artigen statistischen Verfahren.
package keywords

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// ErrUnsupportedLanguage wird für Sprachen ohne Stoppwortliste geliefert.
var ErrUnsupportedLanguage = errors.New("unsupported keyword language")

// Ranker bewertet Kandidaten anhand von Schreibweise, Position, Häufigkeit, Kontext und Satzstreuung.
// Niedrigere Scores sind relevanter. Das Ergebnis ist für gleiche Eingaben deterministisch.
type Ranker struct {
	Language string
	// MinLength ist die Mindestlänge eines Kandidaten in Runen.
	MinLength int

	stopwords map[string]struct{}
}

// NewRanker erstellt einen Ranker für die gegebene Sprache.
func NewRanker(language string) (*Ranker, error) {
	words, ok := stopwordLists[strings.ToLower(language)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	stops := make(map[string]struct{}, len(words))
	for _, w := range words {
		stops[w] = struct{}{}
	}
	return &Ranker{Language: language, MinLength: 3, stopwords: stops}, nil
}

type termStats struct {
	tf        int
	upper     int
	acronym   int
	sentences []int
	left      map[string]int
	right     map[string]int
}

// Extract liefert bis zu n Schlagwörter in Kleinschreibung, bestes zuerst.
func (r *Ranker) Extract(text string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	sentences := splitSentences(text)
	stats := map[string]*termStats{}

	for si, sentence := range sentences {
		words := tokenize(sentence)
		var prev string
		for wi, w := range words {
			term := strings.ToLower(w)
			if !r.candidate(term) {
				prev = ""
				continue
			}
			s, ok := stats[term]
			if !ok {
				s = &termStats{left: map[string]int{}, right: map[string]int{}}
				stats[term] = s
			}
			s.tf++
			if isAcronym(w) {
				s.acronym++
			} else if wi > 0 && unicode.IsUpper([]rune(w)[0]) {
				s.upper++
			}
			if len(s.sentences) == 0 || s.sentences[len(s.sentences)-1] != si {
				s.sentences = append(s.sentences, si)
			}
			if prev != "" {
				s.left[prev]++
				stats[prev].right[term]++
			}
			prev = term
		}
	}

	if len(stats) == 0 {
		return []string{}, nil
	}

	mean, std, maxTF := frequencyMoments(stats)
	type scored struct {
		term  string
		score float64
	}
	ranked := make([]scored, 0, len(stats))
	for term, s := range stats {
		tf := float64(s.tf)
		casing := float64(max(s.upper, s.acronym)) / (1 + math.Log(tf))
		position := math.Log(math.Log(3 + median(s.sentences)))
		freq := tf / (mean + std)
		rel := 1 + (dispersion(s.left)+dispersion(s.right))*tf/maxTF
		spread := float64(len(s.sentences)) / float64(len(sentences))

		score := rel * position / (casing + freq/rel + spread/rel)
		ranked = append(ranked, scored{term: term, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].term < ranked[j].term
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.term
	}
	return out, nil
}

func (r *Ranker) candidate(term string) bool {
	if len([]rune(term)) < r.MinLength {
		return false
	}
	if _, stop := r.stopwords[term]; stop {
		return false
	}
	for _, c := range term {
		if unicode.IsLetter(c) {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(c rune) bool {
		return c == '.' || c == '!' || c == '?' || c == '\n' || c == ';'
	})
}

// tokenize trennt an allem außer Buchstaben, Ziffern und Bindestrichen.
func tokenize(sentence string) []string {
	fields := strings.FieldsFunc(sentence, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c) && c != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "-"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isAcronym(w string) bool {
	letters := 0
	for _, c := range w {
		if unicode.IsLetter(c) {
			if !unicode.IsUpper(c) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

func frequencyMoments(stats map[string]*termStats) (mean, std, maxTF float64) {
	for _, s := range stats {
		tf := float64(s.tf)
		mean += tf
		maxTF = math.Max(maxTF, tf)
	}
	mean /= float64(len(stats))
	for _, s := range stats {
		d := float64(s.tf) - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(stats)))
	return mean, std, maxTF
}

// dispersion ist der Anteil verschiedener Nachbarn an allen Nachbarschaften.
func dispersion(neighbours map[string]int) float64 {
	total := 0
	for _, c := range neighbours {
		total += c
	}
	if total == 0 {
		return 0
	}
	return float64(len(neighbours)) / float64(total)
}

func median(xs []int) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	// xs ist aufsteigend, da Sätze der Reihe nach besucht werden
	if n%2 == 1 {
		return float64(xs[n/2])
	}
	return float64(xs[n/2-1]+xs[n/2]) / 2
}
