package generate

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Lightweight fake-data word lists, enough for plausible names without a
// faker dependency.
var (
	firstNames = []string{
		"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
		"William", "Barbara", "David", "Susan", "Richard", "Jessica", "Joseph", "Sarah",
		"Thomas", "Karen", "Charles", "Lisa", "Daniel", "Nancy", "Matthew", "Betty",
		"Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
		"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
	}
	companySuffixes = []string{
		"Corp", "Inc", "Ltd", "Group", "Solutions", "Systems", "Technologies", "Partners",
		"Enterprises", "Global", "Holdings", "Services", "Consulting", "Dynamics",
	}
	companyBases = []string{
		"Apex", "Blue", "Cedar", "Delta", "Echo", "Falcon", "Global", "Harbor", "Iris",
		"Juno", "Kite", "Luxe", "Maple", "Nexus", "Orbit", "Prism", "Quest", "Rapid",
		"Solar", "Titan", "Unity", "Vertex", "Wave", "Xeon", "Yield", "Zenith",
	}
)

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
)

// personName returns a random "First Last" name
func personName(rng *rand.Rand) string {
	return firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
}

// companyName returns a random two-word company name
func companyName(rng *rand.Rand) string {
	return companyBases[rng.Intn(len(companyBases))] + " " + companySuffixes[rng.Intn(len(companySuffixes))]
}

// contactEmail derives a contact address from a company name
func contactEmail(company string) string {
	slug := strings.ToLower(company)
	slug = strings.ReplaceAll(slug, " ", "")
	slug = strings.ReplaceAll(slug, ",", "")
	if len(slug) > 12 {
		slug = slug[:12]
	}
	return fmt.Sprintf("contact@%s.com", slug)
}

// bothify substitutes '?' with an uppercase letter and '#' with a digit
func bothify(rng *rand.Rand, pattern string) string {
	var b strings.Builder
	for _, ch := range pattern {
		switch ch {
		case '?':
			b.WriteByte(upperLetters[rng.Intn(len(upperLetters))])
		case '#':
			b.WriteByte(digits[rng.Intn(len(digits))])
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// dateBetween returns a random day in [start, end]
func dateBetween(rng *rand.Rand, start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, rng.Intn(days+1))
}

// weightedChoice picks an index with probability proportional to weights
func weightedChoice(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}

// uniform returns a random float in [lo, hi)
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// round2 rounds to two decimal places, matching the money precision of
// the source files
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
