/*
region.go - Union name to region inference

PURPOSE:
  Unit values and working-day counts are negotiated per region, but the
  roster only carries the free-text name of each employee's union
  ("SINDPD SP - SIND.TRAB.EM PROC DADOS E EMPR.EMPRESAS PROC DADOS ESTADO DE SP").
  The classifier turns that text into one of a closed set of regions.

MATCHING:
  Rules are data: an ordered list of (region, match kind, pattern).
  Input is upper-cased and stripped of accents, then the first rule that
  matches wins.

    token:  pattern appears surrounded by spaces (" SP ")
    suffix: name ends with " " + pattern
    prefix: name starts with pattern ("SINDPD SP")

  Rules for different regions are expected not to overlap; order decides
  otherwise.

UNKNOWN NAMES:
  Anything unmatched (including non-string cells) is RegionNone. That
  employee gets zero working days and zero unit value downstream and shows
  up in the run warnings.

SEE ALSO:
  - factory/rules.go: Rule tables from JSON/YAML
  - calculator.go: Region-keyed lookups
*/
package voucher

import (
	"strings"

	"github.com/warp/benefit-engine/schema"
)

// =============================================================================
// REGION
// =============================================================================

// Region is a two-letter state code.
type Region string

const (
	RegionNone Region = ""
	RegionSP   Region = "SP"
	RegionRJ   Region = "RJ"
	RegionRS   Region = "RS"
	RegionPR   Region = "PR"
)

var regionNames = map[Region]string{
	RegionSP: "São Paulo",
	RegionRJ: "Rio de Janeiro",
	RegionRS: "Rio Grande do Sul",
	RegionPR: "Paraná",
}

// Regions returns the supported regions in a stable order.
func Regions() []Region { return []Region{RegionSP, RegionRJ, RegionRS, RegionPR} }

// Name returns the state name used in the daily-value table.
func (r Region) Name() string { return regionNames[r] }

func (r Region) String() string {
	if r == RegionNone {
		return "none"
	}
	return string(r)
}

// ParseRegion accepts a code ("SP") or a state name ("São Paulo", "SAO PAULO").
func ParseRegion(s string) (Region, bool) {
	key := strings.TrimSpace(schema.Fold(s))
	for _, r := range Regions() {
		if key == string(r) || key == schema.Fold(r.Name()) {
			return r, true
		}
	}
	return RegionNone, false
}

// =============================================================================
// RULES
// =============================================================================

type MatchKind string

const (
	MatchToken  MatchKind = "token"
	MatchSuffix MatchKind = "suffix"
	MatchPrefix MatchKind = "prefix"
)

// RegionRule maps a pattern in a union name to a region.
type RegionRule struct {
	Region  Region
	Match   MatchKind
	Pattern string
}

// Matches tests an already folded union name.
func (r RegionRule) Matches(folded string) bool {
	p := schema.Fold(r.Pattern)
	switch r.Match {
	case MatchToken:
		return strings.Contains(" "+folded+" ", " "+p+" ")
	case MatchSuffix:
		return strings.HasSuffix(folded, " "+p)
	case MatchPrefix:
		return strings.HasPrefix(folded, p)
	}
	return false
}

// DefaultRules is the rule table for the four supported regions.
var DefaultRules = []RegionRule{
	{RegionSP, MatchToken, "SP"},
	{RegionSP, MatchSuffix, "SP"},
	{RegionSP, MatchPrefix, "SINDPD SP"},
	{RegionRJ, MatchToken, "RJ"},
	{RegionRJ, MatchSuffix, "RJ"},
	{RegionRS, MatchToken, "RS"},
	{RegionRS, MatchSuffix, "RS"},
	{RegionPR, MatchToken, "PR"},
	{RegionPR, MatchSuffix, "PR"},
	{RegionPR, MatchPrefix, "SITEPD PR"},
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier evaluates a rule table, first match wins. Safe for concurrent use.
type Classifier struct {
	rules []RegionRule
}

func NewClassifier(rules []RegionRule) *Classifier {
	return &Classifier{rules: append([]RegionRule(nil), rules...)}
}

func DefaultClassifier() *Classifier { return NewClassifier(DefaultRules) }

// Rules returns a copy of the rule table.
func (c *Classifier) Rules() []RegionRule { return append([]RegionRule(nil), c.rules...) }

// Classify returns the region of a union name. Non-string input is RegionNone.
func (c *Classifier) Classify(v any) Region {
	s, ok := v.(string)
	if !ok {
		return RegionNone
	}
	folded := strings.Join(strings.Fields(schema.Fold(s)), " ")
	if folded == "" {
		return RegionNone
	}
	for _, r := range c.rules {
		if r.Matches(folded) {
			return r.Region
		}
	}
	return RegionNone
}
