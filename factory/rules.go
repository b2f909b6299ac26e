/*
Package factory provides JSON/YAML to Go rule conversion.

PURPOSE:
  Converts rule files into the classifier and header mapping the voucher
  core runs with. Union naming and spreadsheet headers drift every few
  months; operators adjust a file instead of the code.

FILE SCHEMA (JSON shown, YAML uses the same keys):
  {
    "regions": [
      {"region": "SP", "match": "token",  "pattern": "SP"},
      {"region": "SP", "match": "prefix", "pattern": "SINDPD SP"},
      {"region": "Paraná", "match": "suffix", "pattern": "PR"}
    ],
    "columns": [
      {"canonical": "MATRICULA", "synonyms": ["CHAPA", "REGISTRO"]}
    ]
  }

  - regions replaces the default rule table when present; order matters,
    the first matching rule wins
  - region accepts a code or a state name
  - match is token (default), suffix or prefix
  - columns adds synonyms to the default header mapping

USAGE:
  f := factory.NewRulesFactory()
  rules, err := f.LoadFile("rules.yaml")
  calc := voucher.NewCalculator(rules.Classifier)

SEE ALSO:
  - voucher/region.go: Rule semantics
  - schema/schema.go: Header mapping
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/warp/benefit-engine/schema"
	"github.com/warp/benefit-engine/voucher"
)

// ErrInvalidRules is returned for a rule file that parses but makes no sense.
var ErrInvalidRules = errors.New("factory: invalid rules")

// =============================================================================
// FILE SCHEMA TYPES
// =============================================================================

// RulesJSON is the file representation of the run rules.
type RulesJSON struct {
	Regions []RegionRuleJSON `json:"regions,omitempty" yaml:"regions,omitempty" validate:"dive"`
	Columns []ColumnJSON     `json:"columns,omitempty" yaml:"columns,omitempty" validate:"dive"`
}

// RegionRuleJSON is one classifier rule.
type RegionRuleJSON struct {
	Region  string `json:"region" yaml:"region" validate:"required"`
	Match   string `json:"match,omitempty" yaml:"match,omitempty" validate:"omitempty,oneof=token suffix prefix"`
	Pattern string `json:"pattern" yaml:"pattern" validate:"required"`
}

// ColumnJSON adds header spellings to a canonical column.
type ColumnJSON struct {
	Canonical string   `json:"canonical" yaml:"canonical" validate:"required"`
	Synonyms  []string `json:"synonyms" yaml:"synonyms" validate:"required,min=1,dive,required"`
}

// Rules are the parsed, ready-to-use rules.
type Rules struct {
	Classifier *voucher.Classifier
	Mapping    *schema.Mapping
}

// Defaults returns the built-in rules.
func Defaults() *Rules {
	return &Rules{Classifier: voucher.DefaultClassifier(), Mapping: schema.Default()}
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory converts rule files to Go structs.
type RulesFactory struct {
	validate *validator.Validate
}

func NewRulesFactory() *RulesFactory {
	return &RulesFactory{validate: validator.New()}
}

// LoadFile reads a rule file; the extension picks the format.
func (f *RulesFactory) LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("factory: read rules: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	default:
		return f.ParseJSON(data)
	}
}

// ParseJSON parses a JSON rule document.
func (f *RulesFactory) ParseJSON(data []byte) (*Rules, error) {
	var rj RulesJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// ParseYAML parses a YAML rule document.
func (f *RulesFactory) ParseYAML(data []byte) (*Rules, error) {
	var rj RulesJSON
	if err := yaml.Unmarshal(data, &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON validates the document and builds the classifier and mapping.
func (f *RulesFactory) FromJSON(rj RulesJSON) (*Rules, error) {
	if err := f.validate.Struct(rj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	rules := Defaults()
	if len(rj.Regions) > 0 {
		parsed := make([]voucher.RegionRule, 0, len(rj.Regions))
		for i, r := range rj.Regions {
			rule, err := parseRegionRule(r)
			if err != nil {
				return nil, fmt.Errorf("%w: regions[%d]: %v", ErrInvalidRules, i, err)
			}
			parsed = append(parsed, rule)
		}
		rules.Classifier = voucher.NewClassifier(parsed)
	}

	if len(rj.Columns) > 0 {
		fields, err := mergeColumns(schema.DefaultFields, rj.Columns)
		if err != nil {
			return nil, err
		}
		rules.Mapping = schema.New(fields)
	}
	return rules, nil
}

// ToJSON converts rules back to their file form. Only the region table is
// emitted; the header mapping round-trips through schema.DefaultFields.
func (f *RulesFactory) ToJSON(r *Rules) RulesJSON {
	var rj RulesJSON
	for _, rule := range r.Classifier.Rules() {
		rj.Regions = append(rj.Regions, RegionRuleJSON{
			Region:  string(rule.Region),
			Match:   string(rule.Match),
			Pattern: rule.Pattern,
		})
	}
	return rj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRegionRule(r RegionRuleJSON) (voucher.RegionRule, error) {
	region, ok := voucher.ParseRegion(r.Region)
	if !ok {
		return voucher.RegionRule{}, fmt.Errorf("unknown region %q", r.Region)
	}
	return voucher.RegionRule{
		Region:  region,
		Match:   parseMatchKind(r.Match),
		Pattern: strings.TrimSpace(r.Pattern),
	}, nil
}

func parseMatchKind(s string) voucher.MatchKind {
	switch s {
	case "suffix":
		return voucher.MatchSuffix
	case "prefix":
		return voucher.MatchPrefix
	default:
		return voucher.MatchToken
	}
}

// mergeColumns appends synonyms to the known canonical fields.
func mergeColumns(base []schema.Field, columns []ColumnJSON) ([]schema.Field, error) {
	fields := make([]schema.Field, len(base))
	index := make(map[string]int, len(base))
	for i, fd := range base {
		fields[i] = schema.Field{Canonical: fd.Canonical, Synonyms: append([]string(nil), fd.Synonyms...)}
		index[fd.Canonical] = i
	}
	for _, c := range columns {
		i, ok := index[schema.NormalizeHeader(c.Canonical)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown canonical column %q", ErrInvalidRules, c.Canonical)
		}
		fields[i].Synonyms = append(fields[i].Synonyms, c.Synonyms...)
	}
	return fields, nil
}
