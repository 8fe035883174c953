package archetype

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/titanous/json5"
)

type quantitySpec struct {
	Card string `json:"card"`
	Min  int    `json:"min"`
}

// exactly one field is set on a valid predicate
type predicateSpec struct {
	Present  string          `json:"present"`
	Contains []string        `json:"contains"`
	Quantity *quantitySpec   `json:"quantity"`
	All      []predicateSpec `json:"all"`
	Any      []predicateSpec `json:"any"`
	Not      *predicateSpec  `json:"not"`
}

type ruleSpec struct {
	Tags []string      `json:"tags"`
	When predicateSpec `json:"when"`
}

type tableSpec struct {
	Version string     `json:"version"`
	Rules   []ruleSpec `json:"rules"`
}

func (s predicateSpec) build() (Predicate, error) {
	set := 0
	var out Predicate

	if s.Present != "" {
		set++
		out = Present{Card: s.Present}
	}
	if s.Contains != nil {
		set++
		if len(s.Contains) == 0 {
			return nil, fmt.Errorf("contains needs at least one card")
		}
		for _, card := range s.Contains {
			if card == "" {
				return nil, fmt.Errorf("contains has an empty card name")
			}
		}
		out = Contains(s.Contains...)
	}
	if s.Quantity != nil {
		set++
		if s.Quantity.Card == "" {
			return nil, fmt.Errorf("quantity needs a card")
		}
		if s.Quantity.Min < 1 {
			return nil, fmt.Errorf("quantity of %q needs a min of at least 1", s.Quantity.Card)
		}
		out = PresentWithQuantity{Card: s.Quantity.Card, Min: s.Quantity.Min}
	}
	if s.All != nil {
		set++
		children, err := buildAll(s.All)
		if err != nil {
			return nil, fmt.Errorf("all: %w", err)
		}
		out = All(children)
	}
	if s.Any != nil {
		set++
		children, err := buildAll(s.Any)
		if err != nil {
			return nil, fmt.Errorf("any: %w", err)
		}
		out = Any(children)
	}
	if s.Not != nil {
		set++
		inner, err := s.Not.build()
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		out = Not{Inner: inner}
	}

	if set != 1 {
		return nil, fmt.Errorf("a predicate needs exactly one of present, contains, quantity, all, any, not (found %d)", set)
	}
	return out, nil
}

func buildAll(specs []predicateSpec) ([]Predicate, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("needs at least one predicate")
	}
	out := make([]Predicate, len(specs))
	for i, s := range specs {
		p, err := s.build()
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// ParseRuleTable reads a json5 rule table:
//
//	{
//	  version: "2024-08",
//	  rules: [
//	    { tags: ["charizard", "pidgeot"], when: { all: [
//	      { contains: ["Charizard ex", "Pidgeot ex"] },
//	      { quantity: { card: "Charizard ex", min: 2 } },
//	    ] } },
//	  ],
//	}
func ParseRuleTable(contents []byte) (RuleTable, error) {
	var spec tableSpec
	err := json5.Unmarshal(contents, &spec)
	if err != nil {
		return RuleTable{}, err
	}

	table := RuleTable{Version: spec.Version}
	for i, r := range spec.Rules {
		if len(r.Tags) == 0 {
			return RuleTable{}, fmt.Errorf("rule %d: no tags", i)
		}
		for _, tag := range r.Tags {
			if tag == "" {
				return RuleTable{}, fmt.Errorf("rule %d: empty tag", i)
			}
		}
		when, err := r.When.build()
		if err != nil {
			return RuleTable{}, fmt.Errorf("rule %d (%s): %w", i, Archetype(r.Tags).Key(), err)
		}
		table.Rules = append(table.Rules, Rule{Tags: Archetype(r.Tags), When: when})
	}
	return table, nil
}

func LoadRuleTable(path string) (RuleTable, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return RuleTable{}, err
	}
	table, err := ParseRuleTable(contents)
	if err != nil {
		return RuleTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

//go:embed rules.json5
var defaultRules []byte

// DefaultRuleTable is the table for the 2024 standard format.
func DefaultRuleTable() RuleTable {
	table, err := ParseRuleTable(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rule table: %s", err.Error()))
	}
	return table
}
