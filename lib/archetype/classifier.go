package archetype

import "strings"

// Unown labels decks matching no rule, and archetypes too rare to analyze.
const Unown = "unown"

// KeySeparator joins the tags of an archetype into its key.
const KeySeparator = ", "

// Archetype is the ordered list of key card slugs naming a deck strategy,
// e.g. ["charizard", "pidgeot"].
type Archetype []string

func (a Archetype) Key() string {
	return strings.Join(a, KeySeparator)
}

func (a Archetype) IsUnown() bool {
	return len(a) == 1 && a[0] == Unown
}

// ParseKey is the inverse of Archetype.Key.
func ParseKey(key string) Archetype {
	return strings.Split(key, KeySeparator)
}

type Rule struct {
	Tags Archetype
	When Predicate
}

// RuleTable is an ordered list of rules, the first rule that matches a deck
// names it.
type RuleTable struct {
	Version string
	Rules   []Rule
}

type Classifier struct {
	table RuleTable
}

func NewClassifier(table RuleTable) Classifier {
	return Classifier{table: table}
}

func (c Classifier) Table() RuleTable {
	return c.table
}

// Classify never fails, decks matching no rule are Unown.
func (c Classifier) Classify(deck Decklist) Archetype {
	for _, rule := range c.table.Rules {
		if rule.When.Match(deck) {
			out := make(Archetype, len(rule.Tags))
			copy(out, rule.Tags)
			return out
		}
	}
	return Archetype{Unown}
}
