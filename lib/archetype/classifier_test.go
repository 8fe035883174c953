package archetype

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestClassifyDefaultTable(t *testing.T) {
	classifier := NewClassifier(DefaultRuleTable())

	testCases := []struct {
		name   string
		deck   Decklist
		expect Archetype
	}{
		{
			name: "charizard pidgeot",
			deck: Decklist{
				{Name: "Charizard ex OBF", Quantity: 2},
				{Name: "Pidgeot ex OBF", Quantity: 1},
				{Name: "Snorlax PGO", Quantity: 3},
			},
			expect: Archetype{"charizard", "pidgeot"},
		},
		{
			name: "earlier rule wins over chien-pao",
			deck: Decklist{
				{Name: "Charizard ex PAF", Quantity: 1},
				{Name: "Charizard ex OBF", Quantity: 1},
				{Name: "Pidgeot ex OBF", Quantity: 2},
				{Name: "Chien-Pao ex PAL", Quantity: 2},
			},
			expect: Archetype{"charizard", "pidgeot"},
		},
		{
			name: "single charizard falls through to snorlax",
			deck: Decklist{
				{Name: "Charizard ex OBF", Quantity: 1},
				{Name: "Pidgeot ex OBF", Quantity: 1},
				{Name: "Snorlax PGO", Quantity: 3},
			},
			expect: Archetype{"snorlax"},
		},
		{
			name: "any of two gardevoir builds",
			deck: Decklist{
				{Name: "Gardevoir ex SVI", Quantity: 2},
				{Name: "Munkidori TWM", Quantity: 1},
			},
			expect: Archetype{"gardevoir"},
		},
		{
			name: "pidgeot rotom excludes dragapult",
			deck: Decklist{
				{Name: "Pidgeot ex OBF", Quantity: 2},
				{Name: "Rotom V LOR", Quantity: 1},
				{Name: "Dragapult ex TWM", Quantity: 2},
			},
			expect: Archetype{"dragapult", "pidgeot"},
		},
		{
			name: "pidgeot rotom",
			deck: Decklist{
				{Name: "Pidgeot ex OBF", Quantity: 2},
				{Name: "Rotom V LOR", Quantity: 1},
			},
			expect: Archetype{"pidgeot", "rotom"},
		},
		{
			name: "iron thorns needs four copies",
			deck: Decklist{
				{Name: "Iron Thorns ex TWM", Quantity: 3},
			},
			expect: Archetype{Unown},
		},
		{
			name:   "empty deck",
			deck:   Decklist{},
			expect: Archetype{Unown},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			result := classifier.Classify(test.deck)
			diff := cmp.Diff(test.expect, result)
			require.Empty(t, diff)
		})
	}
}

func TestClassifyRuleOrder(t *testing.T) {
	deck := Decklist{
		{Name: "Lugia V SIT", Quantity: 2},
		{Name: "Archeops SIT", Quantity: 2},
	}
	lugiaFirst := NewClassifier(RuleTable{Rules: []Rule{
		{Tags: Archetype{"lugia"}, When: Present{Card: "Lugia V"}},
		{Tags: Archetype{"archeops"}, When: Present{Card: "Archeops"}},
	}})
	archeopsFirst := NewClassifier(RuleTable{Rules: []Rule{
		{Tags: Archetype{"archeops"}, When: Present{Card: "Archeops"}},
		{Tags: Archetype{"lugia"}, When: Present{Card: "Lugia V"}},
	}})

	require.Equal(t, Archetype{"lugia"}, lugiaFirst.Classify(deck))
	require.Equal(t, Archetype{"archeops"}, archeopsFirst.Classify(deck))
}

func TestClassifyNeverEmpty(t *testing.T) {
	empty := NewClassifier(RuleTable{})
	result := empty.Classify(Decklist{{Name: "Professor's Research", Quantity: 4}})
	require.Equal(t, Archetype{Unown}, result)
	require.True(t, result.IsUnown())
}

func TestClassifyReturnsCopy(t *testing.T) {
	classifier := NewClassifier(RuleTable{Rules: []Rule{
		{Tags: Archetype{"lugia"}, When: Present{Card: "Lugia V"}},
	}})
	deck := Decklist{{Name: "Lugia V SIT", Quantity: 4}}

	first := classifier.Classify(deck)
	first[0] = "mutated"
	require.Equal(t, Archetype{"lugia"}, classifier.Classify(deck))
}

func TestSubstringAmbiguityIsPreserved(t *testing.T) {
	classifier := NewClassifier(RuleTable{Rules: []Rule{
		{Tags: Archetype{"absol"}, When: Present{Card: "Absol"}},
		{Tags: Archetype{"mega-absol"}, When: Present{Card: "Mega Absol ex"}},
	}})
	result := classifier.Classify(Decklist{{Name: "Mega Absol ex MEG", Quantity: 3}})
	require.Equal(t, Archetype{"absol"}, result)
}

func TestArchetypeKey(t *testing.T) {
	require.Equal(t, "charizard, pidgeot", Archetype{"charizard", "pidgeot"}.Key())
	require.Equal(t, "unown", Archetype{Unown}.Key())
	require.Equal(t, Archetype{"roaring-moon", "flutter-mane"}, ParseKey("roaring-moon, flutter-mane"))
}
