package archetype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var sampleDeck = Decklist{
	{Name: "Charizard ex OBF", Quantity: 2},
	{Name: "Charizard ex PAF", Quantity: 1},
	{Name: "Pidgeot ex OBF", Quantity: 2},
	{Name: "Rare Candy", Quantity: 4},
}

func TestPresent(t *testing.T) {
	require.True(t, Present{Card: "Charizard ex"}.Match(sampleDeck))
	require.True(t, Present{Card: "Candy"}.Match(sampleDeck))
	require.False(t, Present{Card: "Dragapult ex"}.Match(sampleDeck))
}

func TestPresentWithQuantity(t *testing.T) {
	require.True(t, PresentWithQuantity{Card: "Charizard ex", Min: 3}.Match(sampleDeck))
	require.False(t, PresentWithQuantity{Card: "Charizard ex", Min: 4}.Match(sampleDeck))
	require.False(t, PresentWithQuantity{Card: "Dragapult ex", Min: 1}.Match(sampleDeck))
}

func TestPresentWithQuantityMonotonic(t *testing.T) {
	for n := 1; n <= 8; n++ {
		if !(PresentWithQuantity{Card: "Charizard ex", Min: n}).Match(sampleDeck) {
			continue
		}
		for smaller := 0; smaller <= n; smaller++ {
			require.True(t, PresentWithQuantity{Card: "Charizard ex", Min: smaller}.Match(sampleDeck), "min %d", smaller)
		}
	}
}

func TestCombinators(t *testing.T) {
	require.True(t, Contains("Charizard ex", "Pidgeot ex").Match(sampleDeck))
	require.False(t, Contains("Charizard ex", "Dusknoir").Match(sampleDeck))

	require.True(t, Any{Present{Card: "Dusknoir"}, Present{Card: "Rare Candy"}}.Match(sampleDeck))
	require.False(t, Any{Present{Card: "Dusknoir"}}.Match(sampleDeck))
	require.False(t, Any{}.Match(sampleDeck))

	require.True(t, Not{Inner: Present{Card: "Dusknoir"}}.Match(sampleDeck))
	require.False(t, Not{Inner: Present{Card: "Pidgeot"}}.Match(sampleDeck))

	require.True(t, All{}.Match(sampleDeck))
}
