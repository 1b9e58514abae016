package keyspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrEmpty, pe.Kind)
}

func TestParseBadKey(t *testing.T) {
	_, err := Parse("C-!")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrBadKey, pe.Kind)
}

func TestParseBadModifier(t *testing.T) {
	_, err := Parse("Z-a")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrBadModifier, pe.Kind)
}

func TestParseSimpleKey(t *testing.T) {
	c, err := Parse("a")
	require.NoError(t, err)
	assert.Equal(t, Chord{Key: "a", Mods: 0}, c)
}

func TestParseFullModifierSet(t *testing.T) {
	c, err := Parse("C-S-A-W-a")
	require.NoError(t, err)
	assert.Equal(t, Ctrl|Shift|Alt|Super, c.Mods)
	assert.Equal(t, "a", c.Key)
}

func TestParseSpecialTokens(t *testing.T) {
	for _, tok := range []string{"<ESC>", "<DASH>"} {
		c, err := Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, tok, c.Key)
	}
}

func TestFormatOrdersModifiersCSAW(t *testing.T) {
	s := Format(Chord{Key: "a", Mods: Super | Alt | Shift | Ctrl})
	assert.Equal(t, "C-S-A-W-a", s)
}

// keyspec round-trip (spec §8): for every chord the parser accepts,
// format -> parse is the identity.
func TestRoundTrip(t *testing.T) {
	alphabet := "abc012`={}\\"
	rapid.Check(t, func(rt *rapid.T) {
		keyIdx := rapid.IntRange(0, len(alphabet)-1).Draw(rt, "keyIdx")
		key := string(alphabet[keyIdx])
		mods := Modifiers(rapid.IntRange(0, 15).Draw(rt, "mods"))
		c := Chord{Key: key, Mods: mods}

		parsed, err := Parse(Format(c))
		require.NoError(rt, err)
		assert.Equal(rt, c, parsed)
	})
}

func TestRoundTripSpecialTokens(t *testing.T) {
	for _, tok := range []string{"<ESC>", "<DASH>"} {
		for mods := Modifiers(0); mods <= 15; mods++ {
			c := Chord{Key: tok, Mods: mods}
			parsed, err := Parse(Format(c))
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	}
}
