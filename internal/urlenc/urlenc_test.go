package urlenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentMatchesBrowserTable(t *testing.T) {
	assert.Equal(t, "a%20b", Component("a b"))
	assert.Equal(t, "caf%C3%A9", Component("café"))
	assert.Equal(t, "x%26y%3Dz%2F", Component("x&y=z/"))
	assert.Equal(t, "-_.!~*'()", Component("-_.!~*'()"))
}

func TestPathSegmentEscapesApostrophe(t *testing.T) {
	assert.Equal(t, "Alice%27s%20Adventures", PathSegment("Alice's Adventures"))
}

func TestDecodeComponentRejectsMalformed(t *testing.T) {
	_, err := DecodeComponent("%zz")
	require.Error(t, err)

	_, err = DecodeComponent("%FF")
	require.ErrorIs(t, err, ErrInvalidUTF8)

	got, err := DecodeComponent("a%20b+c")
	require.NoError(t, err)
	assert.Equal(t, "a b+c", got)
}

func TestFormRoundTripKeepsOrder(t *testing.T) {
	pairs := ParseForm("?z=1+2&a=%C3%A9&&flag&q=a%2Bb")
	require.Equal(t, []Pair{
		{Name: "z", Value: "1 2"},
		{Name: "a", Value: "é"},
		{Name: "flag", Value: ""},
		{Name: "q", Value: "a+b"},
	}, pairs)

	encoded := EncodeForm(pairs)
	assert.Equal(t, "z=1+2&a=%C3%A9&flag=&q=a%2Bb", encoded)
	assert.Equal(t, encoded, EncodeForm(ParseForm(encoded)))
}

func TestParseFormKeepsMalformedEscapes(t *testing.T) {
	pairs := ParseForm("p=100%&q=%4")
	assert.Equal(t, []Pair{{Name: "p", Value: "100%"}, {Name: "q", Value: "%4"}}, pairs)
}
