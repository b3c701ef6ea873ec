package model

import (
	"math/big"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind(" localized_string ")
	require.NoError(t, err)
	assert.Equal(t, KindLocalizedString, got)

	_, err = ParseKind("blob")
	assert.Error(t, err)
}

func TestValueEquality(t *testing.T) {
	big1, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	big2, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"string", StringValue{"a"}, StringValue{"a"}, true},
		{"string vs constant", StringValue{"a"}, ConstantValue{"a"}, false},
		{"locale matters", LocaleStringValue{"Paris", "fr"}, LocaleStringValue{"Paris", "en"}, false},
		{"locale same", LocaleStringValue{"Paris", "fr"}, LocaleStringValue{"Paris", "fr"}, true},
		{"locale case ignored", LocaleStringValue{"Paris", "FR"}, LocaleStringValue{"Paris", "fr"}, true},
		{"big integers", IntegerValue{big1}, IntegerValue{big2}, true},
		{"integers differ", NewInteger(1), NewInteger(2), false},
		{"resource", ResourceValue{"http://x/1"}, ResourceValue{"http://x/1"}, true},
		{"points", NewPoint(48.85, 2.35), NewPoint(48.85, 2.35), true},
		{"points differ", NewPoint(48.85, 2.35), NewPoint(48.85, 2.36), false},
		{"calendar precision matters",
			NewCalendar(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), PrecisionYear),
			NewCalendar(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), PrecisionMonth), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, ValueKey(tt.a) == ValueKey(tt.b))
		})
	}
}

func TestParseInteger(t *testing.T) {
	v, err := ParseInteger("-98765432109876543210")
	require.NoError(t, err)
	assert.Equal(t, "-98765432109876543210", v.Lexical())

	_, err = ParseInteger("12.5")
	assert.Error(t, err)
}

func TestCalendarLexicalRoundTrip(t *testing.T) {
	base := time.Date(2012, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		precision Precision
		lexical   string
	}{
		{PrecisionYear, "2012"},
		{PrecisionMonth, "2012-03"},
		{PrecisionDay, "2012-03-04"},
		{PrecisionHour, "2012-03-04T05Z"},
		{PrecisionMinute, "2012-03-04T05:06Z"},
		{PrecisionSecond, "2012-03-04T05:06:07Z"},
	}
	for _, tt := range tests {
		t.Run(tt.precision.String(), func(t *testing.T) {
			v := NewCalendar(base, tt.precision)
			assert.Equal(t, tt.lexical, v.Lexical())

			parsed, err := ParseCalendar(tt.lexical)
			require.NoError(t, err)
			assert.True(t, v.Equal(parsed), "parsed %v, want %v", parsed, v)
			assert.Equal(t, tt.precision, parsed.Precision)
		})
	}
}

func TestCalendarNegativeYear(t *testing.T) {
	v, err := ParseCalendar("-0044-03-15")
	require.NoError(t, err)
	assert.Equal(t, -44, v.Time.Year())
	assert.Equal(t, "-0044-03-15", v.Lexical())
}

func TestParseCalendarRejects(t *testing.T) {
	for _, s := range []string{"", "12", "2012-13", "2012-02-30", "2012-03-04T25Z", "2012-03-04T05", "yesterday"} {
		_, err := ParseCalendar(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestGeoRoundTrip(t *testing.T) {
	outer := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	hole := orb.Ring{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}}
	second := orb.Ring{{20, 20}, {30, 20}, {30, 30}, {20, 20}}

	values := []GeoValue{
		NewPoint(48.8566, 2.3522),
		NewShape(orb.Polygon{outer, hole}),
		NewShape(orb.Polygon{outer, hole}, orb.Polygon{second}),
	}
	for _, v := range values {
		parsed, err := ParseGeo(v.Lexical())
		require.NoError(t, err, v.Lexical())
		assert.True(t, v.Equal(parsed), "round trip of %s", v.Lexical())
	}
	assert.True(t, values[0].IsPoint())
	assert.False(t, values[1].IsPoint())
}

func TestParseGeoRejectsLines(t *testing.T) {
	_, err := ParseGeo("LINESTRING(0 0,1 1)")
	assert.Error(t, err)

	_, err = ParseGeo("POINT(nope)")
	assert.Error(t, err)
}
