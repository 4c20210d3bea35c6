package timecalc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestParseClock(t *testing.T) {
	cases := []struct {
		input string
		want  Clock
	}{
		{"09:00:00", Clock{9, 0, 0}},
		{"9:05", Clock{9, 5, 0}},
		{"17.30.15", Clock{17, 30, 15}},
		{" 23:59:59 ", Clock{23, 59, 59}},
		{"00.00", Clock{0, 0, 0}},
	}
	for _, c := range cases {
		got, err := ParseClock(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got, c.input)
	}

	invalid := []string{"", "9", "24:00:00", "12:60", "12:00:60", "ab:cd", "12:00:00:00", "-1:00"}
	for _, s := range invalid {
		_, err := ParseClock(s)
		assert.ErrorIs(t, err, ErrInvalidClock, s)
	}
}

func TestCanonical(t *testing.T) {
	got, ok := Canonical("8.5")
	assert.True(t, ok)
	assert.Equal(t, "08:05:00", got)

	_, ok = Canonical("nope")
	assert.False(t, ok)

	assert.Nil(t, CanonicalPtr(nil))
	assert.Nil(t, CanonicalPtr(ptr("  ")))
	assert.Equal(t, "18:00:00", *CanonicalPtr(ptr("18.00")))
	assert.Equal(t, "garbage", *CanonicalPtr(ptr("garbage")))
}

func TestCalculateHours(t *testing.T) {
	cases := []struct {
		name     string
		checkIn  *string
		checkOut *string
		want     string
	}{
		{"regular shift", ptr("09:00:00"), ptr("17:00:00"), "8.00"},
		{"overnight wraparound", ptr("22:00:00"), ptr("02:00:00"), "4.00"},
		{"seconds are fractional", ptr("08:55:00"), ptr("18:00:00"), "9.08"},
		{"dotted separator", ptr("09.00"), ptr("12.30"), "3.50"},
		{"mixed separators", ptr("09:00"), ptr("12.30.00"), "3.50"},
		{"same instant", ptr("10:00:00"), ptr("10:00:00"), "0.00"},
		{"missing check-in", nil, ptr("09:00:00"), Sentinel},
		{"missing check-out", ptr("09:00:00"), nil, Sentinel},
		{"malformed check-in", ptr("9am"), ptr("17:00:00"), Sentinel},
		{"malformed check-out", ptr("09:00:00"), ptr("25:00:00"), Sentinel},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CalculateHours(c.checkIn, c.checkOut).String())
		})
	}
}

func TestFromMinutesRejectsMoreThanADay(t *testing.T) {
	h := fromMinutes(24.01 * 60)
	assert.False(t, h.Known())
	assert.Equal(t, Sentinel, h.String())

	h = fromMinutes(24 * 60)
	assert.True(t, h.Known())
	assert.Equal(t, 24.0, h.Value())
}

func TestHoursJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Hours Hours `json:"hours"`
	}{CalculateHours(ptr("22:00:00"), ptr("02:00:00"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"hours":"4.00"}`, string(b))

	b, err = json.Marshal(Unknown)
	require.NoError(t, err)
	assert.Equal(t, `"--"`, string(b))
	assert.Equal(t, 0.0, Unknown.Value())
}
