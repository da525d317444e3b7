package tools

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingHash(t *testing.T) {
	assert.Equal(t, int32(0), RollingHash(""))
	assert.Equal(t, int32(97), RollingHash("a"))
	assert.Equal(t, int32(3105), RollingHash("ab"))
	// same value as the well known 31-polynomial string hash
	assert.Equal(t, int32(1794106052), RollingHash("hello world"))
	// wraps into the negative range
	assert.Equal(t, int32(-2028756843), RollingHash("sonde_A"))
	// astral runes hash as their UTF-16 surrogate pair
	assert.Equal(t, int32(1773260), RollingHash("\U0001F388"))
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "flight_61", IdentityKey("a"))
	assert.Equal(t, "flight_19b32795", IdentityKey("RS41-N1234567.log"))
	assert.Equal(t, IdentityKey("flight1.log"), IdentityKey("flight1.log"))

	seen := map[string]string{}
	for i := 0; i < 500; i++ {
		name := fmt.Sprintf("sonde_%03d.log", i)
		key := IdentityKey(name)
		assert.True(t, strings.HasPrefix(key, IdentityPrefix))
		assert.NotContains(t, key, "-")
		prev, dup := seen[key]
		assert.False(t, dup, "%s collides with %s", name, prev)
		seen[key] = name
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, HSL{Hue: 97, Saturation: 77, Lightness: 67}, Color("a"))
	assert.Equal(t, HSL{Hue: 243, Saturation: 73, Lightness: 53}, Color("sonde_A"))
	assert.Equal(t, "hsl(145, 95%, 55%)", Color("S1234567").String())

	for _, name := range []string{"", "x", "RS41-N1234567", "sonde_B", "hello world"} {
		c := Color(name)
		assert.Equal(t, c, Color(name))
		assert.GreaterOrEqual(t, c.Hue, 0)
		assert.Less(t, c.Hue, 360)
		assert.GreaterOrEqual(t, c.Saturation, 70)
		assert.Less(t, c.Saturation, 100)
		assert.GreaterOrEqual(t, c.Lightness, 50)
		assert.Less(t, c.Lightness, 70)
	}
}

func TestColorMarshalText(t *testing.T) {
	b, err := Color("a").MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "hsl(97, 77%, 67%)", string(b))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, uint32(3105), Fingerprint("ab"))
	assert.Equal(t, uint32(2266210453), Fingerprint("sonde_A"))
	assert.NotEqual(t, Fingerprint("line\n"), Fingerprint("line\nline\n"))
}
