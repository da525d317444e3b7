package tools

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

// IdentityPrefix is prepended to every flight identity key.
const IdentityPrefix = "flight_"

// RollingHash folds s into a signed 32-bit polynomial hash (h = h*31 + c)
// over the UTF-16 code units of s. The value is reproducible across runs;
// collisions are expected and tolerated by every caller.
func RollingHash(s string) int32 {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			h = h*31 + int32(r1)
			h = h*31 + int32(r2)
			continue
		}
		h = h*31 + int32(r)
	}
	return h
}

// IdentityKey derives the stable flight key of a source file name.
func IdentityKey(filename string) string {
	return IdentityPrefix + strconv.FormatUint(uint64(abs32(RollingHash(filename))), 16)
}

// Fingerprint is the content hash used to detect a changed log file.
func Fingerprint(content string) uint32 {
	return uint32(RollingHash(content))
}

// HSL is a display color: hue in degrees, saturation and lightness in percent.
type HSL struct {
	Hue        int `json:"hue"`
	Saturation int `json:"saturation"`
	Lightness  int `json:"lightness"`
}

// Color maps a display name to its HSL color. Saturation stays in [70,100)
// and lightness in [50,70).
func Color(name string) HSL {
	h := RollingHash(name)
	return HSL{
		Hue:        int(abs32(h % 360)),
		Saturation: 70 + int(abs32(h%30)),
		Lightness:  50 + int(abs32(h%20)),
	}
}

func (c HSL) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", c.Hue, c.Saturation, c.Lightness)
}

// MarshalText renders the color as a CSS hsl() value.
func (c HSL) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// abs32 folds the sign away; math.MinInt32 maps to 1<<31.
func abs32(v int32) uint32 {
	if v < 0 {
		return uint32(-int64(v))
	}
	return uint32(v)
}
