package interval

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairing(t *testing.T) {
	{ // Known values of the Cantor pairing in base 10
		for _, c := range []struct {
			x, y uint32
			z    string
		}{
			{0, 0, "0"},
			{0, 1, "2"},
			{1, 1, "4"},
			{0, 2, "5"},
			{2, 3, "18"},
			{47, 32, "3192"},
		} {
			hash, err := Encode(c.x, c.y, 10)
			require.NoError(t, err)
			assert.Equal(t, c.z, hash)
		}
	}
	{ // Radix only changes the text
		hash, err := Encode(47, 32, 16)
		require.NoError(t, err)
		assert.Equal(t, "c78", hash)
		hash, err = Encode(47, 32, 2)
		require.NoError(t, err)
		assert.Equal(t, "110001111000", hash)
	}
	{ // Round trip for x <= y over every radix, including the extremes of uint32
		rng := rand.New(rand.NewPCG(11, 13))
		pairs := [][2]uint32{
			{0, 0}, {0, math.MaxUint32}, {math.MaxUint32, math.MaxUint32},
			{math.MaxUint32 - 1, math.MaxUint32}, {1 << 31, 1<<31 + 1},
		}
		for n := 0; n < 200; n++ {
			a, b := rng.Uint32(), rng.Uint32()
			if a > b {
				a, b = b, a
			}
			pairs = append(pairs, [2]uint32{a, b})
		}
		for radix := MinRadix; radix <= MaxRadix; radix++ {
			for _, p := range pairs {
				hash, err := Encode(p[0], p[1], radix)
				require.NoError(t, err)
				x, y, err := Decode(hash, radix)
				require.NoError(t, err)
				assert.Equal(t, p[0], x, "radix %d hash %s", radix, hash)
				assert.Equal(t, p[1], y, "radix %d hash %s", radix, hash)
			}
		}
	}
}

func TestMalformed(t *testing.T) {
	for _, c := range []struct {
		hash  string
		radix int
	}{
		{"", 10},
		{"12a", 10},
		{"-12", 10},
		{"+12", 10},
		{"1_2", 10},
		{"z", 35},
		{"10", 1},
		{"10", 37},
		{"zzzzzzzzzzzzzzzzzzzz", 36}, // decodes past uint32
	} {
		_, _, err := Decode(c.hash, c.radix)
		assert.True(t, errors.Is(err, ErrMalformedInterval), "%q radix %d", c.hash, c.radix)
	}
	_, err := Encode(1, 2, 0)
	assert.True(t, errors.Is(err, ErrMalformedInterval))
	_, err = New(5, 4, 10)
	assert.True(t, errors.Is(err, ErrMalformedInterval))
	// "3" decodes to x=2, y=0, which is not an interval
	_, err = FromHash("3", 10)
	assert.True(t, errors.Is(err, ErrMalformedInterval))
}

func TestIndexInterval(t *testing.T) {
	iv, err := New(0, 256, DefaultRadix)
	require.NoError(t, err)
	assert.Equal(t, 256, iv.Len())
	assert.True(t, iv.Contains(0))
	assert.True(t, iv.Contains(255))
	assert.False(t, iv.Contains(256))

	back, err := FromHash(iv.Hash, DefaultRadix)
	require.NoError(t, err)
	assert.Equal(t, iv, back)

	{ // Upper case digits decode to the canonical lower case hash
		up, err := FromHash("C87", 16)
		require.NoError(t, err)
		assert.Equal(t, "c87", up.Hash)
		assert.Equal(t, uint32(32), up.Start)
		assert.Equal(t, uint32(47), up.End)
	}
	{ // Next walks equal length chunks
		next, err := iv.Next()
		require.NoError(t, err)
		assert.Equal(t, uint32(256), next.Start)
		assert.Equal(t, uint32(512), next.End)
		assert.Equal(t, iv.Radix, next.Radix)
		assert.NotEqual(t, iv.Hash, next.Hash)

		last, err := New(math.MaxUint32-10, math.MaxUint32, 10)
		require.NoError(t, err)
		_, err = last.Next()
		assert.True(t, errors.Is(err, ErrMalformedInterval))
	}
	{ // Distinct intervals get distinct names
		seen := map[string]bool{}
		cur, err := New(0, 64, DefaultRadix)
		require.NoError(t, err)
		for n := 0; n < 100; n++ {
			assert.False(t, seen[cur.Hash])
			seen[cur.Hash] = true
			cur, err = cur.Next()
			require.NoError(t, err)
		}
	}
}
