/*
Package interval names contiguous runs of vertex indices with short strings.

An IndexInterval [Start, End) is folded into one integer with the Cantor pairing
function and written in base Radix. The text is reversible, so a chunk file named by
the hash tells a reader which indices it holds without opening it.
*/
package interval

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

const (
	MinRadix     = 2
	MaxRadix     = 36
	DefaultRadix = 36
)

var ErrMalformedInterval = errors.New("malformed interval")

type IndexInterval struct {
	Start, End uint32 // Half open, [Start, End)
	Radix      int
	Hash       string
}

func New(start, end uint32, radix int) (iv IndexInterval, err error) {
	if start > end {
		err = fmt.Errorf("start %d is past end %d: %w", start, end, ErrMalformedInterval)
		return
	}
	var hash string
	if hash, err = Encode(start, end, radix); err != nil {
		return
	}
	iv = IndexInterval{
		Start: start,
		End:   end,
		Radix: radix,
		Hash:  hash,
	}
	return
}

// FromHash recovers the interval named by hash
func FromHash(hash string, radix int) (iv IndexInterval, err error) {
	var start, end uint32
	if start, end, err = Decode(hash, radix); err != nil {
		return
	}
	// Re-encoding also normalizes upper case digits and leading zeros
	return New(start, end, radix)
}

// Next returns the interval of equal length immediately following this one
func (iv IndexInterval) Next() (next IndexInterval, err error) {
	length := uint64(iv.Len())
	if uint64(iv.End)+length > math.MaxUint32 {
		err = fmt.Errorf("interval after %s overflows: %w", iv, ErrMalformedInterval)
		return
	}
	return New(iv.End, iv.End+uint32(length), iv.Radix)
}

func (iv IndexInterval) Len() int {
	return int(iv.End - iv.Start)
}

func (iv IndexInterval) Contains(index uint32) bool {
	return index >= iv.Start && index < iv.End
}

func (iv IndexInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%s", iv.Start, iv.End, iv.Hash)
}

func checkRadix(radix int) error {
	if radix < MinRadix || radix > MaxRadix {
		return fmt.Errorf("radix %d outside [%d,%d]: %w", radix, MinRadix, MaxRadix, ErrMalformedInterval)
	}
	return nil
}

/*
Encode pairs x and y into z = (x+y)(x+y+1)/2 + y and writes z in base radix.
The arithmetic is done in big integers, z needs up to 65 bits for two uint32 inputs.
*/
func Encode(x, y uint32, radix int) (hash string, err error) {
	if err = checkRadix(radix); err != nil {
		return
	}
	var (
		s = new(big.Int).SetUint64(uint64(x) + uint64(y))
		z = new(big.Int)
	)
	z.Add(s, big.NewInt(1))
	z.Mul(z, s)
	z.Rsh(z, 1)
	z.Add(z, new(big.Int).SetUint64(uint64(y)))
	hash = z.Text(radix)
	return
}

/*
Decode inverts Encode:

	w = floor((sqrt(8z+1) - 1) / 2)
	y = z - w(w+1)/2
	x = w - y

The square root is an exact integer square root, so there is no floating point drift for large z.
*/
func Decode(hash string, radix int) (x, y uint32, err error) {
	if err = checkRadix(radix); err != nil {
		return
	}
	if len(hash) == 0 || strings.ContainsAny(hash, "+-_") {
		err = fmt.Errorf("hash %q: %w", hash, ErrMalformedInterval)
		return
	}
	z, ok := new(big.Int).SetString(hash, radix)
	if !ok {
		err = fmt.Errorf("hash %q is not a base %d number: %w", hash, radix, ErrMalformedInterval)
		return
	}
	var (
		w  = new(big.Int)
		t  = new(big.Int)
		yy = new(big.Int)
		xx = new(big.Int)
	)
	w.Lsh(z, 3)
	w.Add(w, big.NewInt(1))
	w.Sqrt(w)
	w.Sub(w, big.NewInt(1))
	w.Rsh(w, 1)

	t.Add(w, big.NewInt(1))
	t.Mul(t, w)
	t.Rsh(t, 1)
	yy.Sub(z, t)
	xx.Sub(w, yy)

	if !xx.IsUint64() || !yy.IsUint64() || xx.Uint64() > math.MaxUint32 || yy.Uint64() > math.MaxUint32 {
		err = fmt.Errorf("hash %q decodes outside uint32: %w", hash, ErrMalformedInterval)
		return
	}
	x, y = uint32(xx.Uint64()), uint32(yy.Uint64())
	return
}
