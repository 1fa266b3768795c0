package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// encoder appends MUS-encoded fields to a growing buffer.
type encoder struct {
	buf []byte
}

func (e *encoder) next(n int) []byte {
	l := len(e.buf)
	e.buf = slices.Grow(e.buf, n)[:l+n]
	return e.buf[l:]
}

func (e *encoder) uint64(v uint64) {
	varint.Uint64.Marshal(v, e.next(varint.Uint64.Size(v)))
}

func (e *encoder) int(v int) {
	varint.Int.Marshal(v, e.next(varint.Int.Size(v)))
}

func (e *encoder) int64(v int64) {
	varint.Int64.Marshal(v, e.next(varint.Int64.Size(v)))
}

func (e *encoder) float64(v float64) {
	raw.Float64.Marshal(v, e.next(raw.Float64.Size(v)))
}

func (e *encoder) string(v string) {
	ord.String.Marshal(v, e.next(ord.String.Size(v)))
}

func (e *encoder) strings(v []string) {
	e.int(len(v))
	for _, s := range v {
		e.string(s)
	}
}

// time stores microseconds since the epoch; the zero time is stored as 0.
func (e *encoder) time(t time.Time) {
	if t.IsZero() {
		e.int64(0)
		return
	}
	e.int64(t.UnixMicro())
}

func (e *encoder) vector(v []float32) {
	bs := EncodeVector(v)
	e.int(len(bs))
	copy(e.next(len(bs)), bs)
}

// decoder reads MUS-encoded fields. The first failure sticks; later reads
// return zero values.
type decoder struct {
	bs  []byte
	err error
}

func (d *decoder) advance(n int, err error) bool {
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		return false
	}
	d.bs = d.bs[n:]
	return true
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) float64() float64 {
	if d.err != nil {
		return 0
	}
	v, n, err := raw.Float64.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return 0
	}
	return v
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs)
	if !d.advance(n, err) {
		return ""
	}
	return v
}

func (d *decoder) length() int {
	l := d.int()
	if d.err == nil && (l < 0 || l > len(d.bs)) {
		d.err = fmt.Errorf("%w: length %d", ErrTruncatedData, l)
		return 0
	}
	return l
}

func (d *decoder) strings() []string {
	l := d.length()
	if d.err != nil || l == 0 {
		return nil
	}
	out := make([]string, 0, l)
	for range l {
		out = append(out, d.string())
	}
	return out
}

func (d *decoder) time() time.Time {
	v := d.int64()
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

func (d *decoder) vector() []float32 {
	l := d.length()
	if d.err != nil {
		return nil
	}
	v, err := DecodeVector(d.bs[:l])
	if err != nil {
		d.err = err
		return nil
	}
	d.bs = d.bs[l:]
	return v
}

// EncodeVector renders a vector as fixed-width little-endian float32 values.
func EncodeVector(v []float32) []byte {
	bs := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(bs[4*i:], math.Float32bits(f))
	}
	return bs
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(bs []byte) ([]float32, error) {
	if len(bs)%4 != 0 {
		return nil, fmt.Errorf("%w: vector byte length %d", ErrTruncatedData, len(bs))
	}
	if len(bs) == 0 {
		return nil, nil
	}
	v := make([]float32, len(bs)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(bs[4*i:]))
	}
	return v, nil
}
