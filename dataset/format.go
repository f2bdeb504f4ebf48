package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/isingkm/internal/hash"
	"github.com/hupe1980/isingkm/ising"
)

const (
	magic         = "ISNG"
	formatVersion = 1
	headerSize    = 32

	// DefaultBlockSize is the uncompressed size of each spin block.
	DefaultBlockSize = 256 * 1024
)

var (
	// ErrBadMagic is returned when data is not a dataset file.
	ErrBadMagic = errors.New("dataset: bad magic")
	// ErrUnsupportedVersion is returned for newer or unknown format versions.
	ErrUnsupportedVersion = errors.New("dataset: unsupported format version")
	// ErrCorrupt is returned for truncated or inconsistent files.
	ErrCorrupt = errors.New("dataset: corrupt file")
)

func packedSize(l int) int { return (l*l + 7) / 8 }

func packSpins(dst []byte, spins []int8) {
	clear(dst)
	for i, s := range spins {
		if s > 0 {
			dst[i/8] |= 1 << (i % 8)
		}
	}
}

func unpackSpins(src []byte, n int) []int8 {
	out := make([]int8, n)
	for i := range out {
		if src[i/8]&(1<<(i%8)) != 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out
}

// Marshal encodes the dataset with the given compression and block size.
// A non-positive block size selects DefaultBlockSize.
func Marshal(d *Dataset, c Compression, blockSize int) ([]byte, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if d.L < 2 || uint64(d.L)*uint64(d.L) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ising.ErrInvalidSize, d.L)
	}
	if len(d.Temperatures) != len(d.Configs) {
		return nil, fmt.Errorf("dataset: %d temperatures for %d configurations", len(d.Temperatures), len(d.Configs))
	}

	per := packedSize(d.L)
	payload := make([]byte, per*len(d.Configs))
	for i, cfg := range d.Configs {
		if cfg.L != d.L {
			return nil, fmt.Errorf("dataset: configuration %d has size %d, expected %d", i, cfg.L, d.L)
		}
		packSpins(payload[i*per:(i+1)*per], cfg.Spins)
	}

	blocks, err := compressBlocks(payload, c, blockSize)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, headerSize, headerSize+8*len(d.Temperatures)+len(blocks))
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:], formatVersion)
	buf[6] = byte(c)
	binary.LittleEndian.PutUint32(buf[8:], uint32(d.L))
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(d.Configs)))
	binary.LittleEndian.PutUint32(buf[16:], uint32(blockSize))
	binary.LittleEndian.PutUint64(buf[20:], math.Float64bits(d.Coupling))
	binary.LittleEndian.PutUint32(buf[28:], hash.CRC32C(payload))
	for _, t := range d.Temperatures {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(t))
	}
	return append(buf, blocks...), nil
}

// Header is the fixed-size prefix of a dataset file.
type Header struct {
	Version     uint16
	Compression Compression
	L           int
	Count       int
	BlockSize   int
	Coupling    float64
	Checksum    uint32
}

// ReadHeader decodes and validates the header of an encoded dataset.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	if string(data[0:4]) != magic {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Version:     binary.LittleEndian.Uint16(data[4:]),
		Compression: Compression(data[6]),
		L:           int(binary.LittleEndian.Uint32(data[8:])),
		Count:       int(binary.LittleEndian.Uint32(data[12:])),
		BlockSize:   int(binary.LittleEndian.Uint32(data[16:])),
		Coupling:    math.Float64frombits(binary.LittleEndian.Uint64(data[20:])),
		Checksum:    binary.LittleEndian.Uint32(data[28:]),
	}
	if h.Version != formatVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Compression > CompressionZSTD {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, data[6])
	}
	if h.L < 2 {
		return Header{}, fmt.Errorf("%w: lattice size %d", ErrCorrupt, h.L)
	}
	return h, nil
}

// Unmarshal decodes a dataset produced by Marshal.
func Unmarshal(data []byte) (*Dataset, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	tempsEnd := headerSize + 8*h.Count
	if len(data) < tempsEnd {
		return nil, fmt.Errorf("%w: truncated temperature table", ErrCorrupt)
	}
	temps := make([]float64, h.Count)
	for i := range temps {
		temps[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[headerSize+8*i:]))
	}

	per := packedSize(h.L)
	payload, err := decompressBlocks(data[tempsEnd:], h.Compression, min(per*h.Count, 64*len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(payload) != per*h.Count {
		return nil, fmt.Errorf("%w: payload is %d bytes, expected %d", ErrCorrupt, len(payload), per*h.Count)
	}
	if err := hash.Verify(payload, h.Checksum); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	d := &Dataset{
		L:            h.L,
		Coupling:     h.Coupling,
		Temperatures: temps,
		Configs:      make([]*ising.Lattice, h.Count),
	}
	for i := range d.Configs {
		d.Configs[i] = &ising.Lattice{L: h.L, Spins: unpackSpins(payload[i*per:(i+1)*per], h.L*h.L)}
	}
	return d, nil
}
