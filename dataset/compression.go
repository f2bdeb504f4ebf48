package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block codec for spin payloads.
type Compression uint8

const (
	// CompressionNone stores blocks as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd". The empty string means zstd.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zstd":
		return CompressionZSTD, nil
	case "lz4":
		return CompressionLZ4, nil
	case "none", "raw":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("dataset: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Block layout: [uncompressed u32][compressed u32][data].
// A compressed size of 0 marks a raw block.
const blockHeaderSize = 8

var errCorruptBlock = errors.New("dataset: corrupt block")

// appendBlock compresses data and appends the framed block to dst.
// Blocks that do not shrink below 90% are stored raw.
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("dataset: unsupported compression %v", c)
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		dst = append(dst, hdr[:]...)
		return append(dst, data...), nil
	}
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed)))
	dst = append(dst, hdr[:]...)
	return append(dst, compressed...), nil
}

// readBlock decodes the block at the start of data and returns it with the
// number of bytes consumed.
func readBlock(data []byte, c Compression) ([]byte, int, error) {
	if len(data) < blockHeaderSize {
		return nil, 0, fmt.Errorf("%w: truncated header", errCorruptBlock)
	}
	rawSize := binary.LittleEndian.Uint32(data[0:])
	compSize := binary.LittleEndian.Uint32(data[4:])

	if compSize == 0 {
		end := blockHeaderSize + int(rawSize)
		if len(data) < end {
			return nil, 0, fmt.Errorf("%w: raw block extends beyond data", errCorruptBlock)
		}
		return data[blockHeaderSize:end], end, nil
	}

	end := blockHeaderSize + int(compSize)
	if len(data) < end {
		return nil, 0, fmt.Errorf("%w: compressed block extends beyond data", errCorruptBlock)
	}
	payload := data[blockHeaderSize:end]
	out := make([]byte, rawSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, 0, err
		}
		if uint32(n) != rawSize {
			return nil, 0, fmt.Errorf("%w: size mismatch", errCorruptBlock)
		}
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, 0, err
		}
		decoded, err := dec.DecodeAll(payload, out[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, 0, err
		}
		if uint32(len(decoded)) != rawSize {
			return nil, 0, fmt.Errorf("%w: size mismatch", errCorruptBlock)
		}
		out = decoded
	default:
		return nil, 0, fmt.Errorf("%w: compressed block under %v", errCorruptBlock, c)
	}
	return out, end, nil
}

// compressBlocks splits data into blockSize chunks and frames each one.
func compressBlocks(data []byte, c Compression, blockSize int) ([]byte, error) {
	out := make([]byte, 0, len(data)/2+blockHeaderSize)
	for len(data) > 0 {
		n := min(blockSize, len(data))
		var err error
		if out, err = appendBlock(out, data[:n], c); err != nil {
			return nil, err
		}
		data = data[n:]
	}
	return out, nil
}

// decompressBlocks decodes consecutive blocks until data is exhausted.
func decompressBlocks(data []byte, c Compression, sizeHint int) ([]byte, error) {
	out := make([]byte, 0, sizeHint)
	for len(data) > 0 {
		block, n, err := readBlock(data, c)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		data = data[n:]
	}
	return out, nil
}
