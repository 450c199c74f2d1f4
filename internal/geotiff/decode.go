package geotiff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/image/tiff/lzw"
)

// decompress inflates one strip or tile.
func decompress(compression uint16, src []byte, want int) ([]byte, error) {
	var r io.Reader
	switch compression {
	case compressionNone:
		return src, nil
	case compressionLZW:
		r = lzw.NewReader(bytes.NewReader(src), lzw.MSB, 8)
	case compressionDeflate, compressionDeflateOld:
		zr, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer zr.Close()
		r = zr
	case compressionPackBits:
		return unpackBits(src, want)
	default:
		return nil, fmt.Errorf("compression %d: %w", compression, ErrUnsupported)
	}

	out := make([]byte, 0, want)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, io.LimitReader(r, int64(want))); err != nil {
		return nil, fmt.Errorf("decompress (scheme %d): %w", compression, err)
	}
	return buf.Bytes(), nil
}

// unpackBits expands Macintosh PackBits run-length data.
func unpackBits(src []byte, want int) ([]byte, error) {
	out := make([]byte, 0, want)
	for i := 0; i < len(src) && len(out) < want; {
		n := int(int8(src[i]))
		i++
		switch {
		case n >= 0:
			if i+n+1 > len(src) {
				return nil, fmt.Errorf("packbits literal run: %w", ErrCorrupt)
			}
			out = append(out, src[i:i+n+1]...)
			i += n + 1
		case n != -128:
			if i >= len(src) {
				return nil, fmt.Errorf("packbits repeat run: %w", ErrCorrupt)
			}
			for k := 0; k < 1-n; k++ {
				out = append(out, src[i])
			}
			i++
		}
	}
	return out, nil
}

// undoHorizontalPredictor reverses TIFF predictor 2 in place. Each row holds
// w pixels of spp samples of the given byte width.
func undoHorizontalPredictor(buf []byte, bo binary.ByteOrder, w, h, spp, bytesPerSample int) error {
	rowLen := w * spp * bytesPerSample
	if len(buf) < rowLen*h {
		h = len(buf) / rowLen
	}
	for y := 0; y < h; y++ {
		row := buf[y*rowLen : (y+1)*rowLen]
		switch bytesPerSample {
		case 1:
			for i := spp; i < len(row); i++ {
				row[i] += row[i-spp]
			}
		case 2:
			for i := spp * 2; i < len(row); i += 2 {
				v := bo.Uint16(row[i:]) + bo.Uint16(row[i-spp*2:])
				bo.PutUint16(row[i:], v)
			}
		case 4:
			for i := spp * 4; i < len(row); i += 4 {
				v := bo.Uint32(row[i:]) + bo.Uint32(row[i-spp*4:])
				bo.PutUint32(row[i:], v)
			}
		case 8:
			for i := spp * 8; i < len(row); i += 8 {
				v := bo.Uint64(row[i:]) + bo.Uint64(row[i-spp*8:])
				bo.PutUint64(row[i:], v)
			}
		default:
			return fmt.Errorf("predictor on %d-byte samples: %w", bytesPerSample, ErrUnsupported)
		}
	}
	return nil
}

// undoFloatPredictor reverses TIFF predictor 3: bytes are differenced across
// the row and stored as byte planes, most significant plane first.
func undoFloatPredictor(buf []byte, bo binary.ByteOrder, w, h, spp, bytesPerSample int) {
	rowLen := w * spp * bytesPerSample
	if len(buf) < rowLen*h {
		h = len(buf) / rowLen
	}
	tmp := make([]byte, rowLen)
	n := w * spp
	for y := 0; y < h; y++ {
		row := buf[y*rowLen : (y+1)*rowLen]
		for i := spp; i < rowLen; i++ {
			row[i] += row[i-spp]
		}
		copy(tmp, row)
		for i := 0; i < n; i++ {
			for b := 0; b < bytesPerSample; b++ {
				// Plane 0 carries the most significant byte.
				v := tmp[b*n+i]
				if bo == binary.LittleEndian {
					row[i*bytesPerSample+bytesPerSample-1-b] = v
				} else {
					row[i*bytesPerSample+b] = v
				}
			}
		}
	}
}

// sampleReader converts raw sample bytes to float64.
type sampleReader func(b []byte) float64

func newSampleReader(bo binary.ByteOrder, format uint16, bits int) (sampleReader, error) {
	switch {
	case format == sampleUint && bits == 8:
		return func(b []byte) float64 { return float64(b[0]) }, nil
	case format == sampleInt && bits == 8:
		return func(b []byte) float64 { return float64(int8(b[0])) }, nil
	case format == sampleUint && bits == 16:
		return func(b []byte) float64 { return float64(bo.Uint16(b)) }, nil
	case format == sampleInt && bits == 16:
		return func(b []byte) float64 { return float64(int16(bo.Uint16(b))) }, nil
	case format == sampleUint && bits == 32:
		return func(b []byte) float64 { return float64(bo.Uint32(b)) }, nil
	case format == sampleInt && bits == 32:
		return func(b []byte) float64 { return float64(int32(bo.Uint32(b))) }, nil
	case format == sampleFloat && bits == 32:
		return func(b []byte) float64 { return float64(math.Float32frombits(bo.Uint32(b))) }, nil
	case format == sampleFloat && bits == 64:
		return func(b []byte) float64 { return math.Float64frombits(bo.Uint64(b)) }, nil
	}
	return nil, fmt.Errorf("sample format %d with %d bits: %w", format, bits, ErrUnsupported)
}
