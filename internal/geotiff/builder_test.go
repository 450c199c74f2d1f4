package geotiff

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"encoding/binary"
	"math"
	"sort"
	"testing"
)

// testTIFF describes a synthetic single-band TIFF for reader tests.
type testTIFF struct {
	width, height int
	bits          int
	format        uint16
	samples       []float64 // row-major

	tile         int // tile edge; 0 writes strips
	rowsPerStrip int
	compression  uint16
	predictor    uint16
	bigEndian    bool

	tiepoint  []float64
	scale     []float64
	transform []float64
	geoKeys   []uint16
	noData    string
}

type testEntry struct {
	tag, typ uint16
	count    uint32
	data     []byte
}

func (tt testTIFF) order() binary.ByteOrder {
	if tt.bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// encode lays out header, chunk data, out-of-line values and a single IFD.
func (tt testTIFF) encode(t *testing.T) []byte {
	t.Helper()
	bo := tt.order()
	if tt.bits == 0 {
		tt.bits = 8
	}
	if tt.format == 0 {
		tt.format = sampleUint
	}
	if tt.compression == 0 {
		tt.compression = compressionNone
	}

	cw, ch := tt.width, tt.rowsPerStrip
	if ch == 0 {
		ch = tt.height
	}
	if tt.tile > 0 {
		cw, ch = tt.tile, tt.tile
	}
	across := (tt.width + cw - 1) / cw
	down := (tt.height + ch - 1) / ch

	var buf bytes.Buffer
	buf.Write(make([]byte, 8))
	var offsets, counts []uint32
	for cy := 0; cy < down; cy++ {
		for cx := 0; cx < across; cx++ {
			rows := ch
			if tt.tile == 0 && (cy+1)*ch > tt.height {
				rows = tt.height - cy*ch
			}
			raw := tt.chunkBytes(bo, cx*cw, cy*ch, cw, rows)
			enc := tt.compress(t, raw)
			offsets = append(offsets, uint32(buf.Len()))
			counts = append(counts, uint32(len(enc)))
			buf.Write(enc)
		}
	}

	entries := []testEntry{
		{tagImageWidth, dtLong, 1, u32s(bo, uint32(tt.width))},
		{tagImageLength, dtLong, 1, u32s(bo, uint32(tt.height))},
		{tagBitsPerSample, dtShort, 1, u16s(bo, uint16(tt.bits))},
		{tagCompression, dtShort, 1, u16s(bo, tt.compression)},
		{tagPhotometric, dtShort, 1, u16s(bo, 1)},
		{tagSamplesPerPixel, dtShort, 1, u16s(bo, 1)},
		{tagSampleFormat, dtShort, 1, u16s(bo, tt.format)},
	}
	if tt.predictor != 0 {
		entries = append(entries, testEntry{tagPredictor, dtShort, 1, u16s(bo, tt.predictor)})
	}
	n := uint32(len(offsets))
	if tt.tile > 0 {
		entries = append(entries,
			testEntry{tagTileWidth, dtShort, 1, u16s(bo, uint16(tt.tile))},
			testEntry{tagTileLength, dtShort, 1, u16s(bo, uint16(tt.tile))},
			testEntry{tagTileOffsets, dtLong, n, u32s(bo, offsets...)},
			testEntry{tagTileByteCounts, dtLong, n, u32s(bo, counts...)},
		)
	} else {
		entries = append(entries,
			testEntry{tagRowsPerStrip, dtLong, 1, u32s(bo, uint32(ch))},
			testEntry{tagStripOffsets, dtLong, n, u32s(bo, offsets...)},
			testEntry{tagStripByteCounts, dtLong, n, u32s(bo, counts...)},
		)
	}
	if len(tt.scale) > 0 {
		entries = append(entries, testEntry{tagModelPixelScale, dtDouble, uint32(len(tt.scale)), f64s(bo, tt.scale...)})
	}
	if len(tt.tiepoint) > 0 {
		entries = append(entries, testEntry{tagModelTiepoint, dtDouble, uint32(len(tt.tiepoint)), f64s(bo, tt.tiepoint...)})
	}
	if len(tt.transform) > 0 {
		entries = append(entries, testEntry{tagModelTransformation, dtDouble, uint32(len(tt.transform)), f64s(bo, tt.transform...)})
	}
	if len(tt.geoKeys) > 0 {
		entries = append(entries, testEntry{tagGeoKeyDirectory, dtShort, uint32(len(tt.geoKeys)), u16s(bo, tt.geoKeys...)})
	}
	if tt.noData != "" {
		s := append([]byte(tt.noData), 0)
		entries = append(entries, testEntry{tagGDALNoData, dtASCII, uint32(len(s)), s})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	// Out-of-line values.
	valueAt := make([]uint32, len(entries))
	for i, e := range entries {
		if len(e.data) > 4 {
			if buf.Len()%2 == 1 {
				buf.WriteByte(0)
			}
			valueAt[i] = uint32(buf.Len())
			buf.Write(e.data)
		}
	}
	if buf.Len()%2 == 1 {
		buf.WriteByte(0)
	}
	ifdOffset := uint32(buf.Len())

	b2 := make([]byte, 2)
	bo.PutUint16(b2, uint16(len(entries)))
	buf.Write(b2)
	for i, e := range entries {
		rec := make([]byte, 12)
		bo.PutUint16(rec[0:], e.tag)
		bo.PutUint16(rec[2:], e.typ)
		bo.PutUint32(rec[4:], e.count)
		if len(e.data) > 4 {
			bo.PutUint32(rec[8:], valueAt[i])
		} else {
			copy(rec[8:], e.data)
		}
		buf.Write(rec)
	}
	buf.Write(make([]byte, 4))

	out := buf.Bytes()
	if tt.bigEndian {
		copy(out, "MM")
	} else {
		copy(out, "II")
	}
	bo.PutUint16(out[2:], 42)
	bo.PutUint32(out[4:], ifdOffset)
	return out
}

// chunkBytes encodes the samples of one strip or tile; pixels outside the
// image are zero padded as in a real tiled file.
func (tt testTIFF) chunkBytes(bo binary.ByteOrder, x0, y0, w, h int) []byte {
	bps := tt.bits / 8
	out := make([]byte, w*h*bps)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			col, row := x0+x, y0+y
			if col >= tt.width || row >= tt.height {
				continue
			}
			v := tt.samples[row*tt.width+col]
			at := (y*w + x) * bps
			putSample(bo, out[at:at+bps], tt.format, tt.bits, v)
		}
	}
	switch tt.predictor {
	case predictorHorizontal:
		applyHorizontalPredictor(bo, out, w, h, bps)
	case predictorFloatingPoint:
		applyFloatPredictor(bo, out, w, h, bps)
	}
	return out
}

func putSample(bo binary.ByteOrder, b []byte, format uint16, bits int, v float64) {
	switch {
	case format == sampleFloat && bits == 32:
		bo.PutUint32(b, math.Float32bits(float32(v)))
	case format == sampleFloat && bits == 64:
		bo.PutUint64(b, math.Float64bits(v))
	case bits == 8:
		b[0] = byte(int64(v))
	case bits == 16:
		bo.PutUint16(b, uint16(int64(v)))
	case bits == 32:
		bo.PutUint32(b, uint32(int64(v)))
	}
}

func applyHorizontalPredictor(bo binary.ByteOrder, buf []byte, w, h, bps int) {
	rowLen := w * bps
	for y := 0; y < h; y++ {
		row := buf[y*rowLen : (y+1)*rowLen]
		for x := w - 1; x > 0; x-- {
			switch bps {
			case 1:
				row[x] -= row[x-1]
			case 2:
				bo.PutUint16(row[x*2:], bo.Uint16(row[x*2:])-bo.Uint16(row[(x-1)*2:]))
			case 4:
				bo.PutUint32(row[x*4:], bo.Uint32(row[x*4:])-bo.Uint32(row[(x-1)*4:]))
			}
		}
	}
}

func applyFloatPredictor(bo binary.ByteOrder, buf []byte, w, h, bps int) {
	rowLen := w * bps
	tmp := make([]byte, rowLen)
	for y := 0; y < h; y++ {
		row := buf[y*rowLen : (y+1)*rowLen]
		for i := 0; i < w; i++ {
			for b := 0; b < bps; b++ {
				src := i*bps + b
				if bo == binary.LittleEndian {
					src = i*bps + bps - 1 - b
				}
				tmp[b*w+i] = row[src]
			}
		}
		for i := rowLen - 1; i > 0; i-- {
			tmp[i] -= tmp[i-1]
		}
		copy(row, tmp)
	}
}

func (tt testTIFF) compress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	switch tt.compression {
	case compressionNone:
		return raw
	case compressionDeflate:
		zw := zlib.NewWriter(&out)
		if _, err := zw.Write(raw); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
	case compressionLZW:
		// Short streams stay below the code width switch, where the GIF
		// and TIFF LZW variants agree.
		lw := lzw.NewWriter(&out, lzw.MSB, 8)
		if _, err := lw.Write(raw); err != nil {
			t.Fatal(err)
		}
		if err := lw.Close(); err != nil {
			t.Fatal(err)
		}
	case compressionPackBits:
		for i := 0; i < len(raw); i += 128 {
			end := min(i+128, len(raw))
			out.WriteByte(byte(end - i - 1))
			out.Write(raw[i:end])
		}
	default:
		t.Fatalf("test encoder cannot write compression %d", tt.compression)
	}
	return out.Bytes()
}

func u16s(bo binary.ByteOrder, v ...uint16) []byte {
	b := make([]byte, 2*len(v))
	for i, x := range v {
		bo.PutUint16(b[i*2:], x)
	}
	return b
}

func u32s(bo binary.ByteOrder, v ...uint32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		bo.PutUint32(b[i*4:], x)
	}
	return b
}

func f64s(bo binary.ByteOrder, v ...float64) []byte {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		bo.PutUint64(b[i*8:], math.Float64bits(x))
	}
	return b
}

// geoKeyDir builds a GeoKey directory from key/value pairs.
func geoKeyDir(pairs ...uint16) []uint16 {
	dir := []uint16{1, 1, 0, uint16(len(pairs) / 2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		dir = append(dir, pairs[i], 0, 1, pairs[i+1])
	}
	return dir
}
