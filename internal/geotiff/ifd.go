package geotiff

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// TIFF tag IDs.
const (
	tagImageWidth          = 256
	tagImageLength         = 257
	tagBitsPerSample       = 258
	tagCompression         = 259
	tagPhotometric         = 262
	tagStripOffsets        = 273
	tagSamplesPerPixel     = 277
	tagRowsPerStrip        = 278
	tagStripByteCounts     = 279
	tagPlanarConfig        = 284
	tagPredictor           = 317
	tagTileWidth           = 322
	tagTileLength          = 323
	tagTileOffsets         = 324
	tagTileByteCounts      = 325
	tagSampleFormat        = 339
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264
	tagGeoKeyDirectory     = 34735
	tagGeoDoubleParams     = 34736
	tagGeoASCIIParams      = 34737
	tagGDALNoData          = 42113
)

// TIFF field types.
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtSByte     = 6
	dtUndef     = 7
	dtSShort    = 8
	dtSLong     = 9
	dtSRational = 10
	dtFloat     = 11
	dtDouble    = 12
	dtLong8     = 16
	dtSLong8    = 17
	dtIFD8      = 18
)

// Compression schemes.
const (
	compressionNone        = 1
	compressionLZW         = 5
	compressionDeflate     = 8
	compressionPackBits    = 32773
	compressionDeflateOld  = 32946
	predictorNone          = 1
	predictorHorizontal    = 2
	predictorFloatingPoint = 3
)

// Sample formats.
const (
	sampleUint  = 1
	sampleInt   = 2
	sampleFloat = 3
)

// IFD is one parsed TIFF Image File Directory, reduced to the tags needed
// to decode a single-band raster and its georeferencing.
type IFD struct {
	Width           uint32
	Height          uint32
	BitsPerSample   []uint16
	SampleFormat    []uint16
	SamplesPerPixel uint16
	Compression     uint16
	Photometric     uint16
	PlanarConfig    uint16
	Predictor       uint16

	RowsPerStrip    uint32
	StripOffsets    []uint64
	StripByteCounts []uint64

	TileWidth      uint32
	TileHeight     uint32
	TileOffsets    []uint64
	TileByteCounts []uint64

	ModelTiepoint       []float64
	ModelPixelScale     []float64
	ModelTransformation []float64
	GeoKeys             []uint16
	GeoDoubleParams     []float64
	GeoASCIIParams      string

	NoData    float64
	HasNoData bool
}

// Tiled reports whether pixel data is organised in tiles rather than strips.
func (ifd *IFD) Tiled() bool {
	return ifd.TileWidth > 0 && ifd.TileHeight > 0
}

// chunkLayout returns the size of one strip or tile and how many fit across
// and down the image.
func (ifd *IFD) chunkLayout() (w, h, across, down int) {
	if ifd.Tiled() {
		w, h = int(ifd.TileWidth), int(ifd.TileHeight)
	} else {
		w = int(ifd.Width)
		h = int(ifd.RowsPerStrip)
		if h == 0 || h > int(ifd.Height) {
			h = int(ifd.Height)
		}
	}
	across = (int(ifd.Width) + w - 1) / w
	down = (int(ifd.Height) + h - 1) / h
	return
}

func (ifd *IFD) chunks() (offsets, counts []uint64) {
	if ifd.Tiled() {
		return ifd.TileOffsets, ifd.TileByteCounts
	}
	return ifd.StripOffsets, ifd.StripByteCounts
}

// bitsPerSample returns the bit depth of the first sample.
func (ifd *IFD) bitsPerSample() int {
	if len(ifd.BitsPerSample) == 0 {
		return 1
	}
	return int(ifd.BitsPerSample[0])
}

func (ifd *IFD) sampleFormat() uint16 {
	if len(ifd.SampleFormat) == 0 {
		return sampleUint
	}
	return ifd.SampleFormat[0]
}

// entry is a raw directory entry whose Value holds the field bytes,
// resolved from the file when they do not fit inline.
type entry struct {
	Tag      uint16
	DataType uint16
	Count    uint64
	Value    []byte
}

// parseHeader reads the TIFF header and returns the byte order, whether the
// file is a BigTIFF, and the offset of the first IFD.
func parseHeader(data []byte) (binary.ByteOrder, bool, uint64, error) {
	if len(data) < 8 {
		return nil, false, 0, ErrNotTIFF
	}

	var bo binary.ByteOrder
	switch string(data[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return nil, false, 0, fmt.Errorf("byte order %q: %w", data[0:2], ErrNotTIFF)
	}

	switch bo.Uint16(data[2:4]) {
	case 42:
		return bo, false, uint64(bo.Uint32(data[4:8])), nil
	case 43:
		if len(data) < 16 {
			return nil, false, 0, ErrNotTIFF
		}
		return bo, true, bo.Uint64(data[8:16]), nil
	default:
		return nil, false, 0, fmt.Errorf("magic %d: %w", bo.Uint16(data[2:4]), ErrNotTIFF)
	}
}

// parseIFDs walks the IFD chain. Only the first directory is needed for a
// single-band raster, but overviews are listed for reporting.
func parseIFDs(data []byte) ([]IFD, error) {
	bo, big, offset, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	var ifds []IFD
	seen := make(map[uint64]bool)
	for offset != 0 {
		if seen[offset] {
			return nil, fmt.Errorf("IFD loop at offset %d: %w", offset, ErrCorrupt)
		}
		seen[offset] = true

		entries, next, err := readEntries(data, bo, offset, big)
		if err != nil {
			return nil, fmt.Errorf("IFD at offset %d: %w", offset, err)
		}
		ifd, err := buildIFD(entries, bo)
		if err != nil {
			return nil, fmt.Errorf("IFD at offset %d: %w", offset, err)
		}
		ifds = append(ifds, ifd)
		offset = next
	}
	if len(ifds) == 0 {
		return nil, fmt.Errorf("no image directories: %w", ErrCorrupt)
	}
	return ifds, nil
}

func readEntries(data []byte, bo binary.ByteOrder, offset uint64, big bool) ([]entry, uint64, error) {
	countSize, entrySize, inline := 2, 12, 4
	if big {
		countSize, entrySize, inline = 8, 20, 8
	}

	pos := offset
	if pos+uint64(countSize) > uint64(len(data)) {
		return nil, 0, ErrCorrupt
	}
	var n uint64
	if big {
		n = bo.Uint64(data[pos:])
	} else {
		n = uint64(bo.Uint16(data[pos:]))
	}
	pos += uint64(countSize)

	end := pos + n*uint64(entrySize) + uint64(inline)
	if end > uint64(len(data)) {
		return nil, 0, ErrCorrupt
	}

	entries := make([]entry, 0, n)
	for i := uint64(0); i < n; i++ {
		raw := data[pos : pos+uint64(entrySize)]
		pos += uint64(entrySize)

		e := entry{Tag: bo.Uint16(raw[0:2]), DataType: bo.Uint16(raw[2:4])}
		var field []byte
		if big {
			e.Count = bo.Uint64(raw[4:12])
			field = raw[12:20]
		} else {
			e.Count = uint64(bo.Uint32(raw[4:8]))
			field = raw[8:12]
		}

		size := e.Count * uint64(typeSize(e.DataType))
		if size <= uint64(inline) {
			e.Value = field[:size]
		} else {
			var at uint64
			if big {
				at = bo.Uint64(field)
			} else {
				at = uint64(bo.Uint32(field))
			}
			if at+size > uint64(len(data)) || at+size < at {
				return nil, 0, fmt.Errorf("tag %d value at %d+%d: %w", e.Tag, at, size, ErrCorrupt)
			}
			e.Value = data[at : at+size]
		}
		entries = append(entries, e)
	}

	var next uint64
	if big {
		next = bo.Uint64(data[pos:])
	} else {
		next = uint64(bo.Uint32(data[pos:]))
	}
	return entries, next, nil
}

func typeSize(dt uint16) int {
	switch dt {
	case dtShort, dtSShort:
		return 2
	case dtLong, dtSLong, dtFloat:
		return 4
	case dtRational, dtSRational, dtDouble, dtLong8, dtSLong8, dtIFD8:
		return 8
	default:
		return 1
	}
}

func buildIFD(entries []entry, bo binary.ByteOrder) (IFD, error) {
	ifd := IFD{SamplesPerPixel: 1, PlanarConfig: 1, Compression: compressionNone, Predictor: predictorNone}

	for _, e := range entries {
		switch e.Tag {
		case tagImageWidth:
			ifd.Width = uint32(firstUint(e, bo))
		case tagImageLength:
			ifd.Height = uint32(firstUint(e, bo))
		case tagBitsPerSample:
			ifd.BitsPerSample = uint16s(e, bo)
			if len(ifd.BitsPerSample) == 0 {
				return IFD{}, fmt.Errorf("empty BitsPerSample: %w", ErrCorrupt)
			}
		case tagSampleFormat:
			ifd.SampleFormat = uint16s(e, bo)
		case tagSamplesPerPixel:
			ifd.SamplesPerPixel = uint16(firstUint(e, bo))
		case tagCompression:
			ifd.Compression = uint16(firstUint(e, bo))
		case tagPhotometric:
			ifd.Photometric = uint16(firstUint(e, bo))
		case tagPlanarConfig:
			ifd.PlanarConfig = uint16(firstUint(e, bo))
		case tagPredictor:
			ifd.Predictor = uint16(firstUint(e, bo))
		case tagRowsPerStrip:
			ifd.RowsPerStrip = uint32(firstUint(e, bo))
		case tagStripOffsets:
			ifd.StripOffsets = uints(e, bo)
		case tagStripByteCounts:
			ifd.StripByteCounts = uints(e, bo)
		case tagTileWidth:
			ifd.TileWidth = uint32(firstUint(e, bo))
		case tagTileLength:
			ifd.TileHeight = uint32(firstUint(e, bo))
		case tagTileOffsets:
			ifd.TileOffsets = uints(e, bo)
		case tagTileByteCounts:
			ifd.TileByteCounts = uints(e, bo)
		case tagModelTiepoint:
			ifd.ModelTiepoint = floats(e, bo)
		case tagModelPixelScale:
			ifd.ModelPixelScale = floats(e, bo)
		case tagModelTransformation:
			ifd.ModelTransformation = floats(e, bo)
		case tagGeoKeyDirectory:
			ifd.GeoKeys = uint16s(e, bo)
		case tagGeoDoubleParams:
			ifd.GeoDoubleParams = floats(e, bo)
		case tagGeoASCIIParams:
			ifd.GeoASCIIParams = asciiValue(e)
		case tagGDALNoData:
			s := asciiValue(e)
			if s == "" {
				continue
			}
			v, err := parseNoData(s)
			if err != nil {
				return IFD{}, err
			}
			ifd.NoData, ifd.HasNoData = v, true
		}
	}

	if ifd.Width == 0 || ifd.Height == 0 {
		return IFD{}, fmt.Errorf("image has zero size %dx%d: %w", ifd.Width, ifd.Height, ErrCorrupt)
	}
	if ifd.SamplesPerPixel == 0 {
		return IFD{}, fmt.Errorf("SamplesPerPixel is 0: %w", ErrCorrupt)
	}
	for _, b := range ifd.BitsPerSample {
		if b == 0 {
			return IFD{}, fmt.Errorf("BitsPerSample is 0: %w", ErrCorrupt)
		}
	}
	return ifd, nil
}

func asciiValue(e entry) string {
	return strings.TrimRight(string(e.Value), "\x00 ")
}

func parseNoData(s string) (float64, error) {
	var v float64
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nan", "-nan":
		return math.NaN(), nil
	case "inf", "+inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}
	if _, err := fmt.Sscan(s, &v); err != nil {
		return 0, fmt.Errorf("GDAL_NODATA %q: %w", s, ErrCorrupt)
	}
	return v, nil
}

func firstUint(e entry, bo binary.ByteOrder) uint64 {
	if v := uints(e, bo); len(v) > 0 {
		return v[0]
	}
	return 0
}

func uints(e entry, bo binary.ByteOrder) []uint64 {
	n := int(e.Count)
	out := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		switch e.DataType {
		case dtByte, dtUndef:
			out = append(out, uint64(e.Value[i]))
		case dtShort:
			out = append(out, uint64(bo.Uint16(e.Value[i*2:])))
		case dtLong:
			out = append(out, uint64(bo.Uint32(e.Value[i*4:])))
		case dtLong8, dtIFD8:
			out = append(out, bo.Uint64(e.Value[i*8:]))
		default:
			return out
		}
	}
	return out
}

func uint16s(e entry, bo binary.ByteOrder) []uint16 {
	v := uints(e, bo)
	out := make([]uint16, len(v))
	for i := range v {
		out[i] = uint16(v[i])
	}
	return out
}

func floats(e entry, bo binary.ByteOrder) []float64 {
	n := int(e.Count)
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		switch e.DataType {
		case dtDouble:
			out = append(out, math.Float64frombits(bo.Uint64(e.Value[i*8:])))
		case dtFloat:
			out = append(out, float64(math.Float32frombits(bo.Uint32(e.Value[i*4:]))))
		default:
			return out
		}
	}
	return out
}
