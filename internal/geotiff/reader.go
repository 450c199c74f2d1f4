// Package geotiff reads single-band GeoTIFF rasters into memory.
//
// Strip and tile layouts are supported, uncompressed or with LZW, Deflate or
// PackBits compression, horizontal and floating-point predictors, and 8 to
// 64 bit integer or float samples. Georeferencing comes from the GeoTIFF
// model tags or, failing that, from a .tfw world file next to the image.
package geotiff

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
)

// Raster is the first band of a GeoTIFF, decoded to float64.
// It is immutable once returned by Read.
type Raster struct {
	Path      string
	Width     int
	Height    int
	Data      []float64 // row-major, Width*Height samples
	Transform coord.Affine
	EPSG      int // 0 when unknown

	// Overviews is the number of reduced-resolution IFDs that follow the
	// full-resolution image.
	Overviews int
	Bits      int
	Format    string

	noData    float64
	hasNoData bool
}

// NewRaster wraps an in-memory band. data is row-major and must hold
// width*height samples.
func NewRaster(width, height int, data []float64, t coord.Affine, epsg int) (*Raster, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, fmt.Errorf("raster %dx%d with %d samples: %w", width, height, len(data), ErrCorrupt)
	}
	return &Raster{Width: width, Height: height, Data: data, Transform: t, EPSG: epsg, Bits: 64, Format: "float"}, nil
}

// SetNoData declares v as the nodata value.
func (r *Raster) SetNoData(v float64) {
	r.noData, r.hasNoData = v, true
}

// At returns the sample at (col, row).
func (r *Raster) At(col, row int) float64 {
	return r.Data[row*r.Width+col]
}

// Rows returns the raster height. It satisfies grid.Source together with
// Cols and At.
func (r *Raster) Rows() int { return r.Height }

// Cols returns the raster width.
func (r *Raster) Cols() int { return r.Width }

// NoData returns the GDAL nodata value, if the file declares one.
func (r *Raster) NoData() (float64, bool) {
	return r.noData, r.hasNoData
}

// IsNoData reports whether v is the nodata value or not a finite number.
func (r *Raster) IsNoData(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return true
	}
	return r.hasNoData && v == r.noData
}

// Bounds returns the raster extent in its own CRS.
func (r *Raster) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range [][2]float64{{0, 0}, {float64(r.Width), 0}, {0, float64(r.Height)}, {float64(r.Width), float64(r.Height)}} {
		x, y := r.Transform.Apply(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return
}

// Read loads the first band of the GeoTIFF at path.
func Read(path string) (*Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, ifd, err := decodeRaster(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.Path = path

	t, epsg, ok, err := geoReference(ifd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !ok {
		wf := findWorldFile(path)
		if wf == "" {
			return nil, fmt.Errorf("%s: %w", path, ErrNoGeoreference)
		}
		if t, err = readWorldFile(wf); err != nil {
			return nil, err
		}
		if epsg == 0 {
			epsg = inferEPSG(t, r.Width, r.Height)
		}
	}
	r.Transform = t
	r.EPSG = epsg
	return r, nil
}

// Decode parses an in-memory GeoTIFF. Unlike Read it cannot fall back to a
// world file, so the tags must carry the georeferencing.
func Decode(data []byte) (*Raster, error) {
	r, ifd, err := decodeRaster(data)
	if err != nil {
		return nil, err
	}
	t, epsg, ok, err := geoReference(ifd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoGeoreference
	}
	r.Transform, r.EPSG = t, epsg
	return r, nil
}

func decodeRaster(data []byte) (*Raster, *IFD, error) {
	bo, _, _, err := parseHeader(data)
	if err != nil {
		return nil, nil, err
	}
	ifds, err := parseIFDs(data)
	if err != nil {
		return nil, nil, err
	}
	ifd := &ifds[0]

	bits := ifd.bitsPerSample()
	if bits%8 != 0 {
		return nil, nil, fmt.Errorf("%d-bit samples: %w", bits, ErrUnsupported)
	}
	read, err := newSampleReader(bo, ifd.sampleFormat(), bits)
	if err != nil {
		return nil, nil, err
	}

	r := &Raster{
		Width:     int(ifd.Width),
		Height:    int(ifd.Height),
		Overviews: len(ifds) - 1,
		Bits:      bits,
		Format:    formatName(ifd.sampleFormat()),
		noData:    ifd.NoData,
		hasNoData: ifd.HasNoData,
	}
	r.Data = make([]float64, r.Width*r.Height)
	if err := readBand(data, bo, ifd, read, r.Data); err != nil {
		return nil, nil, err
	}
	return r, ifd, nil
}

// readBand decodes band 0 of every strip or tile into dst.
func readBand(data []byte, bo binary.ByteOrder, ifd *IFD, read sampleReader, dst []float64) error {
	cw, ch, across, down := ifd.chunkLayout()
	offsets, counts := ifd.chunks()
	if len(offsets) < across*down || len(counts) < across*down {
		return fmt.Errorf("%d chunks listed, %d needed: %w", len(offsets), across*down, ErrCorrupt)
	}

	spp := int(ifd.SamplesPerPixel)
	bps := ifd.bitsPerSample() / 8
	// With planar separation band 0 occupies the first across*down chunks
	// and each pixel holds one sample.
	stride := spp
	if ifd.PlanarConfig == 2 {
		stride = 1
	}

	width, height := int(ifd.Width), int(ifd.Height)
	for cy := 0; cy < down; cy++ {
		for cx := 0; cx < across; cx++ {
			idx := cy*across + cx
			off, n := offsets[idx], counts[idx]
			if n == 0 {
				continue
			}
			if off+n > uint64(len(data)) || off+n < off {
				return fmt.Errorf("chunk %d at %d+%d: %w", idx, off, n, ErrCorrupt)
			}

			rows := ch
			if !ifd.Tiled() && (cy+1)*ch > height {
				rows = height - cy*ch
			}
			want := cw * rows * stride * bps
			buf, err := decompress(ifd.Compression, data[off:off+n], want)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", idx, err)
			}
			if len(buf) < want {
				return fmt.Errorf("chunk %d: %d bytes, want %d: %w", idx, len(buf), want, ErrCorrupt)
			}
			if ifd.Compression == compressionNone {
				buf = append([]byte(nil), buf[:want]...)
			}

			switch ifd.Predictor {
			case predictorNone:
			case predictorHorizontal:
				if err := undoHorizontalPredictor(buf, bo, cw, rows, stride, bps); err != nil {
					return err
				}
			case predictorFloatingPoint:
				undoFloatPredictor(buf, bo, cw, rows, stride, bps)
			default:
				return fmt.Errorf("predictor %d: %w", ifd.Predictor, ErrUnsupported)
			}

			for y := 0; y < rows; y++ {
				row := cy*ch + y
				if row >= height {
					break
				}
				for x := 0; x < cw; x++ {
					col := cx*cw + x
					if col >= width {
						break
					}
					at := (y*cw + x) * stride * bps
					dst[row*width+col] = read(buf[at : at+bps])
				}
			}
		}
	}
	return nil
}

func formatName(f uint16) string {
	switch f {
	case sampleInt:
		return "int"
	case sampleFloat:
		return "float"
	default:
		return "uint"
	}
}
