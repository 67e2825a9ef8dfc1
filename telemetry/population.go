package telemetry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/tinylib/msgp/msgp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/planetforge/planet"
)

// PopulationMagic opens every population file.
const PopulationMagic = "POPU"

// headerSize is magic + u64 payload length + u32 checksum.
const headerSize = 4 + 8 + 4

// Smallest encodings of the array elements in a payload: an empty map or
// array takes one byte, a control point a fixarray plus three float64s.
const (
	minRecordSize = 1
	minRowSize    = 1
	minPointSize  = 1 + 3*9
)

var (
	// ErrBadMagic is returned when a file does not start with PopulationMagic.
	ErrBadMagic = errors.New("population file: bad magic")
	// ErrSizeMismatch is returned when the header length disagrees with the file size.
	ErrSizeMismatch = errors.New("population file: size mismatch")
	// ErrChecksumMismatch is returned when the payload checksum does not match.
	ErrChecksumMismatch = errors.New("population file: checksum mismatch")
	// ErrTruncated is returned for short headers and payloads that end early.
	ErrTruncated = errors.New("population file: truncated")
)

// PlanetRecord is the stored form of one planet: its degrees and the
// unwrapped control grid.
type PlanetRecord struct {
	DegreeU int
	DegreeV int
	Grid    [][]r3.Vec
}

// Population is the payload of a population file.
type Population struct {
	Planets   []PlanetRecord
	Meridians int
	Parallels int
	Radius    float64
}

// RecordOf captures a planet for storage.
func RecordOf(p *planet.Planet) PlanetRecord {
	return PlanetRecord{DegreeU: p.DegreeU(), DegreeV: p.DegreeV(), Grid: p.RawGrid()}
}

// Planet rebuilds the stored planet.
func (r PlanetRecord) Planet() (*planet.Planet, error) {
	return planet.New(r.DegreeU, r.DegreeV, r.Grid)
}

// NewPopulation captures planets for storage.
func NewPopulation(planets []*planet.Planet, meridians, parallels int, radius float64) *Population {
	pop := &Population{Meridians: meridians, Parallels: parallels, Radius: radius}
	pop.Planets = make([]PlanetRecord, len(planets))
	for i, p := range planets {
		pop.Planets[i] = RecordOf(p)
	}
	return pop
}

// BuildPlanets rebuilds every stored planet. It fails on the first record
// that does not form a valid planet and returns nothing in that case.
func (pop *Population) BuildPlanets() ([]*planet.Planet, error) {
	out := make([]*planet.Planet, len(pop.Planets))
	for i, r := range pop.Planets {
		p, err := r.Planet()
		if err != nil {
			return nil, fmt.Errorf("planet %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// Encode returns the complete file image: header followed by the msgp payload.
func (pop *Population) Encode() []byte {
	payload := pop.appendPayload(nil)
	buf := make([]byte, headerSize, headerSize+len(payload))
	copy(buf, PopulationMagic)
	binary.LittleEndian.PutUint64(buf[4:], uint64(len(payload)))
	binary.LittleEndian.PutUint32(buf[12:], checksum(payload))
	return append(buf, payload...)
}

func (pop *Population) appendPayload(b []byte) []byte {
	b = msgp.AppendMapHeader(b, 4)
	b = msgp.AppendString(b, "planets")
	b = msgp.AppendArrayHeader(b, uint32(len(pop.Planets)))
	for _, r := range pop.Planets {
		b = r.appendMsg(b)
	}
	b = msgp.AppendString(b, "meridian_count")
	b = msgp.AppendInt(b, pop.Meridians)
	b = msgp.AppendString(b, "parallel_count")
	b = msgp.AppendInt(b, pop.Parallels)
	b = msgp.AppendString(b, "radius")
	b = msgp.AppendFloat64(b, pop.Radius)
	return b
}

func (r PlanetRecord) appendMsg(b []byte) []byte {
	b = msgp.AppendMapHeader(b, 3)
	b = msgp.AppendString(b, "degree_u")
	b = msgp.AppendInt(b, r.DegreeU)
	b = msgp.AppendString(b, "degree_v")
	b = msgp.AppendInt(b, r.DegreeV)
	b = msgp.AppendString(b, "grid")
	b = msgp.AppendArrayHeader(b, uint32(len(r.Grid)))
	for _, row := range r.Grid {
		b = msgp.AppendArrayHeader(b, uint32(len(row)))
		for _, v := range row {
			b = msgp.AppendArrayHeader(b, 3)
			b = msgp.AppendFloat64(b, v.X)
			b = msgp.AppendFloat64(b, v.Y)
			b = msgp.AppendFloat64(b, v.Z)
		}
	}
	return b
}

// Decode verifies the header of a file image and decodes its payload.
// Nothing is returned unless every check passes.
func Decode(data []byte) (*Population, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	if string(data[:4]) != PopulationMagic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, data[:4])
	}
	length := binary.LittleEndian.Uint64(data[4:])
	if uint64(len(data)-headerSize) != length {
		return nil, fmt.Errorf("%w: header says %d payload bytes, file has %d", ErrSizeMismatch, length, len(data)-headerSize)
	}
	payload := data[headerSize:]
	want := binary.LittleEndian.Uint32(data[12:])
	if got := checksum(payload); got != want {
		return nil, fmt.Errorf("%w: header %08x, payload %08x", ErrChecksumMismatch, want, got)
	}

	pop := &Population{}
	rest, err := pop.readPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSizeMismatch, len(rest))
	}
	return pop, nil
}

func (pop *Population) readPayload(b []byte) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for range n {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		switch key {
		case "planets":
			var count uint32
			count, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return b, err
			}
			if err = fitsRemaining(count, minRecordSize, b); err != nil {
				return b, fmt.Errorf("planets: %w", err)
			}
			pop.Planets = make([]PlanetRecord, count)
			for i := range pop.Planets {
				if b, err = pop.Planets[i].readMsg(b); err != nil {
					return b, fmt.Errorf("planet %d: %w", i, err)
				}
			}
		case "meridian_count":
			pop.Meridians, b, err = msgp.ReadIntBytes(b)
		case "parallel_count":
			pop.Parallels, b, err = msgp.ReadIntBytes(b)
		case "radius":
			pop.Radius, b, err = msgp.ReadFloat64Bytes(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return b, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return b, nil
}

func (r *PlanetRecord) readMsg(b []byte) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for range n {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		switch key {
		case "degree_u":
			r.DegreeU, b, err = msgp.ReadIntBytes(b)
		case "degree_v":
			r.DegreeV, b, err = msgp.ReadIntBytes(b)
		case "grid":
			r.Grid, b, err = readGrid(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return b, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return b, nil
}

func readGrid(b []byte) ([][]r3.Vec, []byte, error) {
	rows, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	if err = fitsRemaining(rows, minRowSize, b); err != nil {
		return nil, b, fmt.Errorf("rows: %w", err)
	}
	grid := make([][]r3.Vec, rows)
	for i := range grid {
		var cols uint32
		cols, b, err = msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return nil, b, err
		}
		if err = fitsRemaining(cols, minPointSize, b); err != nil {
			return nil, b, fmt.Errorf("row %d: %w", i, err)
		}
		grid[i] = make([]r3.Vec, cols)
		for j := range grid[i] {
			var dim uint32
			dim, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return nil, b, err
			}
			if dim != 3 {
				return nil, b, fmt.Errorf("control point [%d][%d] has %d components", i, j, dim)
			}
			var xyz [3]float64
			for k := range xyz {
				xyz[k], b, err = msgp.ReadFloat64Bytes(b)
				if err != nil {
					return nil, b, err
				}
			}
			grid[i][j] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		}
	}
	return grid, b, nil
}

// fitsRemaining rejects an array header whose element count could not be
// encoded in the bytes left, before anything is allocated for it.
func fitsRemaining(count uint32, minSize int, b []byte) error {
	if uint64(count)*uint64(minSize) > uint64(len(b)) {
		return fmt.Errorf("%d elements in %d bytes: %w", count, len(b), msgp.ErrShortBytes)
	}
	return nil
}

func checksum(payload []byte) uint32 {
	h := fnv.New32a()
	h.Write(payload)
	return h.Sum32()
}

// SavePopulation writes a population file, creating the directory if needed.
func SavePopulation(path string, pop *Population) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create population dir: %w", err)
		}
	}
	if err := os.WriteFile(path, pop.Encode(), 0644); err != nil {
		return fmt.Errorf("write population: %w", err)
	}
	return nil
}

// LoadPopulation reads and verifies a population file.
func LoadPopulation(path string) (*Population, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read population: %w", err)
	}
	pop, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return pop, nil
}
