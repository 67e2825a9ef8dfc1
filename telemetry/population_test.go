package telemetry

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tinylib/msgp/msgp"

	"github.com/pthm-cable/planetforge/planet"
)

func testPopulation(t *testing.T) ([]*planet.Planet, *Population) {
	t.Helper()
	sphere, err := planet.Sphere(8, 10, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	rock, err := planet.Asteroid(8, 10, 1.5, planet.AsteroidParams{Amplitude: 0.05, Frequency: 2, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	planets := []*planet.Planet{sphere, rock}
	return planets, NewPopulation(planets, 8, 10, 1.5)
}

func TestPopulationSaveLoad(t *testing.T) {
	planets, pop := testPopulation(t)
	path := filepath.Join(t.TempDir(), "run", "population.popu")

	if err := SavePopulation(path, pop); err != nil {
		t.Fatalf("SavePopulation: %v", err)
	}
	loaded, err := LoadPopulation(path)
	if err != nil {
		t.Fatalf("LoadPopulation: %v", err)
	}

	if loaded.Meridians != 8 || loaded.Parallels != 10 || loaded.Radius != 1.5 {
		t.Errorf("metadata = %d/%d/%v", loaded.Meridians, loaded.Parallels, loaded.Radius)
	}
	rebuilt, err := loaded.BuildPlanets()
	if err != nil {
		t.Fatalf("BuildPlanets: %v", err)
	}
	if len(rebuilt) != len(planets) {
		t.Fatalf("loaded %d planets, want %d", len(rebuilt), len(planets))
	}
	for i := range planets {
		if !rebuilt[i].Grid().Equal(planets[i].Grid()) {
			t.Errorf("planet %d grid differs after round trip", i)
		}
		if rebuilt[i].DegreeU() != planets[i].DegreeU() || rebuilt[i].DegreeV() != planets[i].DegreeV() {
			t.Errorf("planet %d degrees differ", i)
		}
	}
}

func TestLoadPopulationFlippedChecksumByte(t *testing.T) {
	_, pop := testPopulation(t)
	data := pop.Encode()
	data[12] ^= 0xff

	path := filepath.Join(t.TempDir(), "bad.popu")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPopulation(path)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("error = %v, want checksum mismatch", err)
	}
	if loaded != nil {
		t.Error("partial population returned")
	}
}

func TestDecodeRejectsCorruptFiles(t *testing.T) {
	_, pop := testPopulation(t)
	good := pop.Encode()

	flipPayload := append([]byte(nil), good...)
	flipPayload[len(flipPayload)-1] ^= 0x01

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "PUPO")

	longer := append(append([]byte(nil), good...), 0)

	// Consistent header around a payload cut short.
	cut := append([]byte(nil), good[:len(good)-5]...)
	binary.LittleEndian.PutUint64(cut[4:], uint64(len(cut)-headerSize))
	binary.LittleEndian.PutUint32(cut[12:], checksum(cut[headerSize:]))

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"huge planet count", withPayload(hugeArray("planets", 0xFFFFFFFF)), ErrTruncated},
		{"huge row count", withPayload(hugeGrid(0xFFFFFFFF, 0)), ErrTruncated},
		{"huge column count", withPayload(hugeGrid(1, 50_000_000)), ErrTruncated},
		{"empty", nil, ErrTruncated},
		{"short header", good[:10], ErrTruncated},
		{"bad magic", badMagic, ErrBadMagic},
		{"extra byte", longer, ErrSizeMismatch},
		{"missing byte", good[:len(good)-1], ErrSizeMismatch},
		{"payload bit flip", flipPayload, ErrChecksumMismatch},
		{"truncated payload", cut, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if pop != nil {
				t.Error("partial population returned")
			}
		})
	}
}

// withPayload wraps a raw payload in a consistent header.
func withPayload(payload []byte) []byte {
	data := make([]byte, headerSize, headerSize+len(payload))
	copy(data, PopulationMagic)
	binary.LittleEndian.PutUint64(data[4:], uint64(len(payload)))
	binary.LittleEndian.PutUint32(data[12:], checksum(payload))
	return append(data, payload...)
}

func hugeArray(key string, count uint32) []byte {
	b := msgp.AppendMapHeader(nil, 1)
	b = msgp.AppendString(b, key)
	return msgp.AppendArrayHeader(b, count)
}

// hugeGrid is one planet whose grid claims rows rows, the first of cols
// points, with no point data following.
func hugeGrid(rows, cols uint32) []byte {
	b := hugeArray("planets", 1)
	b = msgp.AppendMapHeader(b, 1)
	b = msgp.AppendString(b, "grid")
	b = msgp.AppendArrayHeader(b, rows)
	if cols > 0 {
		b = msgp.AppendArrayHeader(b, cols)
	}
	return b
}

func TestEncodeHeader(t *testing.T) {
	_, pop := testPopulation(t)
	data := pop.Encode()
	if string(data[:4]) != PopulationMagic {
		t.Errorf("magic = %q", data[:4])
	}
	if n := binary.LittleEndian.Uint64(data[4:]); int(n) != len(data)-headerSize {
		t.Errorf("payload length = %d, file has %d", n, len(data)-headerSize)
	}
}

func TestBuildPlanetsRejectsBadRecord(t *testing.T) {
	_, pop := testPopulation(t)
	pop.Planets[1].Grid = pop.Planets[1].Grid[:2]
	planets, err := pop.BuildPlanets()
	if err == nil {
		t.Fatal("BuildPlanets accepted a two-row grid")
	}
	if planets != nil {
		t.Error("partial planets returned")
	}
}
