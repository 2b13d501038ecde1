package planner

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
)

// LayerRecord is one immutable, dense-indexed per-layer measurement.
type LayerRecord struct {
	Index           int
	Name            string
	ForwardLatency  float64
	BackwardLatency float64
	Memory          int64
}

// Profile is the ordered, read-only sequence of per-layer records for one
// model/tag. It is loaded once per solver invocation and shared by reference
// across the Stage Cost Primitive's concurrent invocations.
type Profile struct {
	Layers []LayerRecord
}

// NumLayers returns the number of layers in the profile.
func (p *Profile) NumLayers() int {
	return len(p.Layers)
}

// Names returns the ordered layer name list.
func (p *Profile) Names() []string {
	names := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		names[i] = l.Name
	}
	return names
}

// profilePath returns the platform-conventional CSV path for (model, tag)
// under dir. Mirrors the "<model>__<tag>.csv" naming the original source
// uses under its profile directory.
func profilePath(dir, modelName, tag string) string {
	return filepath.Join(dir, fmt.Sprintf("%s__%s.csv", modelName, tag))
}

// LoadProfile reads the per-layer CSV at dir/"<model>__<tag>.csv". Columns,
// in order: layer index, layer name, forward latency (seconds), backward
// latency (seconds), memory (bytes). Rows must cover indices 0..L-1 in
// ascending order with no gaps.
func LoadProfile(dir, modelName, tag string) (*Profile, error) {
	path := profilePath(dir, modelName, tag)

	file, err := os.Open(path)
	if err != nil {
		return nil, newErr(ErrProfileLoad, err, "open profile %s", path)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, newErr(ErrProfileLoad, err, "read profile %s", path)
	}

	if len(records) == 0 {
		return nil, newErr(ErrProfileLoad, nil, "profile %s is empty", path)
	}

	layers := make([]LayerRecord, 0, len(records))
	for i, record := range records {
		if len(record) < 5 {
			return nil, newErr(ErrProfileLoad, nil, "profile %s row %d: expected 5 columns, got %d", path, i, len(record))
		}

		idx, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, newErr(ErrProfileLoad, err, "profile %s row %d: invalid layer index", path, i)
		}
		if idx != i {
			return nil, newErr(ErrProfileLoad, nil, "profile %s row %d: non-monotonic layer index, expected %d got %d", path, i, i, idx)
		}

		name := record[1]

		fwd, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, newErr(ErrProfileLoad, err, "profile %s row %d: invalid forward latency", path, i)
		}
		if math.IsNaN(fwd) || math.IsInf(fwd, 0) || fwd < 0 {
			return nil, newErr(ErrProfileLoad, nil, "profile %s row %d: forward latency must be finite and non-negative, got %v", path, i, fwd)
		}

		bwd, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, newErr(ErrProfileLoad, err, "profile %s row %d: invalid backward latency", path, i)
		}
		if math.IsNaN(bwd) || math.IsInf(bwd, 0) || bwd < 0 {
			return nil, newErr(ErrProfileLoad, nil, "profile %s row %d: backward latency must be finite and non-negative, got %v", path, i, bwd)
		}

		mem, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil {
			return nil, newErr(ErrProfileLoad, err, "profile %s row %d: invalid memory", path, i)
		}
		if mem < 0 {
			return nil, newErr(ErrProfileLoad, nil, "profile %s row %d: memory must be non-negative, got %d", path, i, mem)
		}

		layers = append(layers, LayerRecord{
			Index:           idx,
			Name:            name,
			ForwardLatency:  fwd,
			BackwardLatency: bwd,
			Memory:          mem,
		})
	}

	logrus.Debugf("loaded profile %s: %d layers", path, len(layers))

	return &Profile{Layers: layers}, nil
}
