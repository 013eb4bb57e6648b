// Package catalog loads named planetary systems for evaluation by name.
//
// A catalog is a YAML document of the form
//
//	systems:
//	  - name: HD 209458 b
//	    host: HD 209458
//	    t0: 2452826.628521
//	    period: 3.52474859
//	    a: 8.76
//	    inc_deg: 86.71
//	    ecc: 0
//	    omega_deg: 0
//
// Angles are given in degrees and converted to radians on load.
package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/star/rsky/internal/orbit"
)

type catalogFile struct {
	Systems []systemEntry `yaml:"systems"`
}

type systemEntry struct {
	Name     string  `yaml:"name"`
	Host     string  `yaml:"host"`
	T0       float64 `yaml:"t0"`
	Period   float64 `yaml:"period"`
	A        float64 `yaml:"a"`
	IncDeg   float64 `yaml:"inc_deg"`
	Ecc      float64 `yaml:"ecc"`
	OmegaDeg float64 `yaml:"omega_deg"`
}

// Parse reads a YAML catalog from r. Entries without a name, with invalid
// elements, or repeating an earlier name are skipped with a warning log.
func Parse(r io.Reader, logger *slog.Logger) ([]System, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return []System{}, nil
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	systems := make([]System, 0, len(f.Systems))
	seen := make(map[string]bool, len(f.Systems))
	for i, e := range f.Systems {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			logger.Warn("skipping catalog entry without name", "index", i)
			continue
		}
		if seen[name] {
			logger.Warn("skipping duplicate catalog entry", "index", i, "name", name)
			continue
		}

		p := orbit.Params{
			T0:    e.T0,
			Per:   e.Period,
			A:     e.A,
			Inc:   e.IncDeg * math.Pi / 180,
			Ecc:   e.Ecc,
			Omega: e.OmegaDeg * math.Pi / 180,
		}
		if err := p.Validate(); err != nil {
			logger.Warn("skipping catalog entry with invalid elements", "index", i, "name", name, "error", err)
			continue
		}

		seen[name] = true
		systems = append(systems, System{
			Name:   name,
			Host:   strings.TrimSpace(e.Host),
			Params: p,
		})
	}

	return systems, nil
}
