// Package probe fans probe requests out to the cube and GRIB probes and
// aggregates their matches.
package probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "hstin/ndprobe/helper"

	"hstin/ndprobe/common"
	"hstin/ndprobe/cube"
	"hstin/ndprobe/grib"
	"hstin/ndprobe/observability"
	"hstin/ndprobe/sampler"
	"hstin/ndprobe/weather"
)

// FileType tells the driver how to read a forecast file.
type FileType int

const (
	TypeGRIB FileType = iota
	TypeCube
)

func (t FileType) String() string {
	if t == TypeCube {
		return "cube"
	}
	return "grib"
}

// ErrNoInputs is returned when name expansion produced nothing to probe and
// stdin is not available.
var ErrNoInputs = errors.New("no input files")

// Params fixes one driver run.
type Params struct {
	FileType  FileType
	Inputs    []string // files taken literally, directories expanded
	Sectors   []string // sector name fragments for directory expansion
	Conv      common.NameConvention
	Kind      common.PointKind
	Points    []common.Point
	Elements  []common.ElementDescriptor
	Window    common.TimeWindow
	Interp    sampler.Interp
	WxMode    weather.Mode
	SimpleVer int
	Stdin     io.Reader // GRIB fallback when nothing expanded
}

// Run expands the input names and probes each file in order. A failing file
// is logged and skipped; the batch never aborts. Matches keep (input order,
// in-file record order).
func Run(prm Params, metrics *observability.Metrics) ([]common.Match, error) {
	files, err := ExpandNames(prm.Inputs, prm.FileType, prm.Sectors, prm.Elements, prm.Conv)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		if prm.FileType == TypeGRIB && prm.Stdin != nil {
			return probeStream(prm.Stdin, "stdin", prm, metrics)
		}
		return nil, ErrNoInputs
	}

	var matches []common.Match
	for _, name := range files {
		got, err := probeFile(name, prm, metrics)
		matches = append(matches, got...)
		if err != nil {
			Log.Warn().Err(err).Str("file", name).Msg("probe failed, continuing")
			if metrics != nil {
				metrics.FileErrors.WithLabelValues(prm.FileType.String()).Inc()
			}
			continue
		}
		if metrics != nil {
			metrics.FilesProbed.WithLabelValues(prm.FileType.String()).Inc()
		}
	}
	if metrics != nil {
		metrics.MatchesEmitted.Add(float64(len(matches)))
	}
	return matches, nil
}

func probeFile(name string, prm Params, metrics *observability.Metrics) ([]common.Match, error) {
	if prm.FileType == TypeCube {
		return cube.Probe(name, cube.Params{
			Kind:      prm.Kind,
			Points:    prm.Points,
			Elements:  prm.Elements,
			Window:    prm.Window,
			Interp:    prm.Interp,
			WxMode:    prm.WxMode,
			SimpleVer: prm.SimpleVer,
		})
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("grib %s: %w", name, err)
	}
	defer f.Close()
	return probeStream(f, name, prm, metrics)
}

func probeStream(r io.Reader, name string, prm Params, metrics *observability.Metrics) ([]common.Match, error) {
	matches, err := grib.Probe(r, name, grib.Params{
		Kind:      prm.Kind,
		Points:    prm.Points,
		Elements:  prm.Elements,
		Window:    prm.Window,
		Interp:    prm.Interp,
		WxMode:    prm.WxMode,
		SimpleVer: prm.SimpleVer,
	})
	if err == nil && metrics != nil && name == "stdin" {
		metrics.FilesProbed.WithLabelValues(prm.FileType.String()).Inc()
		metrics.MatchesEmitted.Add(float64(len(matches)))
	}
	return matches, err
}

// ExpandNames flattens the input list. Plain files pass through untouched.
// Directories are enumerated against the type's glob, keeping entries whose
// name carries one of the sector fragments (when given) and one of the
// requested element names under the chosen convention.
func ExpandNames(inputs []string, ftype FileType, sectors []string, elements []common.ElementDescriptor, conv common.NameConvention) ([]string, error) {
	var out []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", input, err)
		}
		if !info.IsDir() {
			out = append(out, input)
			continue
		}

		entries, err := filepath.Glob(filepath.Join(input, typeGlob(ftype)))
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", input, err)
		}
		for _, entry := range entries {
			base := filepath.Base(entry)
			if !sectorMatch(base, sectors) {
				continue
			}
			if !elementMatch(base, elements, conv) {
				continue
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

func typeGlob(ftype FileType) string {
	if ftype == TypeCube {
		return "*.flx"
	}
	return "*.bin"
}

func sectorMatch(name string, sectors []string) bool {
	if len(sectors) == 0 {
		return true
	}
	for _, s := range sectors {
		if s != "" && strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func elementMatch(name string, elements []common.ElementDescriptor, conv common.NameConvention) bool {
	if len(elements) == 0 {
		return true
	}
	for _, d := range elements {
		if d.Elem == common.NDFD_MATCHALL {
			return true
		}
		frag := common.ElementName(d.Elem, conv)
		if frag != "" && strings.Contains(name, frag) {
			return true
		}
	}
	return false
}
