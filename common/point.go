package common

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PointKind tells how the coordinates of a probe point are interpreted.
type PointKind int

const (
	PointLatLon   PointKind = iota // X = longitude, Y = latitude
	PointGridCell                  // X = column, Y = row, 1-based
	PointAllCells                  // every cell of the grid
)

// Point is a 2-D coordinate whose meaning is carried by the adjacent PointKind.
type Point struct {
	X float64
	Y float64
}

// ProbePoint is a labeled probe location read from a points file.
type ProbePoint struct {
	Label string
	Lat   float64
	Lon   float64
}

// ParsePointsFile reads a comma-delimited points file. Each line is
// "label, lat, lon" with optional trailing fields ignored; a two-field line is
// "lat, lon" and gets a synthesized "(lat,lon)" label. Lines starting with '#'
// are comments.
func ParsePointsFile(path string) ([]ProbePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open points file: %w", err)
	}
	defer f.Close()

	var pnts []ProbePoint
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pnt, err := parsePointLine(line)
		if err != nil {
			return nil, fmt.Errorf("points file %s line %d: %w", path, lineNo, err)
		}
		pnts = append(pnts, pnt)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read points file: %w", err)
	}
	return pnts, nil
}

func parsePointLine(line string) (ProbePoint, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	switch {
	case len(fields) >= 3:
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return ProbePoint{}, fmt.Errorf("bad latitude %q", fields[1])
		}
		lon, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return ProbePoint{}, fmt.Errorf("bad longitude %q", fields[2])
		}
		return ProbePoint{Label: fields[0], Lat: lat, Lon: lon}, nil
	case len(fields) == 2:
		lat, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return ProbePoint{}, fmt.Errorf("bad latitude %q", fields[0])
		}
		lon, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return ProbePoint{}, fmt.Errorf("bad longitude %q", fields[1])
		}
		return ProbePoint{
			Label: fmt.Sprintf("(%s,%s)", fields[0], fields[1]),
			Lat:   lat,
			Lon:   lon,
		}, nil
	default:
		return ProbePoint{}, fmt.Errorf("expected at least 2 fields, got %d", len(fields))
	}
}

// Points converts probe points into the (x=lon, y=lat) coordinates the
// samplers consume.
func Points(pnts []ProbePoint) []Point {
	out := make([]Point, len(pnts))
	for i, p := range pnts {
		out[i] = Point{X: p.Lon, Y: p.Lat}
	}
	return out
}
