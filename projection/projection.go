// Package projection maps geographic coordinates into continuous 1-based grid
// cell space for the grid definitions NDFD products are published on.
package projection

import (
	"fmt"
	"math"
)

// ProjKind enumerates the supported grid projections.
type ProjKind int

const (
	ProjLatLon  ProjKind = iota // cylindrical equidistant
	ProjLambert                 // Lambert conformal conic
)

// GridDef carries the projection parameters of one grid-definition record.
// Dx/Dy are degrees for lat/lon grids and metres for Lambert grids. Lat1/Lon1
// locate the first stored grid point under ScanMode: the south-west corner
// for scan 64, the north-west corner for scan 0. Cell (1,1) is always the
// south-west corner.
type GridDef struct {
	Kind      ProjKind
	Nx        int
	Ny        int
	Lat1      float64
	Lon1      float64
	Dx        float64
	Dy        float64
	OrientLon float64 // Lambert central meridian
	ScaleLat1 float64 // Lambert standard parallels
	ScaleLat2 float64
	RadiusM   float64
	ScanMode  byte
}

// Validate rejects grid definitions the projector cannot address.
func (g GridDef) Validate() error {
	if g.Nx <= 0 || g.Ny <= 0 {
		return fmt.Errorf("grid definition: bad dimensions %dx%d", g.Nx, g.Ny)
	}
	if g.Dx == 0 || g.Dy == 0 {
		return fmt.Errorf("grid definition: zero spacing")
	}
	if g.ScanMode != 0 && g.ScanMode != 64 {
		return fmt.Errorf("grid definition: unsupported scan mode %d", g.ScanMode)
	}
	switch g.Kind {
	case ProjLatLon, ProjLambert:
	default:
		return fmt.Errorf("grid definition: unsupported projection %d", g.Kind)
	}
	if g.Kind == ProjLambert && g.RadiusM <= 0 {
		return fmt.Errorf("grid definition: bad earth radius %g", g.RadiusM)
	}
	return nil
}

// Projection converts (lat, lon) into continuous 1-based cell coordinates:
// cell (1,1) is the center of the first grid point.
type Projection struct {
	def GridDef

	// latitude of cell (1,1) for lat/lon grids
	lat0 float64

	// Lambert constants, precomputed at build time.
	n  float64
	f  float64
	x0 float64
	y0 float64
}

// Def returns the grid definition the projection was built from.
func (p *Projection) Def() GridDef { return p.def }

// IsLatLon reports whether the underlying grid is a lat/lon grid, which is
// the only geometry where longitudinal border wrapping applies.
func (p *Projection) IsLatLon() bool { return p.def.Kind == ProjLatLon }

// WrapsLon reports whether the grid spans a full circle of longitude, so a
// stencil crossing the east edge continues at the west edge.
func (p *Projection) WrapsLon() bool {
	return p.def.Kind == ProjLatLon &&
		math.Abs(float64(p.def.Nx)*p.def.Dx) >= 360-1e-9
}

// CellOf maps (lat°N, lon°E) to continuous 1-based (cx, cy).
func (p *Projection) CellOf(lat, lon float64) (cx, cy float64) {
	switch p.def.Kind {
	case ProjLambert:
		ρ := p.rho(lat)
		θ := p.n * toRad(normLon(lon)-normLon(p.def.OrientLon))
		x := ρ * math.Sin(θ)
		y := -ρ * math.Cos(θ)
		cx = (x-p.x0)/p.def.Dx + 1
		cy = (y-p.y0)/p.def.Dy + 1
		return
	default:
		dLon := normDelta(lon - p.def.Lon1)
		cx = dLon/p.def.Dx + 1
		cy = (lat-p.lat0)/p.def.Dy + 1
		return
	}
}

// Build constructs the projection for a validated grid definition.
func Build(def GridDef) (*Projection, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	p := &Projection{def: def}
	if def.Kind == ProjLambert {
		p.n = coneConstant(def.ScaleLat1, def.ScaleLat2)
		p.f = bigF(def.ScaleLat1, p.n)
		ρ0 := p.rho(def.Lat1)
		θ0 := p.n * toRad(normLon(def.Lon1)-normLon(def.OrientLon))
		p.x0 = ρ0 * math.Sin(θ0)
		p.y0 = -ρ0 * math.Cos(θ0)
		if def.ScanMode == 0 {
			// first stored point is the top row; drop to the south-west corner
			p.y0 -= def.Dy * float64(def.Ny-1)
		}
	} else {
		p.lat0 = def.Lat1
		if def.ScanMode == 0 {
			p.lat0 = def.Lat1 - def.Dy*float64(def.Ny-1)
		}
	}
	return p, nil
}

// rho is the Lambert cone distance from the pole for a latitude.
func (p *Projection) rho(latDeg float64) float64 {
	φ := toRad(latDeg)
	return p.def.RadiusM * p.f / math.Pow(math.Tan(math.Pi/4+φ/2), p.n)
}

func coneConstant(lat1, lat2 float64) float64 {
	if lat1 == lat2 {
		return math.Sin(toRad(lat1))
	}
	φ1 := toRad(lat1)
	φ2 := toRad(lat2)
	return math.Log(math.Cos(φ1)/math.Cos(φ2)) /
		math.Log(math.Tan(math.Pi/4+φ2/2)/math.Tan(math.Pi/4+φ1/2))
}

func bigF(lat1, n float64) float64 {
	φ1 := toRad(lat1)
	return math.Cos(φ1) * math.Pow(math.Tan(math.Pi/4+φ1/2), n) / n
}

func toRad(d float64) float64 { return d * math.Pi / 180 }

// normLon converts a 0-360 longitude to -180..+180.
func normLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// normDelta folds a longitude difference into [0, 360) so grids crossing the
// date line address cells monotonically.
func normDelta(d float64) float64 {
	for d < 0 {
		d += 360
	}
	for d >= 360 {
		d -= 360
	}
	return d
}
