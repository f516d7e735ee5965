package projection

import (
	"math"
	"testing"
)

func latLonDef() GridDef {
	return GridDef{
		Kind: ProjLatLon,
		Nx:   3, Ny: 2,
		Lat1: 0, Lon1: 0,
		Dx: 1, Dy: 0.5,
		ScanMode: 64,
	}
}

// hrrrDef returns the HRRR CONUS Lambert conformal constants.
func hrrrDef() GridDef {
	return GridDef{
		Kind: ProjLambert,
		Nx:   1799, Ny: 1059,
		Lat1: 21.138123, Lon1: 237.280472,
		OrientLon: 262.5,
		ScaleLat1: 38.5, ScaleLat2: 38.5,
		Dx: 3000, Dy: 3000,
		RadiusM:  6371229,
		ScanMode: 64,
	}
}

func TestLatLonCellOf(t *testing.T) {
	p, err := Build(latLonDef())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		lat, lon float64
		cx, cy   float64
	}{
		{0, 0, 1, 1},       // first grid point is cell (1,1)
		{0.5, 1.5, 2.5, 2}, // interior
		{1, 2, 3, 3},       // northeast corner cell center is (Nx, beyond Ny)
		{0, -1, 360, 1},    // west of origin folds around the circle
	}
	for _, tc := range tests {
		cx, cy := p.CellOf(tc.lat, tc.lon)
		if math.Abs(cx-tc.cx) > 1e-9 || math.Abs(cy-tc.cy) > 1e-9 {
			t.Errorf("CellOf(%v, %v) = (%v, %v), want (%v, %v)", tc.lat, tc.lon, cx, cy, tc.cx, tc.cy)
		}
	}
}

func TestLambertOriginIsFirstCell(t *testing.T) {
	def := hrrrDef()
	p, err := Build(def)
	if err != nil {
		t.Fatal(err)
	}

	cx, cy := p.CellOf(def.Lat1, def.Lon1)
	if math.Abs(cx-1) > 1e-6 || math.Abs(cy-1) > 1e-6 {
		t.Errorf("CellOf(La1, Lo1) = (%v, %v), want (1, 1)", cx, cy)
	}
}

func TestLambertMonotonic(t *testing.T) {
	p, err := Build(hrrrDef())
	if err != nil {
		t.Fatal(err)
	}

	// Moving north near grid center increases cy; moving east increases cx.
	cx0, cy0 := p.CellOf(38.5, -97.5)
	cx1, cy1 := p.CellOf(39.5, -97.5)
	cx2, _ := p.CellOf(38.5, -96.5)

	if cy1 <= cy0 {
		t.Errorf("cy did not increase northward: %v -> %v", cy0, cy1)
	}
	if math.Abs(cx1-cx0) > 1 {
		t.Errorf("cx moved %v cells on a due-north step along the central meridian", cx1-cx0)
	}
	if cx2 <= cx0 {
		t.Errorf("cx did not increase eastward: %v -> %v", cx0, cx2)
	}
}

func TestScanZeroOriginIsSouthWest(t *testing.T) {
	def := latLonDef()
	def.ScanMode = 0
	def.Lat1 = 0.5 // first stored point is the north-west corner
	p, err := Build(def)
	if err != nil {
		t.Fatal(err)
	}
	cx, cy := p.CellOf(0, 0)
	if math.Abs(cx-1) > 1e-9 || math.Abs(cy-1) > 1e-9 {
		t.Errorf("south-west corner = (%v, %v), want (1, 1)", cx, cy)
	}

	lam := hrrrDef()
	lam.ScanMode = 0
	lp, err := Build(lam)
	if err != nil {
		t.Fatal(err)
	}
	_, cy = lp.CellOf(lam.Lat1, lam.Lon1)
	if math.Abs(cy-float64(lam.Ny)) > 1e-6 {
		t.Errorf("first stored point cy = %v, want %v (top row)", cy, lam.Ny)
	}
}

func TestWrapsLon(t *testing.T) {
	global := GridDef{Kind: ProjLatLon, Nx: 360, Ny: 181, Lat1: -90, Lon1: 0, Dx: 1, Dy: 1, ScanMode: 64}
	p, err := Build(global)
	if err != nil {
		t.Fatal(err)
	}
	if !p.WrapsLon() {
		t.Error("global 1-degree grid should wrap")
	}

	regional, err := Build(latLonDef())
	if err != nil {
		t.Fatal(err)
	}
	if regional.WrapsLon() {
		t.Error("3-column regional grid must not wrap")
	}

	lambert, err := Build(hrrrDef())
	if err != nil {
		t.Fatal(err)
	}
	if lambert.WrapsLon() {
		t.Error("Lambert grids never wrap")
	}
}

func TestValidate(t *testing.T) {
	bad := latLonDef()
	bad.Nx = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero Nx must fail validation")
	}

	bad = latLonDef()
	bad.Dx = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero spacing must fail validation")
	}

	bad = latLonDef()
	bad.ScanMode = 32
	if err := bad.Validate(); err == nil {
		t.Error("scan mode 32 must fail validation")
	}

	bad = hrrrDef()
	bad.RadiusM = 0
	if err := bad.Validate(); err == nil {
		t.Error("Lambert with no earth radius must fail validation")
	}
}

func TestProjectorCache(t *testing.T) {
	var pc Projector

	def := latLonDef()
	p1, err := pc.Get(def)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := pc.Get(def)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Error("identical grid definition must reuse the cached projection")
	}

	def.Dx = 2
	p3, err := pc.Get(def)
	if err != nil {
		t.Fatal(err)
	}
	if p3 == p1 {
		t.Error("changed grid definition must rebuild")
	}
}
