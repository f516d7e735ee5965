package projection

// Projector builds projections and keeps the one for the most recently seen
// grid definition, so probes walking runs of records on the same grid rebuild
// only when the definition actually changes.
type Projector struct {
	last GridDef
	proj *Projection
}

// Get returns the projection for def, reusing the cached one when the grid
// definition is identical to the previous call.
func (pc *Projector) Get(def GridDef) (*Projection, error) {
	if pc.proj != nil && def == pc.last {
		return pc.proj, nil
	}
	proj, err := Build(def)
	if err != nil {
		return nil, err
	}
	pc.last = def
	pc.proj = proj
	return proj, nil
}
