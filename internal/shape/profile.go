package shape

import (
	"fmt"
	"maps"
	"math"
	"sync"
)

// ProfileKind names a contour generator.
type ProfileKind string

const (
	ProfileCustom      ProfileKind = "custom"
	ProfileAngle       ProfileKind = "angle"
	ProfilePlate       ProfileKind = "plate"
	ProfileRadiusPlate ProfileKind = "radiusPlate"
	ProfileLBeam       ProfileKind = "lBeam"
	ProfileTBeam       ProfileKind = "tBeam"
)

// Dimension keys understood by the built-in generators.
const (
	DimLength          = "length"
	DimThickness       = "thickness"
	DimRadius          = "radius"
	DimStartAngle      = "startAngle"
	DimEndAngle        = "endAngle"
	DimLeg1            = "leg1"
	DimLeg2            = "leg2"
	DimThickness1      = "thickness1"
	DimThickness2      = "thickness2"
	DimRadius1         = "radius1"
	DimRadius2         = "radius2"
	DimRadius3         = "radius3"
	DimRadius4         = "radius4"
	DimFlangeLength    = "flangeLength"
	DimFlangeThickness = "flangeThickness"
	DimStemLength      = "stemLength"
	DimStemThickness   = "stemThickness"
)

// Profile describes how a shape's contour was produced. Missing dimensions
// fall back to the kind's defaults.
type Profile struct {
	Kind       ProfileKind        `json:"kind"`
	Dimensions map[string]float64 `json:"dimensions,omitempty"`
	Clockwise  bool               `json:"clockwise,omitempty"`
}

// IsParametric reports whether the contour is derived from dimensions.
func (p Profile) IsParametric() bool {
	return p.Kind != "" && p.Kind != ProfileCustom
}

func (p Profile) clone() Profile {
	p.Dimensions = maps.Clone(p.Dimensions)
	return p
}

func (p Profile) dim(key string) float64 {
	if v, ok := p.Dimensions[key]; ok {
		return v
	}
	return defaultDimensions[p.Kind][key]
}

// Generator turns a profile into a closed contour in local coordinates.
type Generator func(p Profile) ([]PathCommand, error)

var (
	generatorsMu sync.RWMutex
	generators   = map[ProfileKind]Generator{
		ProfileAngle:       angleProfile,
		ProfilePlate:       plateProfile,
		ProfileRadiusPlate: radiusPlateProfile,
		ProfileLBeam:       lBeamProfile,
		ProfileTBeam:       tBeamProfile,
	}
)

var defaultDimensions = map[ProfileKind]map[string]float64{
	ProfileAngle: {DimLength: 100, DimThickness: 10},
	ProfilePlate: {DimLength: 100, DimThickness: 6.35},
	ProfileRadiusPlate: {
		DimRadius: 100, DimThickness: 6.35,
		DimStartAngle: 180, DimEndAngle: 270,
	},
	ProfileLBeam: {
		DimLeg1: 100, DimLeg2: 100,
		DimThickness1: 6.35, DimThickness2: 6.35,
		DimRadius1: 5, DimRadius2: 5, DimRadius3: 5, DimRadius4: 5,
	},
	ProfileTBeam: {
		DimFlangeLength: 100, DimFlangeThickness: 6.35,
		DimStemLength: 100, DimStemThickness: 6.35,
	},
}

// DefaultProfile returns kind with its default dimensions filled in.
func DefaultProfile(kind ProfileKind) Profile {
	return Profile{Kind: kind, Dimensions: maps.Clone(defaultDimensions[kind])}
}

// RegisterProfile installs or replaces the generator for kind.
// It panics if gen is nil or kind is empty or custom.
func RegisterProfile(kind ProfileKind, gen Generator) {
	if gen == nil {
		panic("shape: RegisterProfile with nil generator")
	}
	if kind == "" || kind == ProfileCustom {
		panic(fmt.Sprintf("shape: cannot register generator for %q", kind))
	}
	generatorsMu.Lock()
	defer generatorsMu.Unlock()
	generators[kind] = gen
}

// Generate builds the contour for a parametric profile.
func Generate(p Profile) ([]PathCommand, error) {
	generatorsMu.RLock()
	gen, ok := generators[p.Kind]
	generatorsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, p.Kind)
	}
	cmds, err := gen(p)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", p.Kind, err)
	}
	return cmds, nil
}

// MustGenerate is like Generate but panics on error.
func MustGenerate(p Profile) []PathCommand {
	cmds, err := Generate(p)
	if err != nil {
		panic(err)
	}
	return cmds
}

func positive(p Profile, keys ...string) error {
	for _, k := range keys {
		v := p.dim(k)
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidProfile, k, v)
		}
	}
	return nil
}

func nonNegative(p Profile, keys ...string) error {
	for _, k := range keys {
		v := p.dim(k)
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidProfile, k, v)
		}
	}
	return nil
}

func thinner(p Profile, thickness, length string) error {
	if p.dim(thickness) >= p.dim(length) {
		return fmt.Errorf("%w: %s must be less than %s", ErrInvalidProfile, thickness, length)
	}
	return nil
}

func polygon(pts ...[2]float64) []PathCommand {
	cmds := make([]PathCommand, 0, len(pts)+1)
	cmds = append(cmds, MoveTo(pts[0][0], pts[0][1]))
	for _, p := range pts[1:] {
		cmds = append(cmds, LineTo(p[0], p[1]))
	}
	return append(cmds, Close())
}

// angleProfile is an equal-leg angle with square corners, the default shape.
func angleProfile(p Profile) ([]PathCommand, error) {
	if err := positive(p, DimLength, DimThickness); err != nil {
		return nil, err
	}
	if err := thinner(p, DimThickness, DimLength); err != nil {
		return nil, err
	}
	l, t := p.dim(DimLength), p.dim(DimThickness)
	return polygon(
		[2]float64{0, 0}, [2]float64{l, 0}, [2]float64{l, t},
		[2]float64{t, t}, [2]float64{t, l}, [2]float64{0, l},
	), nil
}

// plateProfile is a length x thickness rectangle centred on the origin.
func plateProfile(p Profile) ([]PathCommand, error) {
	if err := positive(p, DimLength, DimThickness); err != nil {
		return nil, err
	}
	hl, ht := p.dim(DimLength)/2, p.dim(DimThickness)/2
	return polygon(
		[2]float64{-hl, -ht}, [2]float64{hl, -ht},
		[2]float64{hl, ht}, [2]float64{-hl, ht},
	), nil
}

// radiusPlateProfile is a bent plate: an annular sector with inner radius
// radius and outer radius radius+thickness, centred on the origin.
func radiusPlateProfile(p Profile) ([]PathCommand, error) {
	if err := positive(p, DimRadius, DimThickness); err != nil {
		return nil, err
	}
	r, t := p.dim(DimRadius), p.dim(DimThickness)
	start, end := p.dim(DimStartAngle), p.dim(DimEndAngle)
	if start == end {
		return nil, fmt.Errorf("%w: start and end angle are equal", ErrInvalidProfile)
	}
	return []PathCommand{
		ArcTo(0, 0, r+t, start, end, p.Clockwise),
		ArcTo(0, 0, r, end, start, !p.Clockwise),
		Close(),
	}, nil
}

// lBeamProfile is an angle with a root fillet (radius3), toe fillets
// (radius2, radius4) and a rounded heel (radius1). A zero radius gives a
// sharp corner.
func lBeamProfile(p Profile) ([]PathCommand, error) {
	if err := positive(p, DimLeg1, DimLeg2, DimThickness1, DimThickness2); err != nil {
		return nil, err
	}
	if err := nonNegative(p, DimRadius1, DimRadius2, DimRadius3, DimRadius4); err != nil {
		return nil, err
	}
	if err := thinner(p, DimThickness1, DimLeg2); err != nil {
		return nil, err
	}
	if err := thinner(p, DimThickness2, DimLeg1); err != nil {
		return nil, err
	}
	l1, l2 := p.dim(DimLeg1), p.dim(DimLeg2)
	t1, t2 := p.dim(DimThickness1), p.dim(DimThickness2)
	r1, r2, r3, r4 := p.dim(DimRadius1), p.dim(DimRadius2), p.dim(DimRadius3), p.dim(DimRadius4)

	return []PathCommand{
		ArcTo(r1, r1, r1, 180, 270, false),
		LineTo(l1, 0),
		ArcTo(l1-r2, t1-r2, r2, 0, 90, false),
		ArcTo(t2+r3, t1+r3, r3, 270, 180, true),
		ArcTo(t2-r4, l2-r4, r4, 0, 90, false),
		LineTo(0, l2),
		Close(),
	}, nil
}

// tBeamProfile is a stem of stemLength standing on the x axis with a flange
// across its far end. The left edge of the flange sits on x = 0.
func tBeamProfile(p Profile) ([]PathCommand, error) {
	if err := positive(p, DimFlangeLength, DimFlangeThickness, DimStemLength, DimStemThickness); err != nil {
		return nil, err
	}
	if err := thinner(p, DimStemThickness, DimFlangeLength); err != nil {
		return nil, err
	}
	fl, ft := p.dim(DimFlangeLength), p.dim(DimFlangeThickness)
	sl, st := p.dim(DimStemLength), p.dim(DimStemThickness)
	cx := fl / 2
	return polygon(
		[2]float64{cx - st/2, 0}, [2]float64{cx + st/2, 0},
		[2]float64{cx + st/2, sl}, [2]float64{cx + fl/2, sl},
		[2]float64{cx + fl/2, sl + ft}, [2]float64{cx - fl/2, sl + ft},
		[2]float64{cx - fl/2, sl}, [2]float64{cx - st/2, sl},
	), nil
}
