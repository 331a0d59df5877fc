package shape

import (
	"errors"
	"math"
	"testing"
)

func TestProfileAreas(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    float64
		tol     float64
	}{
		{"angle default", DefaultProfile(ProfileAngle), 1900, 1e-9},
		{"plate default", DefaultProfile(ProfilePlate), 635, 1e-9},
		{"tbeam default", DefaultProfile(ProfileTBeam), 1270, 1e-9},
		{
			"lbeam sharp corners",
			Profile{Kind: ProfileLBeam, Dimensions: map[string]float64{
				DimThickness1: 10, DimThickness2: 10,
				DimRadius1: 0, DimRadius2: 0, DimRadius3: 0, DimRadius4: 0,
			}},
			1900, 1e-9,
		},
		{
			"radius plate quarter",
			Profile{Kind: ProfileRadiusPlate, Dimensions: map[string]float64{DimThickness: 10}},
			0.5 * (110*110 - 100*100) * math.Pi / 2, 2,
		},
		{
			"radius plate clockwise takes the long way",
			Profile{Kind: ProfileRadiusPlate, Clockwise: true, Dimensions: map[string]float64{DimThickness: 10}},
			0.5 * (110*110 - 100*100) * 3 * math.Pi / 2, 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(1)
			if err := s.SetProfile(tt.profile); err != nil {
				t.Fatalf("SetProfile: %v", err)
			}
			if !s.IsClosed() {
				t.Fatal("generated contour is open")
			}
			got, err := s.Area()
			if err != nil {
				t.Fatalf("Area: %v", err)
			}
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Area = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLBeamFilletsReduceArea(t *testing.T) {
	sharp := New(1)
	sharp.SetProfile(Profile{Kind: ProfileLBeam, Dimensions: map[string]float64{
		DimRadius1: 0, DimRadius2: 0, DimRadius3: 0, DimRadius4: 0,
	}})
	rounded := New(2)
	rounded.SetProfile(Profile{Kind: ProfileLBeam, Dimensions: map[string]float64{
		DimRadius1: 5, DimRadius2: 5, DimRadius3: 0, DimRadius4: 5,
	}})
	a, _ := sharp.Area()
	b, _ := rounded.Area()
	if b >= a {
		t.Errorf("rounded area %v should be below sharp area %v", b, a)
	}
}

func TestTBeamStartsAtOrigin(t *testing.T) {
	s := New(1)
	if err := s.SetProfile(DefaultProfile(ProfileTBeam)); err != nil {
		t.Fatal(err)
	}
	b, _ := s.Bounds()
	if b.X != 0 || b.Y != 0 || b.Width != 100 || math.Abs(b.Height-106.35) > 1e-9 {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestProfileErrors(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    error
	}{
		{"unknown kind", Profile{Kind: "zBeam"}, ErrUnknownProfile},
		{"custom kind", Profile{Kind: ProfileCustom}, ErrUnknownProfile},
		{"negative length", Profile{Kind: ProfilePlate, Dimensions: map[string]float64{DimLength: -1}}, ErrInvalidProfile},
		{"angle too thick", Profile{Kind: ProfileAngle, Dimensions: map[string]float64{DimThickness: 100}}, ErrInvalidProfile},
		{"negative fillet", Profile{Kind: ProfileLBeam, Dimensions: map[string]float64{DimRadius3: -2}}, ErrInvalidProfile},
		{"zero sweep", Profile{Kind: ProfileRadiusPlate, Dimensions: map[string]float64{DimEndAngle: 180}}, ErrInvalidProfile},
		{"nan thickness", Profile{Kind: ProfileTBeam, Dimensions: map[string]float64{DimStemThickness: math.NaN()}}, ErrInvalidProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.profile); !errors.Is(err, tt.want) {
				t.Errorf("Generate err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetProfileFailureKeepsShape(t *testing.T) {
	s := square(1, 10)
	before := s.Commands()
	if err := s.SetProfile(Profile{Kind: ProfilePlate, Dimensions: map[string]float64{DimLength: 0}}); err == nil {
		t.Fatal("expected error")
	}
	if len(s.Commands()) != len(before) || s.Profile().Kind != ProfileCustom {
		t.Error("failed SetProfile modified the shape")
	}
}

func TestHandEditMakesProfileCustom(t *testing.T) {
	s := New(1)
	s.SetProfile(DefaultProfile(ProfilePlate))
	if !s.Profile().IsParametric() {
		t.Fatal("plate profile should be parametric")
	}
	s.Append(LineTo(0, 0))
	if s.Profile().IsParametric() {
		t.Error("hand-edited shape should be custom")
	}
}

func TestRegenerateRestoresContour(t *testing.T) {
	s := New(1)
	s.SetProfile(DefaultProfile(ProfileAngle))
	rec := s.Serialize()
	rec.Commands = rec.Commands[:2]

	got, err := Deserialize(rec)
	if err != nil {
		t.Fatal(err)
	}
	if err := got.Regenerate(); err != nil {
		t.Fatal(err)
	}
	if got.Len() != s.Len() {
		t.Errorf("Len = %d, want %d", got.Len(), s.Len())
	}
}

func TestMustGeneratePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustGenerate did not panic")
		}
	}()
	MustGenerate(Profile{Kind: "nope"})
}

func TestRegisterProfile(t *testing.T) {
	t.Run("nil generator panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("RegisterProfile(nil) did not panic")
			}
		}()
		RegisterProfile("triangle", nil)
	})

	RegisterProfile("triangle", func(p Profile) ([]PathCommand, error) {
		return polygon([2]float64{0, 0}, [2]float64{4, 0}, [2]float64{0, 3}), nil
	})
	s := New(1)
	if err := s.SetProfile(Profile{Kind: "triangle"}); err != nil {
		t.Fatal(err)
	}
	if a, _ := s.Area(); math.Abs(a-6) > 1e-9 {
		t.Errorf("Area = %v, want 6", a)
	}
}
