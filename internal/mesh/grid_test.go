package mesh

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBuildRejectsSmallGrids(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero", 0, 0},
		{"single column", 1, 4},
		{"single row", 4, 1},
		{"negative", -3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(GridSpec{Width: tt.w, Height: tt.h})
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("expected ErrInvalidGrid, got %v", err)
			}
		})
	}
}

func TestSpringCounts(t *testing.T) {
	tests := []struct {
		w, h                    int
		structural, shear, bend int
	}{
		{2, 2, 4, 2, 0},
		{4, 4, 24, 18, 16},
		{5, 3, 22, 16, 14},
	}

	for _, tt := range tests {
		g, err := Build(GridSpec{Width: tt.w, Height: tt.h})
		if err != nil {
			t.Fatalf("build %dx%d: %v", tt.w, tt.h, err)
		}
		if n := g.CountKind(Structural); n != tt.structural {
			t.Errorf("%dx%d: expected %d structural, got %d", tt.w, tt.h, tt.structural, n)
		}
		if n := g.CountKind(Shear); n != tt.shear {
			t.Errorf("%dx%d: expected %d shear, got %d", tt.w, tt.h, tt.shear, n)
		}
		if n := g.CountKind(Bend); n != tt.bend {
			t.Errorf("%dx%d: expected %d bend, got %d", tt.w, tt.h, tt.bend, n)
		}
		if len(g.Triangles) != (tt.w-1)*(tt.h-1)*6 {
			t.Errorf("%dx%d: unexpected triangle index count %d", tt.w, tt.h, len(g.Triangles))
		}
	}
}

func TestPositionsAndUVs(t *testing.T) {
	g, err := Build(GridSpec{Width: 3, Height: 3, Scale: 2, Aspect: 1.5})
	if err != nil {
		t.Fatal(err)
	}

	if g.PointCount() != 9 || len(g.Positions) != 9 || len(g.UVs) != 9 {
		t.Fatalf("unexpected point count")
	}

	bl := g.Positions[g.BottomLeft()]
	tr := g.Positions[g.TopRight()]
	if bl != (r3.Vec{X: -3, Y: -2}) {
		t.Errorf("bottom-left: got %v", bl)
	}
	if tr != (r3.Vec{X: 3, Y: 2}) {
		t.Errorf("top-right: got %v", tr)
	}
	if g.UVs[g.TopLeft()] != [2]float64{0, 1} {
		t.Errorf("top-left uv: got %v", g.UVs[g.TopLeft()])
	}
	if g.UVs[g.BottomRight()] != [2]float64{1, 0} {
		t.Errorf("bottom-right uv: got %v", g.UVs[g.BottomRight()])
	}
	for _, uv := range g.UVs {
		if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
			t.Errorf("uv out of range: %v", uv)
		}
	}
}

func TestRestLengthsMatchGeometry(t *testing.T) {
	g, err := Build(GridSpec{Width: 6, Height: 6})
	if err != nil {
		t.Fatal(err)
	}
	spacing := 2.0 / 5.0
	want := map[SpringKind]float64{
		Structural: spacing,
		Shear:      spacing * math.Sqrt2,
		Bend:       spacing * 2,
	}

	for _, s := range g.Springs {
		got := r3.Norm(r3.Sub(g.Positions[s.B], g.Positions[s.A]))
		if math.Abs(got-s.Rest) > 1e-12 {
			t.Errorf("%s spring %d-%d: length %f, rest %f", s.Kind, s.A, s.B, got, s.Rest)
		}
		if math.Abs(s.Rest-want[s.Kind]) > 1e-12 {
			t.Errorf("%s spring: rest %f, expected %f", s.Kind, s.Rest, want[s.Kind])
		}
	}
}

func TestTensionScalesRest(t *testing.T) {
	g, err := Build(GridSpec{Width: 3, Height: 3, Tension: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range g.Springs {
		length := r3.Norm(r3.Sub(g.Positions[s.B], g.Positions[s.A]))
		if math.Abs(s.Rest-0.5*length) > 1e-12 {
			t.Errorf("expected rest %f, got %f", 0.5*length, s.Rest)
		}
	}
}

func TestTriangleWindingIsConsistent(t *testing.T) {
	g, err := Build(GridSpec{Width: 4, Height: 5})
	if err != nil {
		t.Fatal(err)
	}
	for k := 0; k < len(g.Triangles); k += 3 {
		p0 := g.Positions[g.Triangles[k]]
		p1 := g.Positions[g.Triangles[k+1]]
		p2 := g.Positions[g.Triangles[k+2]]
		n := r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p1))
		if n.Z <= 0 {
			t.Errorf("triangle %d faces away: normal %v", k/3, n)
		}
	}
}

func TestRowsAndColumns(t *testing.T) {
	g, err := Build(GridSpec{Width: 4, Height: 3})
	if err != nil {
		t.Fatal(err)
	}
	top := g.Row(2)
	if top[0] != g.TopLeft() || top[3] != g.TopRight() {
		t.Errorf("top row: got %v", top)
	}
	left := g.Column(0)
	if left[0] != g.BottomLeft() || left[2] != g.TopLeft() {
		t.Errorf("left column: got %v", left)
	}
	if Bend.String() != "bend" || SpringKind(9).String() != "unknown" {
		t.Error("unexpected kind names")
	}
}
