package export

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes an interleaved vertex buffer (position, normal, uv) and
// its triangle list as a Wavefront OBJ mesh.
func WriteOBJ(out io.Writer, name string, vertices []float32, stride int, tris []uint32) error {
	if stride < 8 {
		return fmt.Errorf("export: stride %d too small for position, normal and uv", stride)
	}
	if len(vertices)%stride != 0 {
		return fmt.Errorf("export: %d floats is not a multiple of stride %d", len(vertices), stride)
	}
	if len(tris)%3 != 0 {
		return fmt.Errorf("export: %d indices do not form triangles", len(tris))
	}
	n := len(vertices) / stride
	for _, i := range tris {
		if int(i) >= n {
			return fmt.Errorf("export: index %d out of range for %d vertices", i, n)
		}
	}

	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "# %d vertices, %d triangles\n", n, len(tris)/3)
	if name != "" {
		fmt.Fprintf(w, "o %s\n", name)
	}
	for i := 0; i < n; i++ {
		v := vertices[i*stride:]
		fmt.Fprintf(w, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for i := 0; i < n; i++ {
		v := vertices[i*stride:]
		fmt.Fprintf(w, "vn %g %g %g\n", v[3], v[4], v[5])
	}
	for i := 0; i < n; i++ {
		v := vertices[i*stride:]
		fmt.Fprintf(w, "vt %g %g\n", v[6], v[7])
	}
	for i := 0; i < len(tris); i += 3 {
		a, b, c := tris[i]+1, tris[i+1]+1, tris[i+2]+1
		fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return w.Flush()
}
