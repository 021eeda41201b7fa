package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

type ExportData struct {
	Name      string             `json:"name"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Steps     int                `json:"steps"`
	Asleep    bool               `json:"asleep"`
	Samples   []sim.Sample       `json:"samples"`
	Metrics   map[string]float64 `json:"metrics"`
	Stride    int                `json:"stride"`
	Vertices  []float32          `json:"vertices"`
	Triangles []uint32           `json:"triangles"`
}

// NewExportData collects a finished run of a width by height sheet.
func NewExportData(name string, dt, duration float64, width, height int, result *sim.Result) ExportData {
	return ExportData{
		Name:      name,
		Dt:        dt,
		Duration:  duration,
		Width:     width,
		Height:    height,
		Steps:     result.StepsTaken,
		Asleep:    result.Asleep,
		Samples:   result.Samples,
		Metrics:   result.Metrics,
		Stride:    cloth.VertexStride,
		Vertices:  result.Vertices,
		Triangles: result.Triangles,
	}
}

func WriteJSON(out io.Writer, data ExportData) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
