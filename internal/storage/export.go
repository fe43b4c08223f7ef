package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/hydrosim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times  []float64            `json:"times"`
	Series map[string][]float64 `json:"series"`
}

func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       result.Times,
		Series:      result.Series,
	}
	if data.Metrics == nil {
		data.Metrics = result.Metrics
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
