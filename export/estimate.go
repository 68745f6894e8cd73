package export

import "github.com/kbukum/diagramkit/diagram"

const (
	defaultEstimateKB = 100
	estimateNote      = "Actual size may vary based on diagram complexity"
)

// Estimate is an approximate artifact size.
type Estimate struct {
	Estimated int    `json:"estimated"`
	Unit      string `json:"unit"`
	Note      string `json:"note"`
}

var baseSizesKB = map[diagram.Format]map[string]int{
	diagram.FormatSVG: {"low": 5, "medium": 15, "high": 30, "ultra": 60},
	diagram.FormatPNG: {"low": 50, "medium": 200, "high": 800, "ultra": 3000},
	diagram.FormatPDF: {"low": 20, "medium": 100, "high": 400, "ultra": 1500},
}

// EstimateSize looks up the typical size of a format and quality. Unknown
// pairs get 100 KB.
func EstimateSize(format diagram.Format, quality string) Estimate {
	kb, ok := baseSizesKB[format][quality]
	if !ok {
		kb = defaultEstimateKB
	}
	return Estimate{Estimated: kb, Unit: "KB", Note: estimateNote}
}
