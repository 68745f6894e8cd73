package renderer

import (
	"strconv"

	"github.com/kbukum/diagramkit/diagram"
)

// BuildArgs returns the engine arguments for job. The order is fixed so
// identical jobs produce identical command lines.
func BuildArgs(job Job) []string {
	p := job.Params
	args := []string{"-i", job.Input, "-o", job.Output}
	if p.Theme != "" && p.Theme != diagram.ThemeDefault {
		args = append(args, "-t", string(p.Theme))
	}
	if p.Width > 0 {
		args = append(args, "-w", strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		args = append(args, "-H", strconv.Itoa(p.Height))
	}
	if p.Scale > 0 && p.Scale != 1 {
		args = append(args, "-s", strconv.FormatFloat(p.Scale, 'f', -1, 64))
	}
	if p.Format == diagram.FormatPNG {
		args = append(args, "-b", "white")
	}
	return args
}
