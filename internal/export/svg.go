package export

import (
	"fmt"
	"strings"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/viz"
)

// TrajectorySVG draws the rabbit path in green, the hunter path in red and
// the final separation in blue. Untracked samples are skipped; fewer than
// two tracked samples give an empty string.
func TrajectorySVG(samples []sim.Sample, width, height int) string {
	rabbit := make([]pursuit.Point, 0, len(samples))
	hunter := make([]pursuit.Point, 0, len(samples))
	for _, s := range samples {
		if s.Tracked {
			rabbit = append(rabbit, s.Rabbit)
			hunter = append(hunter, s.Hunter)
		}
	}
	if len(rabbit) < 2 {
		return ""
	}

	b := viz.BoundsOf(rabbit, hunter)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	writePath(&sb, rabbit, b, width, height, "#00ff88")
	writePath(&sb, hunter, b, width, height, "#ff4466")

	x0, y0 := b.Map(rabbit[len(rabbit)-1], width, height)
	x1, y1 := b.Map(hunter[len(hunter)-1], width, height)
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#4488ff" stroke-width="1" stroke-dasharray="4 2"/>
`, x0, y0, x1, y1))

	sb.WriteString("</svg>")
	return sb.String()
}

func writePath(sb *strings.Builder, pts []pursuit.Point, b viz.Bounds, width, height int, stroke string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i, p := range pts {
		x, y := b.Map(p, width, height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%d,%d", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%d,%d", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}
