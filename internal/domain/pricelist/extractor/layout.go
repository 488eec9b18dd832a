package extractor

import (
	"math"
	"sort"
	"strings"
)

// textRun is a positioned fragment of page text as reported by a backend.
// Coordinates are PDF user space: Y grows upwards.
type textRun struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// rect is an axis-aligned ruling rectangle or line segment.
type rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// page is the backend-independent view of one PDF page.
type page struct {
	Number int
	Runs   []textRun
	Rects  []rect
}

// textLine is a group of runs sharing a baseline.
type textLine struct {
	Y    float64
	Runs []textRun
}

const (
	minBaselineTolerance = 2.0
	spaceGapFactor       = 0.2
	columnGapFactor      = 1.2
)

func baselineTolerance(fontSize float64) float64 {
	return math.Max(minBaselineTolerance, 0.3*fontSize)
}

// groupLines clusters runs by baseline and returns lines from the top of the
// page down, each ordered left to right.
func groupLines(runs []textRun) []textLine {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]textRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var lines []textLine
	for _, r := range sorted {
		if n := len(lines); n > 0 && math.Abs(lines[n-1].Y-r.Y) <= baselineTolerance(r.FontSize) {
			lines[n-1].Runs = append(lines[n-1].Runs, r)
			continue
		}
		lines = append(lines, textLine{Y: r.Y, Runs: []textRun{r}})
	}

	for i := range lines {
		sort.SliceStable(lines[i].Runs, func(a, b int) bool {
			return lines[i].Runs[a].X < lines[i].Runs[b].X
		})
	}
	return lines
}

// String joins the runs of a line. Small gaps become a space and gaps wider
// than about two characters become a tab, which keeps column boundaries
// visible to the line parser and the delimited pattern.
func (l textLine) String() string {
	var b strings.Builder
	for i, r := range l.Runs {
		if i > 0 {
			prev := l.Runs[i-1]
			gap := r.X - (prev.X + prev.W)
			size := math.Max(math.Max(prev.FontSize, r.FontSize), 1)
			switch {
			case gap > columnGapFactor*size:
				b.WriteByte('\t')
			case gap > spaceGapFactor*size && !endsWithSpace(&b) && !strings.HasPrefix(r.S, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(r.S)
	}
	return strings.TrimSpace(b.String())
}

func endsWithSpace(b *strings.Builder) bool {
	s := b.String()
	return s != "" && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t')
}

// pageLines renders a page as text lines, top to bottom.
func pageLines(p page) []string {
	lines := groupLines(p.Runs)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := l.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
