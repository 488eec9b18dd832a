package extractor

import (
	"math"
	"sort"
	"strings"
)

const (
	// edgeTolerance merges ruling edges and joins touching rectangles.
	edgeTolerance = 3.0
	// ruleThickness is the widest rectangle still treated as a single line.
	ruleThickness = 2.0
	// maxRowHeight bounds the gap between stacked horizontal rules that
	// still belong to the same table.
	maxRowHeight = 60.0
)

type grid struct {
	bounds rect
	xs     []float64 // column edges, left to right
	ys     []float64 // row edges, top to bottom
}

// detectTables finds ruled tables on a page and returns their cell text,
// topmost table first. Tables ruled only horizontally get their columns from
// wide gaps in each row.
func detectTables(p page) [][][]string {
	var tables [][][]string
	for _, g := range buildGrids(p.Rects) {
		if rows := g.cells(p.Runs); len(rows) > 0 {
			tables = append(tables, rows)
		}
	}
	return tables
}

func buildGrids(rects []rect) []grid {
	var grids []grid
	for _, cluster := range clusterRects(rects) {
		g := grid{bounds: cluster[0]}
		var xs, ys []float64
		for _, r := range cluster {
			g.bounds = union(g.bounds, r)
			if r.MaxX-r.MinX <= ruleThickness {
				xs = append(xs, (r.MinX+r.MaxX)/2)
			} else {
				xs = append(xs, r.MinX, r.MaxX)
			}
			if r.MaxY-r.MinY <= ruleThickness {
				ys = append(ys, (r.MinY+r.MaxY)/2)
			} else {
				ys = append(ys, r.MinY, r.MaxY)
			}
		}

		g.xs = mergeEdges(xs)
		g.ys = mergeEdges(ys)
		for i, j := 0, len(g.ys)-1; i < j; i, j = i+1, j-1 {
			g.ys[i], g.ys[j] = g.ys[j], g.ys[i]
		}
		if len(g.ys) < 3 || len(g.xs) < 2 {
			continue
		}
		grids = append(grids, g)
	}

	sort.SliceStable(grids, func(i, j int) bool {
		return grids[i].bounds.MaxY > grids[j].bounds.MaxY
	})
	return grids
}

// clusterRects groups rectangles whose boxes touch, or horizontal rules
// stacked over the same span, using union-find.
func clusterRects(rects []rect) [][]rect {
	norm := make([]rect, 0, len(rects))
	for _, r := range rects {
		norm = append(norm, rect{
			MinX: math.Min(r.MinX, r.MaxX), MaxX: math.Max(r.MinX, r.MaxX),
			MinY: math.Min(r.MinY, r.MaxY), MaxY: math.Max(r.MinY, r.MaxY),
		})
	}

	parent := make([]int, len(norm))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := range norm {
		for j := i + 1; j < len(norm); j++ {
			if touches(norm[i], norm[j]) || stackedRules(norm[i], norm[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	groups := make(map[int][]rect)
	var order []int
	for i, r := range norm {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], r)
	}

	out := make([][]rect, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}
	return out
}

func touches(a, b rect) bool {
	return a.MinX <= b.MaxX+edgeTolerance && b.MinX <= a.MaxX+edgeTolerance &&
		a.MinY <= b.MaxY+edgeTolerance && b.MinY <= a.MaxY+edgeTolerance
}

func stackedRules(a, b rect) bool {
	if a.MaxY-a.MinY > ruleThickness || b.MaxY-b.MinY > ruleThickness {
		return false
	}
	return math.Abs(a.MinX-b.MinX) <= edgeTolerance &&
		math.Abs(a.MaxX-b.MaxX) <= edgeTolerance &&
		math.Abs(a.MinY-b.MinY) <= maxRowHeight
}

func union(a, b rect) rect {
	return rect{
		MinX: math.Min(a.MinX, b.MinX), MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX), MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

// mergeEdges sorts coordinates and collapses values closer than
// edgeTolerance into their mean.
func mergeEdges(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sort.Float64s(vals)

	var out []float64
	sum, n := vals[0], 1
	for _, v := range vals[1:] {
		if v-sum/float64(n) <= edgeTolerance {
			sum += v
			n++
			continue
		}
		out = append(out, sum/float64(n))
		sum, n = v, 1
	}
	return append(out, sum/float64(n))
}

// locate returns the interval of edges containing v, or -1. Edges must be
// ascending when asc is true and descending otherwise.
func locate(edges []float64, v float64, asc bool) int {
	for i := 0; i+1 < len(edges); i++ {
		lo, hi := edges[i], edges[i+1]
		if !asc {
			lo, hi = hi, lo
		}
		if v >= lo && v < hi {
			return i
		}
	}
	return -1
}

// cells assigns runs to grid cells and renders each cell. Empty rows and
// empty columns are dropped.
func (g grid) cells(runs []textRun) [][]string {
	nRows, nCols := len(g.ys)-1, len(g.xs)-1
	buckets := make([][][]textRun, nRows)
	for i := range buckets {
		buckets[i] = make([][]textRun, nCols)
	}

	for _, r := range runs {
		cx := r.X + r.W/2
		cy := r.Y + 0.3*r.FontSize
		col := locate(g.xs, cx, true)
		row := locate(g.ys, cy, false)
		if col < 0 || row < 0 {
			continue
		}
		buckets[row][col] = append(buckets[row][col], r)
	}

	used := make([]bool, nCols)
	var rows [][]string
	for _, bucketRow := range buckets {
		row := make([]string, nCols)
		empty := true
		for c, cellRuns := range bucketRow {
			row[c] = renderCell(cellRuns)
			if row[c] != "" {
				empty = false
				used[c] = true
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	for i, row := range rows {
		if nCols == 1 {
			rows[i] = splitColumns(row[0])
			continue
		}
		kept := make([]string, 0, nCols)
		for c, v := range row {
			if used[c] {
				kept = append(kept, collapse(v))
			}
		}
		rows[i] = kept
	}
	return rows
}

// renderCell joins the lines of a cell. Wide gaps stay as tabs so rows
// without vertical rules can still be split into columns.
func renderCell(runs []textRun) string {
	if len(runs) == 0 {
		return ""
	}
	var parts []string
	for _, l := range groupLines(runs) {
		if s := l.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitColumns recovers the columns of a row that has no vertical rules
// from the tab-separated gaps of its text.
func splitColumns(cell string) []string {
	var cols []string
	for _, part := range strings.Split(cell, "\t") {
		if part = collapse(part); part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}
