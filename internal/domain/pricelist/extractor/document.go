package extractor

import (
	"context"
	"fmt"
	"os"

	dpdf "github.com/dslipak/pdf"
	lpdf "github.com/ledongthuc/pdf"
)

// pageFunc receives pages in document order. Returning an error stops the walk.
type pageFunc func(p page) error

// walkPrimary reads every page through the primary backend, which reports
// both text runs and ruling rectangles.
func walkPrimary(ctx context.Context, path string, fn pageFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat document: %w", err)
	}

	r, err := lpdf.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		content := p.Content()
		pg := page{Number: i}
		for _, t := range content.Text {
			pg.Runs = append(pg.Runs, textRun{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
		}
		for _, rc := range content.Rect {
			pg.Rects = append(pg.Rects, rect{MinX: rc.Min.X, MinY: rc.Min.Y, MaxX: rc.Max.X, MaxY: rc.Max.Y})
		}
		if err := fn(pg); err != nil {
			return err
		}
	}
	return nil
}

// walkSecondary reads page text through the secondary backend. It copes with
// some content streams the primary backend rejects; rectangles are not used.
func walkSecondary(ctx context.Context, path string, fn pageFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat document: %w", err)
	}

	r, err := dpdf.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		pg := page{Number: i}
		for _, t := range p.Content().Text {
			pg.Runs = append(pg.Runs, textRun{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
		}
		if err := fn(pg); err != nil {
			return err
		}
	}
	return nil
}

// primaryPageCount opens the document with the primary backend only to count
// its pages. Backend panics on malformed input are returned as errors.
func primaryPageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := lpdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}
