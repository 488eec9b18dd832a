package extractor

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
)

// openDocument checks that path is a document some backend can open and returns its
// page count. pdfcpu is tried first; files it rejects but the primary backend
// still reads are accepted.
func openDocument(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pricelist.ErrDocumentUnreadable, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", pricelist.ErrDocumentUnreadable, path)
	}

	n, cpuErr := pdfcpuPageCount(path)
	if cpuErr == nil {
		return n, nil
	}

	n, readErr := primaryPageCount(path)
	if readErr == nil {
		return n, nil
	}
	return 0, fmt.Errorf("%w: %w", pricelist.ErrDocumentUnreadable, errors.Join(cpuErr, readErr))
}

func pdfcpuPageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}
