package reconstruct

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Verify checks that the rendered file is a structurally valid PDF with
// the expected page count.
func Verify(path string, wantPages int) error {
	if err := api.ValidateFile(path, nil); err != nil {
		return NewVerifyFailedError(path, err)
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return NewVerifyFailedError(path, err)
	}
	if wantPages > 0 && ctx.PageCount != wantPages {
		logger.Warn("rendered page count differs from source",
			logger.String("file", path),
			logger.Int("want", wantPages),
			logger.Int("got", ctx.PageCount),
		)
	}
	return nil
}
