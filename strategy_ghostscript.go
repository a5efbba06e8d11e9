package docconv

import (
	"context"
	"os"
)

// ghostscriptStrategy rewrites a PDF through Ghostscript's pdfwrite device,
// downsampling images according to the selected quality profile. It is the
// strongest compressor available and runs first.
type ghostscriptStrategy struct {
	gs string
}

func newGhostscriptStrategy(gs string) *ghostscriptStrategy {
	return &ghostscriptStrategy{gs: gs}
}

func (c *ghostscriptStrategy) Name() string { return "ghostscript" }

func (c *ghostscriptStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *ghostscriptStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	bin, err := lookupTool(c.gs, ghostscriptCandidates, "gs")
	if err != nil {
		return nil, err
	}

	outPath := job.Workspace.Path("compressed-" + shortSuffix() + ".pdf")
	profile := compressionProfileFor(job.Request.Quality, job.Profile)

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/" + string(profile),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + outPath,
		job.InputPath,
	}
	if err := runCommand(ctx, bin, args...); err != nil {
		return nil, err
	}
	return os.ReadFile(outPath)
}
