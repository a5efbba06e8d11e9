package docconv

import (
	"context"
	"os"
)

// qpdfCompressStrategy restructures a PDF with qpdf. It never touches image
// data, so it shrinks less than Ghostscript but cannot degrade anything,
// which makes it the right last resort for compression.
type qpdfCompressStrategy struct {
	qpdf string
}

func newQpdfCompressStrategy(qpdf string) *qpdfCompressStrategy {
	return &qpdfCompressStrategy{qpdf: qpdf}
}

func (c *qpdfCompressStrategy) Name() string { return "qpdf-recompress" }

func (c *qpdfCompressStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *qpdfCompressStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	bin, err := lookupTool(c.qpdf, qpdfCandidates, "qpdf")
	if err != nil {
		return nil, err
	}

	outPath := job.Workspace.Path("recompressed-" + shortSuffix() + ".pdf")
	args := []string{
		"--recompress-flate",
		"--compression-level=9",
		"--object-streams=generate",
		job.InputPath,
		outPath,
	}
	if err := runCommand(ctx, bin, args...); err != nil {
		return nil, err
	}
	return os.ReadFile(outPath)
}

// qpdfEncryptStrategy applies AES-256 encryption with qpdf. The same
// password acts as both user and owner password.
type qpdfEncryptStrategy struct {
	qpdf string
}

func newQpdfEncryptStrategy(qpdf string) *qpdfEncryptStrategy {
	return &qpdfEncryptStrategy{qpdf: qpdf}
}

func (c *qpdfEncryptStrategy) Name() string { return "qpdf-encrypt" }

func (c *qpdfEncryptStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *qpdfEncryptStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	bin, err := lookupTool(c.qpdf, qpdfCandidates, "qpdf")
	if err != nil {
		return nil, err
	}

	outPath := job.Workspace.Path("protected-" + shortSuffix() + ".pdf")
	pw := job.Request.Password
	args := []string{
		"--encrypt", pw, pw, "256", "--",
		job.InputPath,
		outPath,
	}
	if err := runCommand(ctx, bin, args...); err != nil {
		return nil, err
	}
	return os.ReadFile(outPath)
}
