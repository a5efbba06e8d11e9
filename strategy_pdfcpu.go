package docconv

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfcpuOptimizeStrategy compresses in-process with pdfcpu. It deduplicates
// resources and recompresses streams without external tooling, so it works
// on hosts where Ghostscript is absent.
type pdfcpuOptimizeStrategy struct{}

func newPdfcpuOptimizeStrategy() *pdfcpuOptimizeStrategy {
	return &pdfcpuOptimizeStrategy{}
}

func (c *pdfcpuOptimizeStrategy) Name() string { return "pdfcpu-optimize" }

func (c *pdfcpuOptimizeStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *pdfcpuOptimizeStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outPath := job.Workspace.Path("optimized-" + shortSuffix() + ".pdf")
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.OptimizeFile(job.InputPath, outPath, conf); err != nil {
		return nil, fmt.Errorf("pdfcpu optimize: %w", err)
	}
	return os.ReadFile(outPath)
}

// pdfcpuEncryptStrategy applies AES-256 encryption in-process with pdfcpu,
// covering hosts without qpdf.
type pdfcpuEncryptStrategy struct{}

func newPdfcpuEncryptStrategy() *pdfcpuEncryptStrategy {
	return &pdfcpuEncryptStrategy{}
}

func (c *pdfcpuEncryptStrategy) Name() string { return "pdfcpu-encrypt" }

func (c *pdfcpuEncryptStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *pdfcpuEncryptStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outPath := job.Workspace.Path("protected-" + shortSuffix() + ".pdf")
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = job.Request.Password
	conf.OwnerPW = job.Request.Password
	conf.EncryptUsingAES = true
	conf.EncryptKeyLength = 256
	if err := api.EncryptFile(job.InputPath, outPath, conf); err != nil {
		return nil, fmt.Errorf("pdfcpu encrypt: %w", err)
	}
	return os.ReadFile(outPath)
}
