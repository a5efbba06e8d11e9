package docconv

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/drag9988/Render-Backend-sub001/internal/ole2"
)

// DocumentProfile holds advisory facts gathered before the strategy chain
// runs. It feeds error classification and compression profile selection and
// never gates or reorders attempts.
type DocumentProfile struct {
	PageCount    int
	BytesPerPage int64
	HasTextLayer bool
	Encrypted    bool
	HasAcroForm  bool
	HasScripting bool
	ImageHeavy   bool
	Malformed    bool
}

const (
	// complexPageCount is the page count above which helper tools are known
	// to struggle.
	complexPageCount = 200

	// imageHeavyBytesPerPage marks documents that are mostly embedded
	// raster content, typical of scans.
	imageHeavyBytesPerPage = 150 << 10

	textLayerProbePages = 5
)

var pdfImageMarkers = [][]byte{
	[]byte("/DCTDecode"),
	[]byte("/JPXDecode"),
	[]byte("/CCITTFaxDecode"),
}

// analyzeDocument builds the preflight profile. It is best-effort: probe
// failures leave fields at their zero values rather than failing the job.
func analyzeDocument(data []byte, inputPath string, src Category) *DocumentProfile {
	p := &DocumentProfile{}

	switch src {
	case CategoryPDF:
		analyzePDF(p, data, inputPath)
	default:
		analyzeOffice(p, data)
	}
	return p
}

func analyzePDF(p *DocumentProfile, data []byte, inputPath string) {
	p.Encrypted = bytes.Contains(data, []byte("/Encrypt"))
	p.HasAcroForm = bytes.Contains(data, []byte("/AcroForm"))
	p.HasScripting = bytes.Contains(data, []byte("/JavaScript")) || bytes.Contains(data, []byte("/JS"))

	hasImages := false
	for _, m := range pdfImageMarkers {
		if bytes.Contains(data, m) {
			hasImages = true
			break
		}
	}

	if inputPath != "" {
		if n, err := api.PageCountFile(inputPath); err == nil {
			p.PageCount = n
		}
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		if err := api.ValidateFile(inputPath, conf); err != nil {
			p.Malformed = true
		}
	}

	if p.PageCount > 0 {
		p.BytesPerPage = int64(len(data)) / int64(p.PageCount)
	}
	p.ImageHeavy = hasImages && p.BytesPerPage > imageHeavyBytesPerPage

	if !p.Encrypted {
		p.HasTextLayer = pdfHasTextLayer(data, textLayerProbePages)
	}
}

func analyzeOffice(p *DocumentProfile, data []byte) {
	if !bytes.HasPrefix(data, magicOLE2) {
		return
	}
	doc, err := ole2.Inspect(bytes.NewReader(data))
	if err != nil {
		p.Malformed = true
		return
	}
	p.Encrypted = doc.Encrypted
}
