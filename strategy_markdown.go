package docconv

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// sofficeHTMLStrategy converts through LibreOffice's HTML export and then
// turns the HTML into Markdown. It preserves more structure than native
// extraction for inputs the engine understands well.
type sofficeHTMLStrategy struct {
	soffice string
}

func newSofficeHTMLStrategy(soffice string) *sofficeHTMLStrategy {
	return &sofficeHTMLStrategy{soffice: soffice}
}

func (c *sofficeHTMLStrategy) Name() string { return "soffice-html" }

func (c *sofficeHTMLStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *sofficeHTMLStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	hs := newSofficeStrategy(c.soffice, c.Name(), "html", "", ".html")

	htmlBytes, err := hs.Attempt(ctx, job)
	if err != nil {
		return nil, err
	}

	htmlStr := decodeWithDetection(htmlBytes)
	title := extractHTMLTitle(htmlStr)

	md, err := htmlToMarkdown(htmlStr)
	if err != nil {
		return nil, err
	}

	md = normalizeMarkdown(md)
	if md == "" {
		return nil, fmt.Errorf("no convertible content")
	}
	if title != "" && !strings.HasPrefix(md, "#") {
		md = "# " + title + "\n\n" + md
	}
	return []byte(md), nil
}

// nativeExtractStrategy produces Markdown with the in-process extractors,
// needing no external tooling at all.
type nativeExtractStrategy struct{}

func newNativeExtractStrategy() *nativeExtractStrategy {
	return &nativeExtractStrategy{}
}

func (c *nativeExtractStrategy) Name() string { return "native-extract" }

func (c *nativeExtractStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *nativeExtractStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	md, err := c.extract(job.Request)
	if err != nil {
		return nil, err
	}

	md = normalizeMarkdown(md)
	if md == "" {
		return nil, fmt.Errorf("no extractable content")
	}
	return []byte(md), nil
}

func (c *nativeExtractStrategy) extract(req *Request) (string, error) {
	data := req.Data

	switch req.Source {
	case CategoryPDF:
		return extractPDFText(data)

	case CategoryWord:
		if blocks, err := extractDocxBlocks(data); err == nil && len(blocks) > 0 {
			return docxToMarkdown(blocks), nil
		}
		if text := harvestLegacyStream(data, "WordDocument"); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("no extractable content")

	case CategoryExcel:
		tables, err := extractSheetTables(data)
		if err != nil {
			return "", err
		}
		return sheetsToMarkdown(tables), nil

	case CategoryPowerPoint:
		if md, err := extractPptxMarkdown(data); err == nil && md != "" {
			return md, nil
		}
		if text := harvestLegacyStream(data, "PowerPoint Document"); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("no extractable content")
	}
	return "", fmt.Errorf("no extractor for source %q", req.Source)
}

// htmlToMarkdown strips active content, converts HTML to Markdown and
// truncates inlined base64 payloads.
func htmlToMarkdown(htmlStr string) (string, error) {
	htmlStr = removeScriptAndStyle(htmlStr)

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)

	md, err := conv.ConvertString(htmlStr)
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return truncateDataURIs(md), nil
}

var (
	reScript  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	reDataURI = regexp.MustCompile(`(data:[a-zA-Z0-9/+.-]+;base64,)[A-Za-z0-9+/=]{64,}`)
)

// removeScriptAndStyle removes <script> and <style> tags and their content.
func removeScriptAndStyle(htmlStr string) string {
	htmlStr = reScript.ReplaceAllString(htmlStr, "")
	htmlStr = reStyle.ReplaceAllString(htmlStr, "")
	return htmlStr
}

// truncateDataURIs truncates large base64 data URIs to data:mime/type;base64...
func truncateDataURIs(md string) string {
	return reDataURI.ReplaceAllString(md, "${1}...")
}

// extractHTMLTitle extracts the title from an HTML document.
func extractHTMLTitle(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
			if title != "" {
				return
			}
		}
	}
	findTitle(doc)

	return strings.TrimSpace(title)
}
