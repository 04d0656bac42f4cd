package convert

import (
	"context"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	document_url "github.com/cloudwego/eino-ext/components/document/loader/url"
	"github.com/cloudwego/eino-ext/components/document/parser/html"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"

	"github.com/laborguard/laborguard/core/common"
	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/schema"
)

// Converter 法规原文转换器：从本地文件或URL读取法规全文并提取条文
type Converter struct {
	fileLoader document.Loader
	urlLoader  document.Loader
}

// NewConverter 创建转换器。本地文件按扩展名选择解析器
// （.html/.pdf专用解析，其余按纯文本处理），URL统一走url loader。
func NewConverter(ctx context.Context) (*Converter, error) {
	htmlParser, err := html.NewParser(ctx, &html.Config{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrConvertFailed, err, "failed to create html parser")
	}

	pdfParser, err := pdf.NewPDFParser(ctx, &pdf.Config{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrConvertFailed, err, "failed to create pdf parser")
	}

	extParser, err := parser.NewExtParser(ctx, &parser.ExtParserConfig{
		Parsers: map[string]parser.Parser{
			".html": htmlParser,
			".htm":  htmlParser,
			".pdf":  pdfParser,
		},
		FallbackParser: parser.TextParser{},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrConvertFailed, err, "failed to create ext parser")
	}

	fldr, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: false,
		Parser:      extParser,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrConvertFailed, err, "failed to create file loader")
	}

	uldr, err := document_url.NewLoader(ctx, &document_url.LoaderConfig{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrConvertFailed, err, "failed to create url loader")
	}

	return &Converter{
		fileLoader: fldr,
		urlLoader:  uldr,
	}, nil
}

// Convert 读取法规原文并转换为入库文档
func (c *Converter) Convert(ctx context.Context, uri, documentID, title string) (*schema.LegalDocument, error) {
	text, err := c.loadText(ctx, uri)
	if err != nil {
		return nil, err
	}
	return ConvertText(text, documentID, title)
}

func (c *Converter) loadText(ctx context.Context, uri string) (string, error) {
	ldr := c.fileLoader
	if common.IsURL(uri) {
		ldr = c.urlLoader
	}

	docs, err := ldr.Load(ctx, document.Source{URI: uri})
	if err != nil {
		return "", errors.Wrap(errors.ErrDocumentRead, err, "failed to load source "+uri)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.Content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
