package convert

import (
	"regexp"
	"strings"

	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/schema"
)

var (
	// articlePattern 匹配条文起始行（如"第三十六条"）
	articlePattern = regexp.MustCompile(`第([零一二三四五六七八九十百千]+)条\s*(.*)$`)
	// chapterPattern 匹配章节标题行（如"第十章　劳动争议"），转换时跳过
	chapterPattern = regexp.MustCompile(`^第[零一二三四五六七八九十百千]+章\s*`)
)

// ExtractArticles 从法规全文提取条文。按行扫描：条文起始行开启新条文，
// 后续行并入当前条文正文（换行以空格替代），章节标题行跳过。
func ExtractArticles(text string) []schema.Article {
	var articles []schema.Article
	var current *schema.Article

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if chapterPattern.MatchString(line) {
			continue
		}

		match := articlePattern.FindStringSubmatch(line)
		if match != nil {
			if current != nil {
				articles = append(articles, *current)
			}
			current = &schema.Article{
				Number: "第" + match[1] + "条",
				Text:   strings.TrimSpace(match[2]),
			}
			continue
		}

		if current != nil {
			if current.Text != "" {
				current.Text += " " + line
			} else {
				current.Text = line
			}
		}
	}

	if current != nil {
		articles = append(articles, *current)
	}

	return articles
}

// ConvertText 将法规全文转换为入库文档
func ConvertText(text, documentID, title string) (*schema.LegalDocument, error) {
	if documentID == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "documentID is required")
	}
	if title == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "title is required")
	}

	articles := ExtractArticles(text)
	if len(articles) == 0 {
		return nil, errors.Newf(errors.ErrConvertFailed, "no articles extracted from text for document %s", documentID)
	}

	return &schema.LegalDocument{
		DocumentID: documentID,
		Title:      title,
		Articles:   articles,
	}, nil
}
