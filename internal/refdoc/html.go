package refdoc

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLReader 解析测序服务商常见的 HTML 校验清单（表格或 <pre> 文本）。
type HTMLReader struct{}

func (HTMLReader) Kind() string { return KindHTML }

// Pages 返回单页文本：
// - 有 <tr>：每行一条文本行，单元格文本以两个空格连接
// - 无表格：取 <body> 文本（<br> 视为换行）
func (HTMLReader) Pages(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, errors.New("html 为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	rows := doc.Find("tr")
	if rows.Length() > 0 {
		lines := make([]string, 0, rows.Length())
		rows.Each(func(_ int, tr *goquery.Selection) {
			cells := make([]string, 0, 4)
			tr.Find("th, td").Each(func(_ int, td *goquery.Selection) {
				if v := normSpace(td.Text()); v != "" {
					cells = append(cells, v)
				}
			})
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, "  "))
			}
		})
		return []string{strings.Join(lines, "\n")}, nil
	}

	doc.Find("br").ReplaceWithHtml("\n")
	text := doc.Text()
	if body := doc.Find("body"); body.Length() > 0 {
		text = body.Text()
	}
	// HTML 源码缩进会混进文本节点：逐行去掉首尾空白。
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return []string{strings.Join(lines, "\n")}, nil
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
