package refdoc

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader 使用 ledongthuc/pdf 逐页提取纯文本。
type PDFReader struct{}

func (PDFReader) Kind() string { return KindPDF }

// Pages 按页序返回每页纯文本；空页（page.V 为 null）跳过。
//
// ledongthuc/pdf 遇到畸形对象时可能直接 panic，这里统一恢复为 error，
// 避免一份损坏的清单拖垮整个进程。
func (PDFReader) Pages(data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, errors.New("pdf 内容为空")
	}

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf 解析异常：%v", r)
		}
	}()

	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	total := rd.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := rd.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页提取文本失败：%w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// pageText 按字形坐标重建行：
// - Y 变化超过半个字号 => 换行（Td/TD/Tm 定位的表格行不会被粘成一行）
// - 同一行内 X 出现明显空隙 => 补一个空格（分开放置的单元格）
//
// 内容流里没有字形时退回 GetPlainText。
func pageText(page pdf.Page) (string, error) {
	glyphs := page.Content().Text
	if len(glyphs) == 0 {
		return page.GetPlainText(nil)
	}

	var b strings.Builder
	prev := glyphs[0]
	b.WriteString(prev.S)
	for _, g := range glyphs[1:] {
		switch {
		case math.Abs(g.Y-prev.Y) > lineTolerance(prev.FontSize):
			b.WriteByte('\n')
		case g.X-(prev.X+prev.W) > gapTolerance(prev.FontSize):
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		prev = g
	}
	return b.String(), nil
}

func lineTolerance(fontSize float64) float64 {
	return math.Max(fontSize/2, 1)
}

func gapTolerance(fontSize float64) float64 {
	return math.Max(fontSize/4, 1)
}
