package refdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/John-Robertt/fqkit/internal/domain"
)

const (
	KindPDF  = "pdf"
	KindHTML = "html"
	KindText = "text"
)

// Reader 把“文档格式差异”限制在 refdoc 包内部；核心流程只依赖逐页纯文本。
//
// 约束：
// - Pages 必须是纯函数：相同输入 => 相同输出
// - 页序即文档顺序；单页格式（HTML/文本）返回长度为 1 的切片
type Reader interface {
	Kind() string
	Pages(data []byte) ([]string, error)
}

// Registry 是 Reader 的只读注册表（按 kind 索引）。
type Registry struct {
	byKind map[string]Reader
}

func NewRegistry(readers ...Reader) (Registry, error) {
	byKind := make(map[string]Reader, len(readers))
	for _, r := range readers {
		if r == nil {
			return Registry{}, fmt.Errorf("reader 不能为空")
		}
		kind := strings.ToLower(strings.TrimSpace(r.Kind()))
		if kind == "" {
			return Registry{}, fmt.Errorf("reader.Kind 不能为空")
		}
		if _, ok := byKind[kind]; ok {
			return Registry{}, fmt.Errorf("重复的 reader：%q", kind)
		}
		byKind[kind] = r
	}
	return Registry{byKind: byKind}, nil
}

// DefaultRegistry 注册内置的 PDF / HTML / 纯文本读取器。
func DefaultRegistry() Registry {
	reg, err := NewRegistry(PDFReader{}, HTMLReader{}, TextReader{})
	if err != nil {
		// 内置 reader 的 kind 固定且互不重复。
		panic(err)
	}
	return reg
}

func (r Registry) Get(kind string) (Reader, bool) {
	if r.byKind == nil {
		return nil, false
	}
	rd, ok := r.byKind[strings.ToLower(strings.TrimSpace(kind))]
	return rd, ok
}

// UnsupportedError 表示参考文档是压缩包/二进制等不支持的格式。
type UnsupportedError struct {
	Path string
	MIME string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("不支持的参考文档格式：%q（%s）；请提供 PDF、HTML 或纯文本清单", e.Path, e.MIME)
}

func IsUnsupported(err error) bool {
	var e *UnsupportedError
	return errors.As(err, &e)
}

// Detect 根据魔数与扩展名判断文档类型。
//
// 规则（按顺序）：
// 1) 魔数为 PDF => pdf
// 2) 魔数为压缩包/归档 => UnsupportedError
// 3) 扩展名 .html/.htm，或首个非空白字符是 '<' => html
// 4) 其余 => text
func Detect(path string, data []byte) (string, error) {
	kind, _ := filetype.Match(data)
	if kind.Extension == "pdf" {
		return KindPDF, nil
	}
	if filetype.IsArchive(data) {
		return "", &UnsupportedError{Path: path, MIME: kind.MIME.Value}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return KindHTML, nil
	}
	if trimmed := strings.TrimSpace(string(head(data, 512))); strings.HasPrefix(trimmed, "<") {
		return KindHTML, nil
	}
	return KindText, nil
}

// Load 读取参考文档并返回逐页纯文本。
// 读取失败返回 *domain.IOError；格式解析失败返回普通 error。
func Load(path string, reg Registry) (kind string, pages []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, &domain.IOError{Op: "read", Path: path, Err: err}
	}

	kind, err = Detect(path, data)
	if err != nil {
		return "", nil, err
	}
	rd, ok := reg.Get(kind)
	if !ok {
		return "", nil, fmt.Errorf("未注册的文档类型：%q", kind)
	}

	pages, err = rd.Pages(data)
	if err != nil {
		return kind, nil, fmt.Errorf("解析参考文档 %q（%s）失败：%w", path, kind, err)
	}
	return kind, pages, nil
}

func head(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
