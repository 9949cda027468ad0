package refdoc

// TextReader 把整个文件视为单页纯文本（例如从 PDF 另存的 .txt 或 md5 清单）。
type TextReader struct{}

func (TextReader) Kind() string { return KindText }

func (TextReader) Pages(data []byte) ([]string, error) {
	return []string{string(data)}, nil
}
