package digest

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"github.com/John-Robertt/fqkit/internal/domain"
)

// DefaultChunkSize 是流式读取的块大小（字节）。
const DefaultChunkSize = 8192

// HexLen 是摘要十六进制串的固定长度（MD5）。
const HexLen = md5.Size * 2

// Reader 以 chunkSize 为块流式计算 r 的 MD5，返回小写十六进制。
// 内存占用与输入大小无关。
func Reader(r io.Reader, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	h := md5.New()
	buf := make([]byte, chunkSize)
	// 包一层，避免 io.CopyBuffer 走 WriterTo/ReaderFrom 绕过固定块大小。
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{r}, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File 计算文件内容的 MD5；结果只取决于内容，与路径/文件名无关。
// 打开或读取失败返回 *domain.IOError。
func File(path string, chunkSize int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &domain.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	sum, err := Reader(f, chunkSize)
	if err != nil {
		return "", &domain.IOError{Op: "read", Path: path, Err: err}
	}
	return sum, nil
}
