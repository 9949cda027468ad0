package report

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strconv"

	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/infra/fsx"
)

// 列名与顺序是对外契约，下游脚本按列名读取。
var (
	verifyHeader = []string{"Sequence", "Expected_MD5", "Computed_MD5", "Status"}
	countHeader  = []string{"File", "Reads"}
)

// EncodeVerifyTSV 把校验结果编码为 TSV（含表头；结果为空时只有表头）。
// 编码是确定性的：相同结果 => 相同字节。
func EncodeVerifyTSV(results []domain.VerificationResult) ([]byte, error) {
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, verifyHeader)
	for _, r := range results {
		rows = append(rows, []string{r.Sequence, r.ExpectedDigest, r.ComputedDigest, r.Status})
	}
	return encodeTSV(rows)
}

// EncodeCountTSV 把计数结果编码为 TSV（File 列只写文件名）。
func EncodeCountTSV(counts []domain.ReadCount) ([]byte, error) {
	rows := make([][]string, 0, len(counts)+1)
	rows = append(rows, countHeader)
	for _, c := range counts {
		rows = append(rows, []string{c.Name, strconv.FormatInt(c.Reads, 10)})
	}
	return encodeTSV(rows)
}

// Save 原子写入报告；失败统一包装为 *domain.IOError。
func Save(path string, data []byte) error {
	path = filepath.Clean(path)
	if err := fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), data); err != nil {
		return &domain.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func encodeTSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
