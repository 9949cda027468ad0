package record

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/infra/digest"
)

// 行首的非空白 token（序列名）+ 空白 + 恰好 digest.HexLen 位十六进制（摘要）。
// 摘要后必须紧跟非十六进制字符或行尾，避免把更长的串截短。
var lineRE = regexp.MustCompile(fmt.Sprintf(`^(\S+)\s+([0-9a-fA-F]{%d})(?:[^0-9a-fA-F]|$)`, digest.HexLen))

// ParseLine 尝试把一行文本解析为 ExpectedRecord。
// 不匹配不是错误（ParseSkip）：返回 ok=false。
func ParseLine(line string) (domain.ExpectedRecord, bool) {
	line = strings.TrimSuffix(line, "\r")
	m := lineRE.FindStringSubmatch(line)
	if len(m) < 3 {
		return domain.ExpectedRecord{}, false
	}
	return domain.ExpectedRecord{
		Sequence:       m[1],
		ExpectedDigest: strings.ToLower(m[2]),
	}, true
}

// ExtractPages 按页序、行序抽取全部记录。
//
// - 同名记录不合并、不去重
// - 零匹配返回空切片（非 nil），不是错误
func ExtractPages(pages []string) []domain.ExpectedRecord {
	out := make([]domain.ExpectedRecord, 0, 64)
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			if rec, ok := ParseLine(line); ok {
				out = append(out, rec)
			}
		}
	}
	return out
}
