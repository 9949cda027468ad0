package domain

import "strings"

// ExpectedRecord 是从参考文档中抽取出的一条 (序列名, 期望摘要)。
//
// 约束：ExpectedDigest 已规范化为小写 32 位十六进制。
type ExpectedRecord struct {
	Sequence       string `json:"sequence"`
	ExpectedDigest string `json:"expected_md5"`
}

const (
	StatusMatch       = "MATCH"
	StatusMismatch    = "MISMATCH"
	StatusMissingFile = "MISSING_FILE"
)

// VerificationResult 与 ExpectedRecord 一一对应，写入报告后不再修改。
type VerificationResult struct {
	Sequence       string `json:"sequence"`
	ExpectedDigest string `json:"expected_md5"`
	ComputedDigest string `json:"computed_md5"` // MISSING_FILE 时为空串
	Status         string `json:"status"`
	File           string `json:"file"` // 实际参与计算的文件名；MISSING_FILE 时为空串
}

// Classify 根据候选文件与计算结果给出状态（PENDING 之后的唯一一次转移）。
func Classify(rec ExpectedRecord, c Candidate, computed string) VerificationResult {
	res := VerificationResult{
		Sequence:       rec.Sequence,
		ExpectedDigest: rec.ExpectedDigest,
	}
	if !c.Found() {
		res.Status = StatusMissingFile
		return res
	}
	res.File = c.Name
	res.ComputedDigest = computed
	if strings.EqualFold(computed, rec.ExpectedDigest) {
		res.Status = StatusMatch
	} else {
		res.Status = StatusMismatch
	}
	return res
}

// Candidate 是文件匹配的结果：Found(path) | NotFound。
// 零值即 NotFound。
type Candidate struct {
	Path string
	Name string

	// Matches 是满足前缀条件的条目总数（>1 表示存在歧义，按字典序取了第一个）。
	Matches int
}

func Found(path, name string, matches int) Candidate {
	return Candidate{Path: path, Name: name, Matches: matches}
}

func NotFound() Candidate { return Candidate{} }

func (c Candidate) Found() bool { return c.Path != "" }
