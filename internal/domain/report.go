package domain

import (
	"encoding/json"
	"time"
)

// VerifyReport 是 md5check 对外稳定输出（stdout JSON）的结构。
// TSV 报告只包含 Results；其余字段用于机器消费与摘要输出。
type VerifyReport struct {
	DocPath string `json:"doc_path"`
	Dir     string `json:"dir"`
	Output  string `json:"output"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary    VerifySummary        `json:"summary"`
	Results    []VerificationResult `json:"results"`
	Mismatches []string             `json:"mismatches"`
}

type VerifySummary struct {
	Total      int `json:"total"`
	Matched    int `json:"matched"`
	Mismatched int `json:"mismatched"`
	Missing    int `json:"missing"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 results 计算得出
// 3) mismatches 按 results 顺序收集
//
// 与 RunReport 不同，这里不排序：结果顺序必须等于抽取顺序。
func (r *VerifyReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Results == nil {
		r.Results = []VerificationResult{}
	}

	s := VerifySummary{Total: len(r.Results)}
	mm := make([]string, 0, 8)
	for _, it := range r.Results {
		switch it.Status {
		case StatusMatch:
			s.Matched++
		case StatusMismatch:
			s.Mismatched++
			mm = append(mm, it.Sequence)
		case StatusMissingFile:
			s.Missing++
		}
	}
	r.Summary = s
	r.Mismatches = mm
}

// AllMatched 表示每条记录都是 MATCH（零条记录也算）。
func (r VerifyReport) AllMatched() bool {
	return r.Summary.Matched == r.Summary.Total
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r VerifyReport) MarshalJSON() ([]byte, error) {
	type Alias VerifyReport
	return json.Marshal(Alias(r))
}

// CountReport 是 count 子命令的汇总。
type CountReport struct {
	Root        string      `json:"root"`
	SummaryPath string      `json:"summary_path"`
	Counts      []ReadCount `json:"counts"`
	TotalReads  int64       `json:"total_reads"`
}

func (r *CountReport) Finalize() {
	if r.Counts == nil {
		r.Counts = []ReadCount{}
	}
	var total int64
	for _, c := range r.Counts {
		total += c.Reads
	}
	r.TotalReads = total
}

// MergeReport 是 merge 子命令的汇总。
// Organized=false 表示顶层没有 FASTQ 文件，整理与拼接都被跳过。
type MergeReport struct {
	Dir       string        `json:"dir"`
	NChars    int           `json:"n_chars"`
	Organized bool          `json:"organized"`
	Moved     []MovePlan    `json:"moved"`
	Merged    []MergeResult `json:"merged"`
}

func (r *MergeReport) Finalize() {
	if r.Moved == nil {
		r.Moved = []MovePlan{}
	}
	if r.Merged == nil {
		r.Merged = []MergeResult{}
	}
}
