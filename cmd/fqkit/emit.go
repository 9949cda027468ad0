package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/John-Robertt/fqkit/internal/domain"
)

// stdout 非 TTY：stdout 必须且仅输出一个报告 JSON（摘要走 stderr）。
func emitJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func emitVerifyReport(s streams, rr domain.VerifyReport) {
	summary := fmt.Sprintf("完成：total=%d matched=%d mismatched=%d missing=%d report=%s\n",
		rr.Summary.Total, rr.Summary.Matched, rr.Summary.Mismatched, rr.Summary.Missing, rr.Output,
	)
	if !s.outTTY {
		emitJSON(s.out, rr)
		fmt.Fprint(s.err, summary)
		return
	}

	fmt.Fprint(s.out, summary)
	if len(rr.Mismatches) > 0 {
		fmt.Fprintf(s.out, "摘要不一致（%d）：\n", len(rr.Mismatches))
		for _, name := range rr.Mismatches {
			fmt.Fprintf(s.out, "  %s\n", name)
		}
	}
	if rr.Summary.Missing > 0 {
		fmt.Fprintf(s.out, "缺失文件（%d）：\n", rr.Summary.Missing)
		for _, r := range rr.Results {
			if r.Status == domain.StatusMissingFile {
				fmt.Fprintf(s.out, "  %s\n", r.Sequence)
			}
		}
	}
}

func emitCountReport(s streams, rep domain.CountReport) {
	summary := fmt.Sprintf("完成：files=%d total_reads=%d summary=%s\n", len(rep.Counts), rep.TotalReads, rep.SummaryPath)
	if !s.outTTY {
		emitJSON(s.out, rep)
		fmt.Fprint(s.err, summary)
		return
	}
	writeCountTable(s.out, rep)
	fmt.Fprint(s.out, summary)
}

// writeCountTable 输出定宽表格：文件列按最长相对路径对齐，reads 右对齐。
func writeCountTable(w io.Writer, rep domain.CountReport) {
	width := len("File")
	for _, c := range rep.Counts {
		if n := len(c.RelPath); n > width {
			width = n
		}
	}
	fmt.Fprintf(w, "%-*s  %12s\n", width, "File", "Reads")
	for _, c := range rep.Counts {
		fmt.Fprintf(w, "%-*s  %12d\n", width, c.RelPath, c.Reads)
	}
	fmt.Fprintf(w, "%-*s  %12d\n", width, "TOTAL", rep.TotalReads)
}

func emitMergeReport(s streams, rep domain.MergeReport) {
	summary := fmt.Sprintf("完成：moved=%d merged=%d\n", len(rep.Moved), len(rep.Merged))
	if !rep.Organized {
		summary = "完成：没有需要整理的 FASTQ 文件\n"
	}
	if !s.outTTY {
		emitJSON(s.out, rep)
		fmt.Fprint(s.err, summary)
		return
	}
	for _, m := range rep.Merged {
		rel, err := filepath.Rel(rep.Dir, m.Output)
		if err != nil {
			rel = m.Output
		}
		fmt.Fprintf(s.out, "  %s  (%d files, %s)\n", rel, m.Files, formatBytes(m.Bytes))
	}
	fmt.Fprint(s.out, summary)
}
