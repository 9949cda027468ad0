package verify

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/John-Robertt/fqkit/internal/app/observe"
	"github.com/John-Robertt/fqkit/internal/config"
	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/infra/digest"
	"github.com/John-Robertt/fqkit/internal/record"
	"github.com/John-Robertt/fqkit/internal/refdoc"
	"github.com/John-Robertt/fqkit/internal/report"
)

// Execute 执行一次 md5check：抽取记录 -> 匹配文件 -> 计算摘要 -> 分类 -> 写报告。
//
// 约束：
// - 结果与记录一一对应，顺序相同
// - 缺失文件与摘要不一致只是分类结果；只有 IOError/取消会中断并返回 error
// - 对文档与数据目录只读；唯一的写入是 TSV 报告
func Execute(ctx context.Context, cfg config.VerifyConfig, reg refdoc.Registry, obs observe.Observer) (domain.VerifyReport, error) {
	obs = observe.OrNop(obs)

	rr := domain.VerifyReport{
		DocPath:   cfg.DocPath,
		Dir:       cfg.Dir,
		Output:    cfg.Output,
		StartedAt: time.Now().UTC(),
	}

	obs.OnStart("md5check", map[string]any{
		"doc":        cfg.DocPath,
		"input":      cfg.Dir,
		"output":     cfg.Output,
		"chunk_size": cfg.ChunkSize,
	})

	// 文档解析必须在匹配之前完成。
	parseStarted := time.Now()
	kind, pages, err := refdoc.Load(cfg.DocPath, reg)
	if err != nil {
		return rr, err
	}
	records := record.ExtractPages(pages)
	obs.OnPhaseDone("extract", map[string]any{
		"kind":    kind,
		"pages":   len(pages),
		"records": len(records),
	}, time.Since(parseStarted))

	// 目录每次运行只列一次。
	listStarted := time.Now()
	names, err := listEntries(cfg.Dir)
	if err != nil {
		return rr, err
	}
	obs.OnPhaseDone("list", map[string]any{
		"entries": len(names),
	}, time.Since(listStarted))

	rr.Results = make([]domain.VerificationResult, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return rr, err
		}

		oneStarted := time.Now()
		c := FindCandidate(cfg.Dir, names, rec.Sequence)

		computed := ""
		if c.Found() {
			computed, err = digest.File(c.Path, cfg.ChunkSize)
			if err != nil {
				return rr, err
			}
		}
		res := domain.Classify(rec, c, computed)
		rr.Results = append(rr.Results, res)
		obs.OnVerified(i+1, len(records), res, c.Matches, time.Since(oneStarted))
	}

	data, err := report.EncodeVerifyTSV(rr.Results)
	if err != nil {
		return rr, err
	}
	if err := report.Save(cfg.Output, data); err != nil {
		return rr, err
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	obs.OnPhaseDone("report", map[string]any{
		"path":       cfg.Output,
		"total":      rr.Summary.Total,
		"matched":    rr.Summary.Matched,
		"mismatched": rr.Summary.Mismatched,
		"missing":    rr.Summary.Missing,
	}, rr.FinishedAt.Sub(rr.StartedAt))
	return rr, nil
}

// FindCandidate 在已排序的 names 中查找以 sequence 开头的条目（区分大小写）。
// 多个候选时取字典序最小的一个，并在 Matches 中报告候选总数。
func FindCandidate(dir string, names []string, sequence string) domain.Candidate {
	if sequence == "" {
		return domain.NotFound()
	}
	// names 已按字节序排序：所有以 sequence 开头的名字是连续的一段。
	start := sort.SearchStrings(names, sequence)
	end := start
	for end < len(names) && strings.HasPrefix(names[end], sequence) {
		end++
	}
	if end == start {
		return domain.NotFound()
	}
	name := names[start]
	return domain.Found(filepath.Join(dir, name), name, end-start)
}

// listEntries 返回 dir 下全部非目录条目的名字（os.ReadDir 保证按文件名排序）。
func listEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.IOError{Op: "list", Path: dir, Err: err}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}
