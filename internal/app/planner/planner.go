package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/fqkit/internal/config"
	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/scan"
)

const (
	ForwardSuffix = "_1.fastq"
	ReverseSuffix = "_2.fastq"

	MergedForward = "merged_1.fastq"
	MergedReverse = "merged_2.fastq"
)

// PlanOrganize 为每个分组生成确定性的移动计划：<dir>/<file> -> <dir>/<prefix>/<file>。
// 只做规划，不创建目录、不移动。
func PlanOrganize(dir string, files []domain.FastqFile, groups []domain.SampleGroup) ([]domain.MovePlan, error) {
	dir = filepath.Clean(dir)
	moves := make([]domain.MovePlan, 0, len(files))
	for _, g := range groups {
		for _, idx := range g.FileIdx {
			if idx < 0 || idx >= len(files) {
				return nil, fmt.Errorf("非法 file index：%d", idx)
			}
			f := files[idx]
			// "." / ".." 会让目标落回 dir 本身或其父目录。
			if g.Prefix == "." || g.Prefix == ".." {
				return nil, &config.Error{Code: config.ErrCodeInvalid, Err: fmt.Errorf("样本前缀 %q 不是合法的目录名（文件 %q）；请调整 n_chars", g.Prefix, f.Name)}
			}
			// 文件名短于 n_chars 时前缀就是文件名本身，样本目录会与文件同名。
			if g.Prefix == f.Name {
				return nil, &config.Error{Code: config.ErrCodeInvalid, Err: fmt.Errorf("样本前缀 %q 与文件名相同，无法创建同名目录；请减小 n_chars", g.Prefix)}
			}
			moves = append(moves, domain.MovePlan{
				SrcAbs: filepath.Join(dir, f.Name),
				DstAbs: filepath.Join(dir, g.Prefix, f.Name),
			})
		}
	}
	return moves, nil
}

// ListSampleDirs 返回 dir 下的全部子目录（绝对路径，按名称排序）。
func ListSampleDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// PlanMerges 规划样本目录内的正/反向拼接（只做 ReadDir，不读文件内容）。
//
// - 输入按文件名字典序
// - 已有的 merged_* 不作为输入（重复运行结果稳定）
// - 某一方向没有输入时不生成该方向的计划
func PlanMerges(sampleDir string) ([]domain.MergePlan, error) {
	entries, err := os.ReadDir(sampleDir)
	if err != nil {
		return nil, err
	}

	var fwd, rev []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, scan.MergedPrefix) || strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case strings.HasSuffix(name, ForwardSuffix):
			fwd = append(fwd, filepath.Join(sampleDir, name))
		case strings.HasSuffix(name, ReverseSuffix):
			rev = append(rev, filepath.Join(sampleDir, name))
		}
	}

	plans := make([]domain.MergePlan, 0, 2)
	if len(fwd) > 0 {
		plans = append(plans, domain.MergePlan{
			Dir:    sampleDir,
			Kind:   domain.MergeForward,
			Inputs: fwd,
			Output: filepath.Join(sampleDir, MergedForward),
		})
	}
	if len(rev) > 0 {
		plans = append(plans, domain.MergePlan{
			Dir:    sampleDir,
			Kind:   domain.MergeReverse,
			Inputs: rev,
			Output: filepath.Join(sampleDir, MergedReverse),
		})
	}
	return plans, nil
}
