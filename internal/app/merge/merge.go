package merge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/John-Robertt/fqkit/internal/app"
	"github.com/John-Robertt/fqkit/internal/app/observe"
	"github.com/John-Robertt/fqkit/internal/app/planner"
	"github.com/John-Robertt/fqkit/internal/config"
	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/infra/fsx"
	"github.com/John-Robertt/fqkit/internal/scan"
)

// FastqSuffix 是整理阶段识别的顶层 FASTQ 扩展名（只处理明文）。
const FastqSuffix = ".fastq"

// Execute 执行一次 merge：先按前缀整理，再在每个样本目录内拼接正/反向 reads。
//
// 约束：
// - 顶层没有 FASTQ 文件：发出警告并直接返回（不进入拼接阶段）
// - 移动从不覆盖已有文件；跨盘（EXDEV）直接失败
// - merged_* 输出原子替换
func Execute(ctx context.Context, cfg config.MergeConfig, obs observe.Observer) (rep domain.MergeReport, err error) {
	obs = observe.OrNop(obs)
	rep = domain.MergeReport{Dir: cfg.Dir, NChars: cfg.NChars}
	defer rep.Finalize()

	obs.OnStart("merge", map[string]any{
		"input_dir": cfg.Dir,
		"n_chars":   cfg.NChars,
	})

	started := time.Now()
	files, err := scan.ListFastq(cfg.Dir, FastqSuffix)
	if err != nil {
		return rep, &domain.IOError{Op: "list", Path: cfg.Dir, Err: err}
	}
	if len(files) == 0 {
		obs.OnWarn("目录中没有 FASTQ 文件", map[string]any{"input_dir": cfg.Dir})
		return rep, nil
	}

	groups, err := app.GroupByPrefix(files, cfg.NChars)
	if err != nil {
		return rep, err
	}
	moves, err := planner.PlanOrganize(cfg.Dir, files, groups)
	if err != nil {
		return rep, err
	}
	obs.OnPhaseDone("plan", map[string]any{
		"files":   len(files),
		"samples": len(groups),
		"moves":   len(moves),
	}, time.Since(started))

	started = time.Now()
	rep.Moved = make([]domain.MovePlan, 0, len(moves))
	for _, mv := range moves {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := os.MkdirAll(filepath.Dir(mv.DstAbs), 0o755); err != nil {
			return rep, &domain.IOError{Op: "mkdir", Path: filepath.Dir(mv.DstAbs), Err: err}
		}
		if err := fsx.MoveNoOverwrite(mv.SrcAbs, mv.DstAbs); err != nil {
			return rep, &domain.IOError{Op: "move", Path: mv.SrcAbs, Err: err}
		}
		rep.Moved = append(rep.Moved, mv)
		obs.OnMoved(mv)
	}
	rep.Organized = true
	obs.OnPhaseDone("organize", map[string]any{"moved": len(rep.Moved)}, time.Since(started))

	started = time.Now()
	dirs, err := planner.ListSampleDirs(cfg.Dir)
	if err != nil {
		return rep, &domain.IOError{Op: "list", Path: cfg.Dir, Err: err}
	}
	rep.Merged = make([]domain.MergeResult, 0, len(dirs)*2)
	for _, d := range dirs {
		plans, err := planner.PlanMerges(d)
		if err != nil {
			return rep, &domain.IOError{Op: "list", Path: d, Err: err}
		}
		for _, p := range plans {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			oneStarted := time.Now()
			res, err := Concat(ctx, p)
			if err != nil {
				return rep, err
			}
			rep.Merged = append(rep.Merged, res)
			obs.OnMerged(res, time.Since(oneStarted))
		}
	}
	obs.OnPhaseDone("merge", map[string]any{
		"samples": len(dirs),
		"outputs": len(rep.Merged),
	}, time.Since(started))
	return rep, nil
}

// Concat 按 p.Inputs 的顺序逐字节拼接到 p.Output（原子替换）。
func Concat(ctx context.Context, p domain.MergePlan) (domain.MergeResult, error) {
	res := domain.MergeResult{Dir: p.Dir, Kind: p.Kind, Files: len(p.Inputs), Output: p.Output}

	var readErr error
	err := fsx.WriteStreamAtomic(filepath.Dir(p.Output), filepath.Base(p.Output), func(w io.Writer) error {
		for _, in := range p.Inputs {
			if err := ctx.Err(); err != nil {
				readErr = err
				return err
			}
			n, err := copyFile(w, in)
			res.Bytes += n
			if err != nil {
				readErr = err
				return err
			}
		}
		return nil
	})
	if readErr != nil {
		return res, readErr
	}
	if err != nil {
		return res, &domain.IOError{Op: "write", Path: p.Output, Err: err}
	}
	return res, nil
}

func copyFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &domain.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, &domain.IOError{Op: "copy", Path: path, Err: fmt.Errorf("已拼接 %d 字节后失败：%w", n, err)}
	}
	return n, nil
}
