package count

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gzip "github.com/klauspost/pgzip"

	"github.com/John-Robertt/fqkit/internal/app/observe"
	"github.com/John-Robertt/fqkit/internal/config"
	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/report"
	"github.com/John-Robertt/fqkit/internal/scan"
)

// LinesPerRead 是 FASTQ 每条 read 固定占用的行数。
const LinesPerRead = 4

// Execute 统计 cfg.Dir 下全部 merged FASTQ 的 read 数，并把汇总写到 <dir>/<summary_name>。
// 任一文件不可读即中断（返回 *domain.IOError），不写汇总。
func Execute(ctx context.Context, cfg config.CountConfig, obs observe.Observer) (domain.CountReport, error) {
	obs = observe.OrNop(obs)

	summaryPath := filepath.Join(cfg.Dir, cfg.SummaryName)
	rep := domain.CountReport{Root: cfg.Dir, SummaryPath: summaryPath}

	obs.OnStart("count", map[string]any{
		"input_dir":    cfg.Dir,
		"fastq_exts":   strings.Join(cfg.FastqExts, ","),
		"exclude_dirs": strings.Join(cfg.ExcludeDirs, ","),
		"summary":      summaryPath,
	})

	scanStarted := time.Now()
	files, err := scan.ScanMerged(cfg.Dir, cfg.ExcludeDirs, cfg.FastqExts)
	if err != nil {
		return rep, &domain.IOError{Op: "list", Path: cfg.Dir, Err: err}
	}
	obs.OnPhaseDone("scan", map[string]any{"files": len(files)}, time.Since(scanStarted))
	if len(files) == 0 {
		obs.OnWarn("未找到 merged FASTQ 文件", map[string]any{"input_dir": cfg.Dir})
	}

	rep.Counts = make([]domain.ReadCount, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		oneStarted := time.Now()
		lines, err := CountLines(f.AbsPath)
		if err != nil {
			return rep, err
		}
		rc := domain.ReadCount{
			Path:    f.AbsPath,
			RelPath: f.RelPath,
			Name:    f.Name,
			Lines:   lines,
			Reads:   lines / LinesPerRead,
		}
		rep.Counts = append(rep.Counts, rc)
		obs.OnCounted(i+1, len(files), rc, time.Since(oneStarted))
	}

	data, err := report.EncodeCountTSV(rep.Counts)
	if err != nil {
		return rep, err
	}
	if err := report.Save(summaryPath, data); err != nil {
		return rep, err
	}
	rep.Finalize()
	return rep, nil
}

// CountLines 统计文件行数；.gz 结尾的文件先经 pgzip 解压。
// 最后一行没有换行符时也计为一行。
func CountLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &domain.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = bufio.NewReaderSize(f, 1<<20)
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return 0, &domain.IOError{Op: "read", Path: path, Err: err}
		}
		defer zr.Close()
		r = zr
	}

	n, err := countLines(r)
	if err != nil {
		return 0, &domain.IOError{Op: "read", Path: path, Err: err}
	}
	return n, nil
}

func countLines(r io.Reader) (int64, error) {
	buf := make([]byte, 64<<10)
	var (
		n    int64
		last byte = '\n'
	)
	for {
		k, err := r.Read(buf)
		if k > 0 {
			n += int64(bytes.Count(buf[:k], []byte{'\n'}))
			last = buf[k-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		n++
	}
	return n, nil
}
