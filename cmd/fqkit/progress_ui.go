package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/John-Robertt/fqkit/internal/app/observe"
	"github.com/John-Robertt/fqkit/internal/domain"
)

var _ observe.Observer = (*progressUI)(nil)

var (
	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

// progressUI 是交互终端的进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr，不污染 stdout 的报告输出
// - 事件驱动：app 层只发事件，CLI 决定如何展示
// - keepalive：大文件计算摘要期间长时间没有输出时，定期打印一行进度
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total int
	done  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(op string, params map[string]any) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	colorCyan.Fprintf(p.w, "[%s] fqkit %s\n", now.Format("15:04:05"), op)
	fmt.Fprintln(p.w, "配置（生效）:")
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.w, "  %s: %v\n", k, params[k])
	}
	fmt.Fprintln(p.w)
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "extract":
		fmt.Fprintf(p.w, "抽取: kind=%v pages=%d records=%d (%s)\n",
			fields["kind"], intField(fields, "pages"), intField(fields, "records"), formatShortDuration(dur),
		)
		p.beginLocked(intField(fields, "records"))
	case "list":
		fmt.Fprintf(p.w, "列目录: entries=%d (%s)\n\n", intField(fields, "entries"), formatShortDuration(dur))
	case "report":
		fmt.Fprintf(p.w, "\n报告: %v total=%d matched=%d mismatched=%d missing=%d (%s)\n",
			fields["path"],
			intField(fields, "total"),
			intField(fields, "matched"),
			intField(fields, "mismatched"),
			intField(fields, "missing"),
			formatElapsed(dur),
		)
	case "scan":
		fmt.Fprintf(p.w, "扫描: files=%d (%s)\n\n", intField(fields, "files"), formatShortDuration(dur))
		p.beginLocked(intField(fields, "files"))
	case "plan":
		fmt.Fprintf(p.w, "规划: files=%d samples=%d moves=%d (%s)\n",
			intField(fields, "files"), intField(fields, "samples"), intField(fields, "moves"), formatShortDuration(dur),
		)
	case "organize":
		fmt.Fprintf(p.w, "整理: moved=%d (%s)\n\n", intField(fields, "moved"), formatShortDuration(dur))
	case "merge":
		fmt.Fprintf(p.w, "\n拼接: samples=%d outputs=%d (%s)\n",
			intField(fields, "samples"), intField(fields, "outputs"), formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnVerified(idx, total int, res domain.VerificationResult, matches int, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	status := statusColor(res.Status).Sprint(res.Status)
	switch res.Status {
	case domain.StatusMissingFile:
		fmt.Fprintf(p.w, "[%d/%d] %s %s\n", idx, total, res.Sequence, status)
	default:
		note := ""
		if matches > 1 {
			note = fmt.Sprintf(" candidates=%d（取字典序最小）", matches)
		}
		fmt.Fprintf(p.w, "[%d/%d] %s %s file=%s%s (%s)\n",
			idx, total, res.Sequence, status, res.File, note, formatShortDuration(dur),
		)
		if res.Status == domain.StatusMismatch {
			fmt.Fprintf(p.w, "        expected=%s computed=%s\n", res.ExpectedDigest, res.ComputedDigest)
		}
	}

	p.lastPrinted = time.Now()
	p.maybeStopLocked()
}

func (p *progressUI) OnCounted(idx, total int, rc domain.ReadCount, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total
	fmt.Fprintf(p.w, "[%d/%d] %s reads=%d (%s)\n", idx, total, rc.RelPath, rc.Reads, formatShortDuration(dur))

	p.lastPrinted = time.Now()
	p.maybeStopLocked()
}

func (p *progressUI) OnMoved(mv domain.MovePlan) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "移动: %s -> %s\n", filepath.Base(mv.SrcAbs), shortPath(mv.DstAbs, 2))
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnMerged(res domain.MergeResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "合并: %s %s files=%d -> %s (%s, %s)\n",
		filepath.Base(res.Dir), res.Kind, res.Files, filepath.Base(res.Output), formatBytes(res.Bytes), formatShortDuration(dur),
	)
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnWarn(msg string, fields map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	colorYellow.Fprintf(p.w, "警告: %s%s\n", msg, formatFields(fields))
	p.lastPrinted = time.Now()
}

// stop 停止 keepalive ticker（CLI 在命令结束时调用，包括出错提前返回的情况）。
func (p *progressUI) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) beginLocked(total int) {
	p.total = total
	p.done = 0
	if total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
func (p *progressUI) maybeStopLocked() {
	if p.tickerStarted && p.done >= p.total {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stopCh := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d 正在处理第 %d 个 elapsed=%s\n",
						p.done, p.total, p.done+1, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stopCh:
				return
			}
		}
	}()
}

func statusColor(status string) *color.Color {
	switch status {
	case domain.StatusMatch:
		return colorGreen
	case domain.StatusMismatch:
		return colorRed
	default:
		return colorYellow
	}
}

// shortPath 只保留路径最后 n 段，终端一行放得下。
func shortPath(p string, n int) string {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(p)), "/")
	if n <= 0 || len(parts) <= n {
		return filepath.FromSlash(strings.Join(parts, "/"))
	}
	return filepath.FromSlash(strings.Join(parts[len(parts)-n:], "/"))
}

func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " (" + strings.Join(parts, " ") + ")"
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}
