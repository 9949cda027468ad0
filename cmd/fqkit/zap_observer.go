package main

import (
	"io"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/fqkit/internal/app/observe"
	"github.com/John-Robertt/fqkit/internal/domain"
)

var _ observe.Observer = (*zapObserver)(nil)

// zapObserver 在非交互环境下把事件写成 JSON 行（stderr），便于日志系统采集。
type zapObserver struct {
	log *zap.SugaredLogger
}

func newZapObserver(w io.Writer) *zapObserver {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zap.InfoLevel)
	return &zapObserver{log: zap.New(core).Sugar()}
}

func (z *zapObserver) OnStart(op string, params map[string]any) {
	z.log.Infow("start", append([]any{"op", op}, sortedKV(params)...)...)
}

func (z *zapObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	z.log.Infow("phase", append([]any{"phase", name, "duration", dur}, sortedKV(fields)...)...)
}

func (z *zapObserver) OnVerified(idx, total int, res domain.VerificationResult, matches int, dur time.Duration) {
	kv := []any{
		"idx", idx,
		"total", total,
		"sequence", res.Sequence,
		"status", res.Status,
		"file", res.File,
		"candidates", matches,
		"duration", dur,
	}
	if res.Status == domain.StatusMismatch {
		z.log.Warnw("verified", append(kv, "expected_md5", res.ExpectedDigest, "computed_md5", res.ComputedDigest)...)
		return
	}
	z.log.Infow("verified", kv...)
}

func (z *zapObserver) OnCounted(idx, total int, rc domain.ReadCount, dur time.Duration) {
	z.log.Infow("counted",
		"idx", idx,
		"total", total,
		"file", rc.RelPath,
		"lines", rc.Lines,
		"reads", rc.Reads,
		"duration", dur,
	)
}

func (z *zapObserver) OnMoved(mv domain.MovePlan) {
	z.log.Infow("moved", "src", mv.SrcAbs, "dst", mv.DstAbs)
}

func (z *zapObserver) OnMerged(res domain.MergeResult, dur time.Duration) {
	z.log.Infow("merged",
		"dir", res.Dir,
		"kind", res.Kind,
		"files", res.Files,
		"bytes", res.Bytes,
		"output", res.Output,
		"duration", dur,
	)
}

func (z *zapObserver) OnWarn(msg string, fields map[string]any) {
	z.log.Warnw(msg, sortedKV(fields)...)
}

func (z *zapObserver) sync() { _ = z.log.Sync() }

// sortedKV 把 map 展开为 key/value 交替的切片（按 key 排序，日志字段顺序稳定）。
func sortedKV(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, m[k])
	}
	return kv
}
