package observe

import (
	"time"

	"github.com/John-Robertt/fqkit/internal/domain"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - app 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）
// - fields 只放可 JSON 序列化的标量，便于结构化日志直接落盘
type Observer interface {
	// OnStart 在子命令开始时调用（params 为生效配置）。
	OnStart(op string, params map[string]any)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnVerified 在一条记录分类完成时调用；matches 为前缀匹配的候选数。
	OnVerified(idx, total int, res domain.VerificationResult, matches int, dur time.Duration)
	// OnCounted 在一个 merged FASTQ 计数完成时调用。
	OnCounted(idx, total int, rc domain.ReadCount, dur time.Duration)
	// OnMoved 在整理阶段移动一个文件后调用。
	OnMoved(mv domain.MovePlan)
	// OnMerged 在一个样本目录完成一次拼接后调用。
	OnMerged(res domain.MergeResult, dur time.Duration)
	// OnWarn 用于非致命提示（例如目录内没有 FASTQ）。
	OnWarn(msg string, fields map[string]any)
}

// Nop 丢弃所有事件。
type Nop struct{}

func (Nop) OnStart(string, map[string]any) {}
func (Nop) OnPhaseDone(string, map[string]any, time.Duration) {}
func (Nop) OnVerified(int, int, domain.VerificationResult, int, time.Duration) {}
func (Nop) OnCounted(int, int, domain.ReadCount, time.Duration) {}
func (Nop) OnMoved(domain.MovePlan) {}
func (Nop) OnMerged(domain.MergeResult, time.Duration) {}
func (Nop) OnWarn(string, map[string]any) {}

// OrNop 让调用方可以直接传 nil。
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}
