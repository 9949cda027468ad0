package domain

// MovePlan 规划一次文件移动（只描述 src/dst；真正执行由 merge 包负责）。
type MovePlan struct {
	SrcAbs string `json:"src"`
	DstAbs string `json:"dst"`
}

const (
	MergeForward = "forward" // *_1.fastq -> merged_1.fastq
	MergeReverse = "reverse" // *_2.fastq -> merged_2.fastq
)

// MergePlan 描述某个样本目录内一次拼接：Inputs 按文件名字典序排列。
type MergePlan struct {
	Dir    string
	Kind   string
	Inputs []string // 绝对路径
	Output string   // 绝对路径
}

// MergeResult 是一次拼接的执行结果。
type MergeResult struct {
	Dir    string `json:"dir"`
	Kind   string `json:"kind"`
	Files  int    `json:"files"`
	Bytes  int64  `json:"bytes"`
	Output string `json:"output"`
}
