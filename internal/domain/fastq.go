package domain

// FastqFile 描述一次扫描得到的 FASTQ 文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - 扫描阶段只做 stat，不读文件内容
type FastqFile struct {
	AbsPath string
	RelPath string
	Name    string // 文件名（含扩展名）
	Ext     string // ".fastq" / ".fastq.gz"
	Size    int64
}

// ReadCount 是单个 merged FASTQ 的计数结果。
type ReadCount struct {
	Path    string `json:"path"` // 绝对路径
	RelPath string `json:"rel_path"`
	Name    string `json:"name"`
	Lines   int64  `json:"lines"`
	Reads   int64  `json:"reads"` // Lines / 4
}
