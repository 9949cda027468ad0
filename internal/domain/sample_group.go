package domain

// SampleGroup 是按文件名前缀聚合后的样本分组。
// 只保存文件下标（指向 []FastqFile），避免复制结构体。
type SampleGroup struct {
	Prefix  string
	FileIdx []int
}
