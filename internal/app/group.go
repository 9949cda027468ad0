package app

import (
	"errors"
	"sort"

	"github.com/John-Robertt/fqkit/internal/domain"
)

// SamplePrefix 返回文件名的前 n 个字符（按 rune 计）；名字不足 n 个字符时返回整个名字。
func SamplePrefix(name string, n int) string {
	r := []rune(name)
	if n >= len(r) {
		return name
	}
	return string(r[:n])
}

// GroupByPrefix 把 FASTQ 文件按前 nChars 个字符分组为 SampleGroup（只存 file index）。
//
// - groups 稳定排序：按 Prefix 字典序
// - group 内 FileIdx 稳定排序：按文件名字典序
func GroupByPrefix(files []domain.FastqFile, nChars int) ([]domain.SampleGroup, error) {
	if nChars < 1 {
		return nil, errors.New("n_chars 必须 >= 1")
	}

	index := make(map[string]int, 16)
	groups := make([]domain.SampleGroup, 0, 16)

	for i := range files {
		p := SamplePrefix(files[i].Name, nChars)
		if idx, ok := index[p]; ok {
			groups[idx].FileIdx = append(groups[idx].FileIdx, i)
			continue
		}
		index[p] = len(groups)
		groups = append(groups, domain.SampleGroup{
			Prefix:  p,
			FileIdx: []int{i},
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Prefix < groups[j].Prefix })
	for i := range groups {
		sort.Slice(groups[i].FileIdx, func(a, b int) bool {
			ia := groups[i].FileIdx[a]
			ib := groups[i].FileIdx[b]
			return files[ia].Name < files[ib].Name
		})
	}
	return groups, nil
}
