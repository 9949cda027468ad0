package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/fqkit/internal/domain"
)

// MergedPrefix 是 merge 子命令产出文件的固定前缀。
const MergedPrefix = "merged_"

// DefaultFastqExts 是 count 默认识别的扩展名（明文 + gzip）。
var DefaultFastqExts = []string{".fastq", ".fastq.gz"}

// ScanMerged 递归扫描 root 下的 merged FASTQ 文件，并应用目录排除规则。
//
// 规则（硬约束）：
// - 文件名必须以 merged_ 开头，且以 exts 之一结尾（前缀对所有扩展名都生效）
// - excludeDirs：来自配置文件，均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
// - 输出按 RelPath 字典序排序
//
// 注意：扫描阶段只做 stat（DirEntry.Info），不读文件内容。
func ScanMerged(root string, excludeDirs, exts []string) ([]domain.FastqFile, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)
	if len(exts) == 0 {
		exts = DefaultFastqExts
	}

	files := make([]domain.FastqFile, 0, 32)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		// 统一的排除判断：目录用 SkipDir，文件则直接跳过。
		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if !strings.HasPrefix(name, MergedPrefix) {
			return nil
		}
		ext, ok := matchExt(name, exts)
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, domain.FastqFile{
			AbsPath: path,
			RelPath: rel,
			Name:    name,
			Ext:     ext,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// ListFastq 列出 dir 顶层（不递归）以 suffix 结尾的非目录条目，按文件名排序。
func ListFastq(dir, suffix string) ([]domain.FastqFile, error) {
	dir = filepath.Clean(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]domain.FastqFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, domain.FastqFile{
			AbsPath: filepath.Join(dir, e.Name()),
			RelPath: e.Name(),
			Name:    e.Name(),
			Ext:     suffix,
			Size:    info.Size(),
		})
	}
	// os.ReadDir 已按文件名排序；这里不重复排序。
	return files, nil
}

// matchExt 返回 name 命中的最长扩展名（".fastq.gz" 优先于 ".gz"）。
func matchExt(name string, exts []string) (string, bool) {
	best := ""
	for _, x := range exts {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if strings.HasSuffix(name, x) && len(x) > len(best) {
			best = x
		}
	}
	return best, best != ""
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		// x 是相对路径：相对 root。
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	// 排除列表排序后，isExcluded 的行为更可预测（且便于测试）。
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
