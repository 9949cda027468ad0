package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanMerged_PrefixRequiredForAllExts(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "S1", "merged_1.fastq"))
	touch(t, filepath.Join(root, "S1", "merged_2.fastq.gz"))
	// 没有 merged_ 前缀：即使是 .fastq.gz 也不计数。
	touch(t, filepath.Join(root, "S1", "S1_1.fastq.gz"))
	touch(t, filepath.Join(root, "S1", "S1_1.fastq"))
	touch(t, filepath.Join(root, "read_count_summary.tsv"))

	got, err := ScanMerged(root, nil, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个文件，实际 %d：%+v", len(got), got)
	}
	if got[0].RelPath != filepath.Join("S1", "merged_1.fastq") || got[0].Ext != ".fastq" {
		t.Fatalf("第一个文件不符合预期：%+v", got[0])
	}
	if got[1].RelPath != filepath.Join("S1", "merged_2.fastq.gz") || got[1].Ext != ".fastq.gz" {
		t.Fatalf("第二个文件不符合预期：%+v", got[1])
	}
}

func TestScanMerged_ExcludeDirsAndSorted(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "b", "merged_1.fastq"))
	touch(t, filepath.Join(root, "a", "merged_1.fastq"))
	touch(t, filepath.Join(root, "raw", "merged_1.fastq"))

	got, err := ScanMerged(root, []string{"raw"}, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个文件，实际 %d", len(got))
	}
	if got[0].RelPath != filepath.Join("a", "merged_1.fastq") || got[1].RelPath != filepath.Join("b", "merged_1.fastq") {
		t.Fatalf("输出未按 RelPath 排序：%q %q", got[0].RelPath, got[1].RelPath)
	}
}

func TestScanMerged_CustomExts(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "merged_1.fq.gz"))
	touch(t, filepath.Join(root, "merged_1.fastq"))

	got, err := ScanMerged(root, nil, []string{".fq.gz"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 || got[0].Name != "merged_1.fq.gz" {
		t.Fatalf("自定义扩展名未生效：%+v", got)
	}
}

func TestListFastq_TopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "sampleY_1.fastq"))
	touch(t, filepath.Join(dir, "sampleX_1.fastq"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "sampleZ_1.fastq"))

	got, err := ListFastq(dir, ".fastq")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 || got[0].Name != "sampleX_1.fastq" || got[1].Name != "sampleY_1.fastq" {
		t.Fatalf("结果不符合预期：%+v", got)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
