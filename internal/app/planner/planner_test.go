package planner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/John-Robertt/fqkit/internal/config"
	"github.com/John-Robertt/fqkit/internal/domain"
)

func TestPlanOrganize(t *testing.T) {
	dir := t.TempDir()
	files := []domain.FastqFile{
		{Name: "sampleX_1.fastq"},
		{Name: "sampleY_1.fastq"},
	}
	groups := []domain.SampleGroup{
		{Prefix: "sampleX", FileIdx: []int{0}},
		{Prefix: "sampleY", FileIdx: []int{1}},
	}

	moves, err := PlanOrganize(dir, files, groups)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []domain.MovePlan{
		{SrcAbs: filepath.Join(dir, "sampleX_1.fastq"), DstAbs: filepath.Join(dir, "sampleX", "sampleX_1.fastq")},
		{SrcAbs: filepath.Join(dir, "sampleY_1.fastq"), DstAbs: filepath.Join(dir, "sampleY", "sampleY_1.fastq")},
	}
	if !reflect.DeepEqual(moves, want) {
		t.Fatalf("移动计划不符合预期：\ngot=%+v\nwant=%+v", moves, want)
	}
}

func TestPlanOrganize_PrefixEqualsName(t *testing.T) {
	files := []domain.FastqFile{{Name: "a.fastq"}}
	groups := []domain.SampleGroup{{Prefix: "a.fastq", FileIdx: []int{0}}}

	_, err := PlanOrganize(t.TempDir(), files, groups)
	if config.Code(err) != config.ErrCodeInvalid {
		t.Fatalf("前缀等于文件名时应返回 %s，实际：%v", config.ErrCodeInvalid, err)
	}
}

func TestPlanOrganize_DotPrefixRejected(t *testing.T) {
	cases := []struct {
		name   string
		file   string
		prefix string
	}{
		{"dot", ".x_1.fastq", "."},
		{"dotdot", "..x_1.fastq", ".."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files := []domain.FastqFile{{Name: tc.file}}
			groups := []domain.SampleGroup{{Prefix: tc.prefix, FileIdx: []int{0}}}

			moves, err := PlanOrganize(t.TempDir(), files, groups)
			if config.Code(err) != config.ErrCodeInvalid {
				t.Fatalf("期望 %s，实际：%v", config.ErrCodeInvalid, err)
			}
			if moves != nil {
				t.Fatalf("出错时不应返回移动计划：%+v", moves)
			}
		})
	}
}

func TestPlanMerges_SortedAndSkipMerged(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b_1.fastq", "a_1.fastq", "a_2.fastq", "merged_1.fastq", "notes.txt", ".merged_2.fastq.tmp-1"} {
		write(t, filepath.Join(dir, n))
	}

	plans, err := PlanMerges(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("期望 2 个计划，实际 %d：%+v", len(plans), plans)
	}
	if plans[0].Kind != domain.MergeForward || !reflect.DeepEqual(plans[0].Inputs, []string{filepath.Join(dir, "a_1.fastq"), filepath.Join(dir, "b_1.fastq")}) {
		t.Fatalf("正向计划不符合预期：%+v", plans[0])
	}
	if plans[0].Output != filepath.Join(dir, MergedForward) {
		t.Fatalf("正向输出路径不符合预期：%q", plans[0].Output)
	}
	if plans[1].Kind != domain.MergeReverse || len(plans[1].Inputs) != 1 {
		t.Fatalf("反向计划不符合预期：%+v", plans[1])
	}
}

func TestPlanMerges_NoInputs(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "x.fastq"))

	plans, err := PlanMerges(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(plans) != 0 {
		t.Fatalf("期望无计划，实际 %+v", plans)
	}
}

func TestListSampleDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "b"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "a"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	write(t, filepath.Join(dir, "c_1.fastq"))

	got, err := ListSampleDirs(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
