package fsx

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFileAtomic(dir, "a.tsv", []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// 覆盖写。
	if err := WriteFileAtomic(dir, "a.tsv", []byte("world")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.tsv"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "world" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	assertNoTemp(t, dir, "a.tsv")
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	err := WriteFileAtomic(dir, "a.tsv", []byte("hello"))
	if err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	assertNoTemp(t, dir, "a.tsv")
	if _, err := os.Stat(filepath.Join(dir, "a.tsv")); !os.IsNotExist(err) {
		t.Fatalf("不应写出最终文件：err=%v", err)
	}
}

func TestWriteStreamAtomic_FillErrorKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomic(dir, "merged_1.fastq", []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	boom := errors.New("boom")
	err := WriteStreamAtomic(dir, "merged_1.fastq", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("期望 boom，实际：%v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "merged_1.fastq"))
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "old" {
		t.Fatalf("失败时不应改动旧文件：%q", string(b))
	}
	assertNoTemp(t, dir, "merged_1.fastq")
}

func TestWriteStreamAtomic_TargetConflictDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "out.tsv"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomic(dir, "out.tsv", []byte("x"))
	if !IsPathTypeConflict(err) {
		t.Fatalf("期望 PathTypeConflictError，实际：%T %v", err, err)
	}
}

func TestMoveNoOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a_1.fastq")
	dst := filepath.Join(dir, "sub", "a_1.fastq")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	if err := MoveNoOverwrite(src, dst); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("目标文件不存在：%v", err)
	}

	// 目标已存在：不覆盖。
	if err := os.WriteFile(src, []byte("y"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	if err := MoveNoOverwrite(src, dst); !errors.Is(err, os.ErrExist) {
		t.Fatalf("期望 os.ErrExist，实际：%v", err)
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "x" {
		t.Fatalf("目标文件被覆盖：%q", string(b))
	}
}

func assertNoTemp(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+name+".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}
