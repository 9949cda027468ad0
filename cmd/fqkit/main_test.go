package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/John-Robertt/fqkit/internal/config"
	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/infra/fsx"
	"github.com/John-Robertt/fqkit/internal/refdoc"
)

const helloMD5 = "5d41402abc4b2a76b9719d911017c592"

func TestCLI_MD5Check_NoTTY_StdoutOnlyReportJSON(t *testing.T) {
	// 锁定对外契约：stdout 非 TTY 时只能输出一个报告 JSON（日志必须走 stderr）。
	root := t.TempDir()
	data := filepath.Join(root, "data")
	writeFile(t, filepath.Join(data, "seqA.fastq"), "hello")
	doc := filepath.Join(root, "md5.txt")
	writeFile(t, doc, "seqA  "+helloMD5+"\n")
	out := filepath.Join(root, "res.tsv")

	code, stdout, stderr := runCLI(t, "md5check", "-p", doc, "-i", data, "-o", out)
	if code != exitOK {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, stderr)
	}

	var rr domain.VerifyReport
	if err := json.Unmarshal([]byte(stdout), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 VerifyReport JSON：%v\nstdout=%q", err, stdout)
	}
	if rr.Summary.Total != 1 || rr.Summary.Matched != 1 || rr.Output != out {
		t.Fatalf("报告不符合预期：%+v", rr)
	}
	if !strings.Contains(stderr, `"msg":"verified"`) {
		t.Fatalf("stderr 应包含 JSON 日志：%s", stderr)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("TSV 报告应已写入：%v", err)
	}
}

func TestCLI_MD5Check_MissingFileExitsOne(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "md5.txt")
	writeFile(t, doc, "seqB "+helloMD5+"\n")

	code, stdout, _ := runCLI(t, "md5check", "--pdf", doc, "--input", root, "--output", filepath.Join(root, "r.tsv"))
	if code != exitMismatch {
		t.Fatalf("期望退出码 1，实际 %d", code)
	}
	var rr domain.VerifyReport
	if err := json.Unmarshal([]byte(stdout), &rr); err != nil {
		t.Fatalf("stdout 不是合法 JSON：%v", err)
	}
	if rr.Summary.Missing != 1 {
		t.Fatalf("期望 1 条 MISSING_FILE：%+v", rr.Summary)
	}
}

func TestCLI_MD5Check_MissingFlagIsUsageError(t *testing.T) {
	code, stdout, stderr := runCLI(t, "md5check", "--input", t.TempDir())
	if code != exitFatal {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	if stdout != "" {
		t.Fatalf("用法错误不应输出到 stdout：%q", stdout)
	}
	if !strings.Contains(stderr, "pdf") {
		t.Fatalf("stderr 应提示缺少 --pdf：%s", stderr)
	}
}

func TestCLI_MD5Check_MissingDocIsFatal(t *testing.T) {
	root := t.TempDir()
	code, stdout, _ := runCLI(t, "md5check", "-p", filepath.Join(root, "nope.pdf"), "-i", root, "-o", filepath.Join(root, "r.tsv"))
	if code != exitFatal {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	var er errorReport
	if err := json.Unmarshal([]byte(stdout), &er); err != nil {
		t.Fatalf("stdout 应为错误 JSON：%v (%q)", err, stdout)
	}
	if er.ErrorCode != domain.ErrCodeIOFailed {
		t.Fatalf("期望 error_code=%q，实际 %q", domain.ErrCodeIOFailed, er.ErrorCode)
	}
}

func TestCLI_Count(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "s1", "merged_1.fastq"), "@r\nA\n+\nI\n")

	code, stdout, stderr := runCLI(t, "count", "--input_dir", root)
	if code != exitOK {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, stderr)
	}
	var rep domain.CountReport
	if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
		t.Fatalf("stdout 不是合法 JSON：%v", err)
	}
	if rep.TotalReads != 1 || len(rep.Counts) != 1 {
		t.Fatalf("计数不符合预期：%+v", rep)
	}
	if _, err := os.Stat(filepath.Join(root, config.DefaultSummaryName)); err != nil {
		t.Fatalf("汇总文件应已写入：%v", err)
	}
}

func TestCLI_Merge_InvalidNChars(t *testing.T) {
	code, stdout, _ := runCLI(t, "merge", "-i", t.TempDir(), "-n", "0")
	if code != exitFatal {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	var er errorReport
	if err := json.Unmarshal([]byte(stdout), &er); err != nil {
		t.Fatalf("stdout 应为错误 JSON：%v", err)
	}
	if er.ErrorCode != config.ErrCodeInvalid {
		t.Fatalf("期望 error_code=%q，实际 %q", config.ErrCodeInvalid, er.ErrorCode)
	}
}

func TestCLI_Merge(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sampleX_1.fastq"), "X1\n")
	writeFile(t, filepath.Join(root, "sampleY_1.fastq"), "Y1\n")

	code, stdout, stderr := runCLI(t, "merge", "--input_dir", root, "--n_chars", "7")
	if code != exitOK {
		t.Fatalf("期望退出码 0，实际 %d\nstderr=%s", code, stderr)
	}
	var rep domain.MergeReport
	if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
		t.Fatalf("stdout 不是合法 JSON：%v", err)
	}
	if len(rep.Moved) != 2 || len(rep.Merged) != 2 {
		t.Fatalf("merge 报告不符合预期：%+v", rep)
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&config.Error{Code: config.ErrCodeNotFound}, config.ErrCodeNotFound},
		{fmt.Errorf("x: %w", context.Canceled), domain.ErrCodeCanceled},
		{&refdoc.UnsupportedError{Path: "a.gz", MIME: "application/gzip"}, domain.ErrCodeUnsupportedDoc},
		{&domain.IOError{Op: "move", Err: &fsx.CrossDeviceError{Err: errors.New("exdev")}}, domain.ErrCodeMoveFailed},
		{&domain.IOError{Op: "move", Err: os.ErrExist}, domain.ErrCodeTargetConflict},
		{&domain.IOError{Op: "read", Err: errors.New("boom")}, domain.ErrCodeIOFailed},
		{errors.New("other"), domain.ErrCodeInvalidInput},
	}
	for _, tc := range cases {
		if got := errorCode(tc.err); got != tc.want {
			t.Fatalf("errorCode(%v) 期望 %q，实际 %q", tc.err, tc.want, got)
		}
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, streams{out: &stdout, err: &stderr})
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}

func TestBindVerifyFlags_OutputChanged(t *testing.T) {
	var a config.VerifyArgs
	flags := pflag.NewFlagSet("md5check", pflag.ContinueOnError)
	bindVerifyFlags(flags, &a)
	if err := flags.Parse([]string{"-p", "md5.pdf", "--input=data"}); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if a.DocPath != "md5.pdf" || a.Dir != "data" {
		t.Fatalf("flag 绑定不符合预期：%+v", a)
	}
	if flags.Changed("output") || a.Output != config.DefaultMD5Output {
		t.Fatalf("未指定 --output 时应保持默认且 Changed=false：%+v", a)
	}
}
