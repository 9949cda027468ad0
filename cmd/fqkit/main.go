package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/John-Robertt/fqkit/internal/app/count"
	"github.com/John-Robertt/fqkit/internal/app/merge"
	"github.com/John-Robertt/fqkit/internal/app/observe"
	"github.com/John-Robertt/fqkit/internal/app/verify"
	"github.com/John-Robertt/fqkit/internal/config"
	"github.com/John-Robertt/fqkit/internal/domain"
	"github.com/John-Robertt/fqkit/internal/infra/fsx"
	"github.com/John-Robertt/fqkit/internal/refdoc"
)

// 退出码（对外契约）：
// - 0：全部成功（md5check：每条记录都是 MATCH，零条记录也算）
// - 1：md5check 存在 MISMATCH 或 MISSING_FILE
// - 2：参数/配置错误，或致命 I/O 错误
const (
	exitOK       = 0
	exitMismatch = 1
	exitFatal    = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{
		out:    os.Stdout,
		err:    os.Stderr,
		outTTY: isTTY(os.Stdout),
		errTTY: isTTY(os.Stderr),
	})
	stop()
	os.Exit(code)
}

// streams 把 stdout/stderr 与 TTY 判定注入命令树，测试可以在进程内运行。
type streams struct {
	out    io.Writer
	err    io.Writer
	outTTY bool
	errTTY bool
}

// exitError 携带业务退出码；RunE 之外的错误（flag 解析等）一律视为用法错误。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func run(ctx context.Context, args []string, s streams) int {
	root := newRootCmd(s)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(s.err, "参数错误：%v\n使用 \"fqkit --help\" 查看用法。\n", err)
	return exitFatal
}

func newRootCmd(s streams) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "fqkit",
		Short:         "FASTQ 数据整理工具：md5 校验 / read 计数 / 按样本合并",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(s.out)
	root.SetErr(s.err)
	root.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（未指定时读取 ./"+config.FileName+"，不存在则忽略）")

	root.AddCommand(
		newMD5CheckCmd(s, &configPath),
		newCountCmd(s, &configPath),
		newMergeCmd(s, &configPath),
	)
	return root
}

func newMD5CheckCmd(s streams, configPath *string) *cobra.Command {
	var args config.VerifyArgs

	cmd := &cobra.Command{
		Use:   "md5check --pdf <doc> --input <dir> [--output <tsv>]",
		Short: "按参考文档中的 MD5 清单校验目录内文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.OutputSet = cmd.Flags().Changed("output")
			args.ConfigPath = *configPath

			cwd, err := os.Getwd()
			if err != nil {
				return fail(s, err)
			}
			cfg, err := config.LoadVerify(cwd, args)
			if err != nil {
				return fail(s, err)
			}

			obs, done := pickObserver(s)
			defer done()

			rr, err := verify.Execute(cmd.Context(), cfg, refdoc.DefaultRegistry(), obs)
			if err != nil {
				return fail(s, err)
			}
			emitVerifyReport(s, rr)
			if !rr.AllMatched() {
				return &exitError{code: exitMismatch}
			}
			return nil
		},
	}
	bindVerifyFlags(cmd.Flags(), &args)
	_ = cmd.MarkFlagRequired("pdf")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newCountCmd(s streams, configPath *string) *cobra.Command {
	var args config.CountArgs

	cmd := &cobra.Command{
		Use:   "count --input_dir <dir>",
		Short: "统计目录树下 merged_*.fastq(.gz) 的 read 数",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.ConfigPath = *configPath

			cwd, err := os.Getwd()
			if err != nil {
				return fail(s, err)
			}
			cfg, err := config.LoadCount(cwd, args)
			if err != nil {
				return fail(s, err)
			}

			obs, done := pickObserver(s)
			defer done()

			rep, err := count.Execute(cmd.Context(), cfg, obs)
			if err != nil {
				return fail(s, err)
			}
			emitCountReport(s, rep)
			return nil
		},
	}
	bindCountFlags(cmd.Flags(), &args)
	_ = cmd.MarkFlagRequired("input_dir")
	return cmd
}

func newMergeCmd(s streams, configPath *string) *cobra.Command {
	var args config.MergeArgs

	cmd := &cobra.Command{
		Use:   "merge --input_dir <dir> --n_chars <n>",
		Short: "按文件名前 n 个字符整理 FASTQ，并拼接每个样本的 _1/_2 reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.ConfigPath = *configPath

			cwd, err := os.Getwd()
			if err != nil {
				return fail(s, err)
			}
			cfg, err := config.LoadMerge(cwd, args)
			if err != nil {
				return fail(s, err)
			}

			obs, done := pickObserver(s)
			defer done()

			rep, err := merge.Execute(cmd.Context(), cfg, obs)
			if err != nil {
				return fail(s, err)
			}
			emitMergeReport(s, rep)
			return nil
		},
	}
	bindMergeFlags(cmd.Flags(), &args)
	_ = cmd.MarkFlagRequired("input_dir")
	_ = cmd.MarkFlagRequired("n_chars")
	return cmd
}

// flag 名与短名是对外契约（与历史脚本的 -p/-i/-o/-n 保持一致）。
func bindVerifyFlags(flags *pflag.FlagSet, a *config.VerifyArgs) {
	flags.StringVarP(&a.DocPath, "pdf", "p", "", "参考文档（PDF/HTML/纯文本）")
	flags.StringVarP(&a.Dir, "input", "i", "", "待校验文件所在目录")
	flags.StringVarP(&a.Output, "output", "o", config.DefaultMD5Output, "TSV 报告路径")
}

func bindCountFlags(flags *pflag.FlagSet, a *config.CountArgs) {
	flags.StringVarP(&a.Dir, "input_dir", "i", "", "扫描的根目录")
}

func bindMergeFlags(flags *pflag.FlagSet, a *config.MergeArgs) {
	flags.StringVarP(&a.Dir, "input_dir", "i", "", "FASTQ 所在目录（只处理顶层）")
	flags.IntVarP(&a.NChars, "n_chars", "n", 0, "样本名前缀长度（按字符计，>= 1）")
}

// pickObserver 选择过程输出：
// - stderr 是 TTY：彩色的人类可读进度
// - 否则：zap JSON 日志写到 stderr
// stdout 始终只留给最终报告。
func pickObserver(s streams) (observe.Observer, func()) {
	if s.errTTY {
		ui := newProgressUI(s.err)
		return ui, ui.stop
	}
	zo := newZapObserver(s.err)
	return zo, zo.sync
}

// errorReport 是致命错误时 stdout 的 JSON（非 TTY 时保证 stdout 仍是单个 JSON）。
type errorReport struct {
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

func fail(s streams, err error) error {
	code := errorCode(err)
	if !s.outTTY {
		emitJSON(s.out, errorReport{ErrorCode: code, ErrorMsg: err.Error()})
	}
	fmt.Fprintf(s.err, "错误[%s]：%v\n", code, err)
	return &exitError{code: exitFatal, err: err}
}

// errorCode 把错误链映射为稳定的 error_code（优先级从具体到笼统）。
func errorCode(err error) string {
	if c := config.Code(err); c != "" {
		return c
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrCodeCanceled
	case refdoc.IsUnsupported(err):
		return domain.ErrCodeUnsupportedDoc
	case fsx.IsCrossDevice(err):
		return domain.ErrCodeMoveFailed
	case fsx.IsPathTypeConflict(err), errors.Is(err, fs.ErrExist):
		return domain.ErrCodeTargetConflict
	case domain.IsIOError(err):
		return domain.ErrCodeIOFailed
	default:
		return domain.ErrCodeInvalidInput
	}
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
