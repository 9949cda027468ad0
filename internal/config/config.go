package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/fqkit/internal/infra/digest"
	"github.com/John-Robertt/fqkit/internal/scan"
)

const (
	// ErrCodeNotFound 表示显式指定的 --config 文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段/参数不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是工作目录下可选配置文件的固定文件名。
	FileName = "fqkit.json"

	DefaultMD5Output   = "md5_check_results.tsv"
	DefaultSummaryName = "read_count_summary.tsv"

	minChunkSize = 512
	maxChunkSize = 16 << 20
)

// FileConfig 对应 fqkit.json 的解析结构（所有字段可选）。
type FileConfig struct {
	MD5Output   string   `json:"md5_output"`
	ChunkSize   int      `json:"chunk_size"`
	FastqExts   []string `json:"fastq_exts"`
	ExcludeDirs []string `json:"exclude_dirs"`
	SummaryName string   `json:"summary_name"`
}

// VerifyArgs 是 md5check 的 CLI 入口，保留“是否显式指定”的信息，
// 保证 CLI > 配置文件 > 默认 的覆盖优先级可实现。
type VerifyArgs struct {
	DocPath string
	Dir     string

	Output    string
	OutputSet bool

	ConfigPath string
}

type CountArgs struct {
	Dir        string
	ConfigPath string
}

type MergeArgs struct {
	Dir        string
	NChars     int
	ConfigPath string
}

// VerifyConfig 是 md5check 合并并做最小规范化后的最终配置（路径均为 clean + absolute）。
type VerifyConfig struct {
	DocPath   string
	Dir       string
	Output    string
	ChunkSize int
}

type CountConfig struct {
	Dir         string
	SummaryName string
	FastqExts   []string
	ExcludeDirs []string
}

type MergeConfig struct {
	Dir    string
	NChars int
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadVerify 合并 md5check 的最终配置。
//
// 覆盖优先级（固定）：
// - output：CLI --output > config md5_output > 默认 md5_check_results.tsv
// - chunk_size：仅由 config 控制（CLI 不暴露）
// - 相对路径一律相对 cwd
func LoadVerify(cwd string, cli VerifyArgs) (VerifyConfig, error) {
	cwdAbs, fc, _, err := load(cwd, cli.ConfigPath)
	if err != nil {
		return VerifyConfig{}, err
	}

	if strings.TrimSpace(cli.DocPath) == "" {
		return VerifyConfig{}, invalidArg("--pdf 不能为空")
	}
	if strings.TrimSpace(cli.Dir) == "" {
		return VerifyConfig{}, invalidArg("--input 不能为空")
	}

	output := DefaultMD5Output
	if cli.OutputSet {
		output = cli.Output
	} else if strings.TrimSpace(fc.MD5Output) != "" {
		output = fc.MD5Output
	}
	if strings.TrimSpace(output) == "" {
		return VerifyConfig{}, invalidArg("--output 不能为空")
	}

	chunk := fc.ChunkSize
	if chunk == 0 {
		chunk = digest.DefaultChunkSize
	}
	// 超出范围截断，而不是报错。
	if chunk < minChunkSize {
		chunk = minChunkSize
	}
	if chunk > maxChunkSize {
		chunk = maxChunkSize
	}

	return VerifyConfig{
		DocPath:   absCleanFrom(cwdAbs, cli.DocPath),
		Dir:       absCleanFrom(cwdAbs, cli.Dir),
		Output:    absCleanFrom(cwdAbs, output),
		ChunkSize: chunk,
	}, nil
}

// LoadCount 合并 count 的最终配置；fastq_exts/exclude_dirs/summary_name 仅由 config 控制。
func LoadCount(cwd string, cli CountArgs) (CountConfig, error) {
	cwdAbs, fc, cfgPath, err := load(cwd, cli.ConfigPath)
	if err != nil {
		return CountConfig{}, err
	}
	if strings.TrimSpace(cli.Dir) == "" {
		return CountConfig{}, invalidArg("--input_dir 不能为空")
	}

	summary := DefaultSummaryName
	if s := strings.TrimSpace(fc.SummaryName); s != "" {
		if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
			return CountConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("summary_name 只能是文件名：%q", s)}
		}
		summary = s
	}

	exts := append([]string(nil), scan.DefaultFastqExts...)
	if len(fc.FastqExts) > 0 {
		exts = exts[:0]
		for _, x := range fc.FastqExts {
			x = strings.TrimSpace(x)
			if !strings.HasPrefix(x, ".") || len(x) < 2 {
				return CountConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("fastq_exts 必须以 '.' 开头：%q", x)}
			}
			exts = append(exts, x)
		}
	}

	return CountConfig{
		Dir:         absCleanFrom(cwdAbs, cli.Dir),
		SummaryName: summary,
		FastqExts:   exts,
		ExcludeDirs: append([]string(nil), fc.ExcludeDirs...),
	}, nil
}

// LoadMerge 合并 merge 的最终配置；n_chars 必须 >= 1。
func LoadMerge(cwd string, cli MergeArgs) (MergeConfig, error) {
	cwdAbs, _, _, err := load(cwd, cli.ConfigPath)
	if err != nil {
		return MergeConfig{}, err
	}
	if strings.TrimSpace(cli.Dir) == "" {
		return MergeConfig{}, invalidArg("--input_dir 不能为空")
	}
	if cli.NChars < 1 {
		return MergeConfig{}, invalidArg(fmt.Sprintf("--n_chars 必须 >= 1，实际是 %d", cli.NChars))
	}
	return MergeConfig{
		Dir:    absCleanFrom(cwdAbs, cli.Dir),
		NChars: cli.NChars,
	}, nil
}

// load 按固定规则发现并读取配置文件：
// 1) 显式 --config：必须存在
// 2) 否则尝试 <cwd>/fqkit.json（可选）
func load(cwd, explicit string) (cwdAbs string, fc FileConfig, cfgPath string, err error) {
	cwdAbs, err = filepath.Abs(cwd)
	if err != nil {
		return "", FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(explicit) != "" {
		cfgPath = absCleanFrom(cwdAbs, explicit)
		var exists bool
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return "", FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return "", FileConfig{}, "", &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		return cwdAbs, fc, cfgPath, nil
	}

	cfgPath = filepath.Join(cwdAbs, FileName)
	fc, _, err = readFileConfig(cfgPath)
	if err != nil {
		return "", FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return cwdAbs, fc, cfgPath, nil
}

func invalidArg(msg string) error {
	return &Error{Code: ErrCodeInvalid, Err: errors.New(msg)}
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
