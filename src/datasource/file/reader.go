// reader.go
package file

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const readBufferSize = 64 * 1024

// ParseError CSV结构错误(未闭合的引号, 字段数不一致等)
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader 流式读取CSV文件, 第一行作为表头
type Reader struct {
	path   string
	file   *os.File
	csv    *csv.Reader
	header *Header
}

// Open 打开CSV文件并读取表头
// 空文件得到空表头, 随后的 Read 直接返回 io.EOF
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开CSV文件失败: %w", err)
	}

	// 去掉可能存在的BOM, 其余字节原样传递
	decoded := transform.NewReader(
		bufio.NewReaderSize(f, readBufferSize),
		unicode.BOMOverride(transform.Nop),
	)

	r := &Reader{
		path: path,
		file: f,
		csv:  csv.NewReader(decoded),
	}

	columns, err := r.csv.Read()
	switch {
	case errors.Is(err, io.EOF):
		r.header = NewHeader(nil)
	case err != nil:
		f.Close()
		return nil, r.parseError(err)
	default:
		// 复制一份, 表头在整个文件读取期间共享
		r.header = NewHeader(append([]string(nil), columns...))
	}
	return r, nil
}

func (r *Reader) Header() *Header {
	return r.header
}

// Read 返回下一行, 文件结束时返回 io.EOF
func (r *Reader) Read() (Row, error) {
	if len(r.header.Names()) == 0 {
		return Row{}, io.EOF
	}
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, r.parseError(err)
	}
	return NewRow(r.header, record), nil
}

func (r *Reader) Close() error {
	return r.file.Close()
}

func (r *Reader) parseError(err error) error {
	pe := &ParseError{Path: r.path, Err: err}
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		pe.Line = csvErr.StartLine
		pe.Err = csvErr.Err
	}
	return pe
}

// ReadAll 按输入顺序读取文件中全部数据行
func ReadAll(path string) ([]Row, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var rows []Row
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// EnsureDir 确保目录存在
func EnsureDir(dirPath string) error {
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}
