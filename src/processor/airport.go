package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"AirportIndex/src/datasource/file"
)

// 附加到机场记录上的字段名
const (
	FieldRunways     = "runways"
	FieldFrequencies = "frequencies"
	FieldCountry     = "country"
	FieldRegion      = "region"
	FieldNavaids     = "navaids"
)

var derivedFields = map[string]bool{
	FieldRunways:     true,
	FieldFrequencies: true,
	FieldCountry:     true,
	FieldRegion:      true,
	FieldNavaids:     true,
}

// Indexes 参与关联的五个索引
type Indexes struct {
	Runways     *Index // airport_ident -> []跑道
	Frequencies *Index // airport_ident -> []频率
	Countries   *Index // code -> 国家
	Regions     *Index // code -> 地区
	Navaids     *Index // associated_airport -> []导航台
}

// JoinColumns 机场表中用于关联的列
type JoinColumns struct {
	Ident   string
	Country string
	Region  string
}

// Airport 补全了关联数据的机场记录
type Airport struct {
	Row         file.Row
	Runways     []file.Row
	Frequencies []file.Row
	Country     *file.Row // nil 编码为 null
	Region      *file.Row
	Navaids     []file.Row
	ident       string
}

func (a *Airport) Ident() string { return a.ident }

// Join 按输入顺序为每个机场挂上跑道, 频率, 国家, 地区和导航台
func Join(airports []file.Row, idx Indexes, cols JoinColumns) []Airport {
	out := make([]Airport, 0, len(airports))
	for _, row := range airports {
		ident := row.Value(cols.Ident)
		a := Airport{
			Row:         row,
			Runways:     idx.Runways.Many(ident),
			Frequencies: idx.Frequencies.Many(ident),
			Navaids:     idx.Navaids.Many(ident),
			ident:       ident,
		}
		if country, ok := idx.Countries.One(row.Value(cols.Country)); ok {
			a.Country = &country
		}
		if region, ok := idx.Regions.One(row.Value(cols.Region)); ok {
			a.Region = &region
		}
		out = append(out, a)
	}
	return out
}

// MarshalJSON 先输出机场原有列(保持CSV顺序), 再依次输出
// runways, frequencies, country, region, navaids. 与这些名字同名的原有列被覆盖.
func (a Airport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n, err := a.Row.EncodeFields(&buf, func(column string) bool { return derivedFields[column] })
	if err != nil {
		return nil, err
	}

	fields := []struct {
		name  string
		value any
	}{
		{FieldRunways, rowList(a.Runways)},
		{FieldFrequencies, rowList(a.Frequencies)},
		{FieldCountry, a.Country},
		{FieldRegion, a.Region},
		{FieldNavaids, rowList(a.Navaids)},
	}
	for _, f := range fields {
		if n > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", f.name)
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(f.value); err != nil {
			return nil, err
		}
		// Encode 会追加换行
		buf.Truncate(buf.Len() - 1)
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// rowList 无匹配时编码为 [] 而不是 null
func rowList(rows []file.Row) []file.Row {
	if rows == nil {
		return []file.Row{}
	}
	return rows
}

// WriteError 写出某个机场的JSON文件失败
type WriteError struct {
	Ident string
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q to %s: %v", e.Ident, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ProgressFunc 每写完一条记录回调一次, current 从 1 开始
type ProgressFunc func(current, total int, ident string)

// Emitter 将机场记录逐条写为 <dir>/<ident>.json
type Emitter struct {
	dir      string
	progress ProgressFunc
}

// NewEmitter progress 可为 nil
func NewEmitter(dir string, progress ProgressFunc) *Emitter {
	return &Emitter{dir: dir, progress: progress}
}

// Emit 顺序写出全部记录, 第一个写入失败即中止, 之前写出的文件保留
func (e *Emitter) Emit(airports []Airport) error {
	for i := range airports {
		a := &airports[i]
		if err := e.write(a); err != nil {
			return err
		}
		if e.progress != nil {
			e.progress(i+1, len(airports), a.Ident())
		}
	}
	return nil
}

// Path 返回某个标识对应的输出文件
func (e *Emitter) Path(ident string) string {
	return filepath.Join(e.dir, ident+".json")
}

func (e *Emitter) write(a *Airport) error {
	ident := a.Ident()
	path := e.Path(ident)
	if ident == "" || strings.ContainsAny(ident, `/\`) {
		return &WriteError{Ident: ident, Path: path, Err: fmt.Errorf("标识不能作为文件名")}
	}

	data, err := encodeAirport(a)
	if err != nil {
		return &WriteError{Ident: ident, Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Ident: ident, Path: path, Err: err}
	}
	return nil
}

// encodeAirport 4空格缩进, 不转义HTML字符, 末尾不带换行
func encodeAirport(a *Airport) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
