package file

import (
	"bytes"
	"encoding/json"
)

// Header CSV表头, 同一文件的所有行共享
type Header struct {
	names []string       // 去重后的列名, 保持首次出现的顺序
	pos   map[string]int // 列名 -> 记录中的下标, 重名列取最后一列
}

func NewHeader(columns []string) *Header {
	h := &Header{pos: make(map[string]int, len(columns))}
	for i, name := range columns {
		if _, ok := h.pos[name]; !ok {
			h.names = append(h.names, name)
		}
		h.pos[name] = i
	}
	return h
}

// Names 返回列名, 调用方不得修改
func (h *Header) Names() []string {
	if h == nil {
		return nil
	}
	return h.names
}

func (h *Header) Has(name string) bool {
	if h == nil {
		return false
	}
	_, ok := h.pos[name]
	return ok
}

// Row 一条CSV记录: 列名到字符串值的有序映射, 读取后不可变
type Row struct {
	header *Header
	values []string
}

func NewRow(header *Header, values []string) Row {
	return Row{header: header, values: values}
}

// Get 返回列值, 列不存在时 ok 为 false
func (r Row) Get(column string) (string, bool) {
	if r.header == nil {
		return "", false
	}
	i, ok := r.header.pos[column]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Value 同 Get, 缺失列返回空字符串
func (r Row) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

func (r Row) Columns() []string {
	return r.header.Names()
}

func (r Row) Header() *Header {
	return r.header
}

// IsZero 判断是否为未初始化的行
func (r Row) IsZero() bool {
	return r.header == nil
}

// MarshalJSON 按CSV列顺序输出对象
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if _, err := r.EncodeFields(&buf, nil); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeFields 将各列以 "name":"value" 形式逗号分隔写入 buf (不含花括号),
// skip 返回 true 的列被跳过. 返回写入的字段数.
func (r Row) EncodeFields(buf *bytes.Buffer, skip func(column string) bool) (int, error) {
	n := 0
	for _, name := range r.Columns() {
		if skip != nil && skip(name) {
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		if err := WriteJSONString(buf, name); err != nil {
			return n, err
		}
		buf.WriteByte(':')
		if err := WriteJSONString(buf, r.Value(name)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// WriteJSONString 写入JSON字符串, 不转义 <, >, &
func WriteJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode 会追加换行
	buf.Truncate(buf.Len() - 1)
	return nil
}
