package processor

import "AirportIndex/src/datasource/file"

// Index 按某一列建立的查找表, 构建后只读
type Index struct {
	key      string
	multiple bool
	one      map[string]file.Row
	many     map[string][]file.Row
}

// BuildIndex 以 keyColumn 为键建立索引
//   - multiple 为 false: 一对一, 重复的键以最后一行为准
//   - multiple 为 true: 一对多, 同键的行按输入顺序追加
//
// 缺少键列或键为空的行归入空字符串键
func BuildIndex(rows []file.Row, keyColumn string, multiple bool) *Index {
	idx := &Index{key: keyColumn, multiple: multiple}
	if multiple {
		idx.many = make(map[string][]file.Row)
		for _, row := range rows {
			k := row.Value(keyColumn)
			idx.many[k] = append(idx.many[k], row)
		}
		return idx
	}

	idx.one = make(map[string]file.Row, len(rows))
	for _, row := range rows {
		idx.one[row.Value(keyColumn)] = row
	}
	return idx
}

// One 一对一查找
func (idx *Index) One(key string) (file.Row, bool) {
	if idx == nil || idx.one == nil {
		return file.Row{}, false
	}
	row, ok := idx.one[key]
	return row, ok
}

// Many 一对多查找, 无匹配时返回 nil
func (idx *Index) Many(key string) []file.Row {
	if idx == nil || idx.many == nil {
		return nil
	}
	return idx.many[key]
}

func (idx *Index) Key() string    { return idx.key }
func (idx *Index) Multiple() bool { return idx.multiple }

// Len 不同键的数量
func (idx *Index) Len() int {
	if idx.multiple {
		return len(idx.many)
	}
	return len(idx.one)
}
