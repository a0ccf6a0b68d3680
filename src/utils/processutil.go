package utils

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Sheet1"

// SaveToExcel 将DataFrame保存为xlsx: 第一行为列名, 之后每行一条记录
func SaveToExcel(df dataframe.DataFrame, filePath string) error {
	if df.Err != nil {
		return fmt.Errorf("dataframe 无效: %w", df.Err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("创建工作表写入器失败: %w", err)
	}

	// 写入列名
	colNames := df.Names()
	header := make([]interface{}, len(colNames))
	for i, name := range colNames {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("写入列名失败: %w", err)
	}

	// 写入数据
	cols := make([][]interface{}, len(colNames))
	for i, name := range colNames {
		s := df.Col(name)
		cols[i] = make([]interface{}, s.Len())
		for j := 0; j < s.Len(); j++ {
			cols[i][j] = s.Val(j)
		}
	}
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		values := make([]interface{}, len(colNames))
		for colIdx := range colNames {
			values[colIdx] = cols[colIdx][rowIdx]
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("写入第%d行失败: %w", rowIdx+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("写入工作表失败: %w", err)
	}

	// 保存文件
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
