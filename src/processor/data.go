// data.go
package processor

import (
	"AirportIndex/src/datasource/file"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 汇总表的列名
const (
	ColIdent       = "ident"
	ColName        = "name"
	ColCountry     = "iso_country"
	ColCountryName = "country_name"
	ColRegion      = "iso_region"
	ColRegionName  = "region_name"
	ColRunways     = "runways"
	ColFrequencies = "frequencies"
	ColNavaids     = "navaids"
)

// DataProcessor 基于 dataframe 的机场汇总
type DataProcessor struct {
	df dataframe.DataFrame
}

// NewDataProcessor 每个机场一行: 标识, 名称, 国家/地区及关联数量
func NewDataProcessor(airports []Airport, cols JoinColumns) *DataProcessor {
	n := len(airports)
	var (
		idents       = make([]string, 0, n)
		names        = make([]string, 0, n)
		countries    = make([]string, 0, n)
		countryNames = make([]string, 0, n)
		regions      = make([]string, 0, n)
		regionNames  = make([]string, 0, n)
		runways      = make([]int, 0, n)
		freqs        = make([]int, 0, n)
		navaids      = make([]int, 0, n)
	)

	for i := range airports {
		a := &airports[i]
		idents = append(idents, a.Ident())
		names = append(names, a.Row.Value("name"))
		countries = append(countries, a.Row.Value(cols.Country))
		regions = append(regions, a.Row.Value(cols.Region))
		countryNames = append(countryNames, nameOf(a.Country))
		regionNames = append(regionNames, nameOf(a.Region))
		runways = append(runways, len(a.Runways))
		freqs = append(freqs, len(a.Frequencies))
		navaids = append(navaids, len(a.Navaids))
	}

	df := dataframe.New(
		series.New(idents, series.String, ColIdent),
		series.New(names, series.String, ColName),
		series.New(countries, series.String, ColCountry),
		series.New(countryNames, series.String, ColCountryName),
		series.New(regions, series.String, ColRegion),
		series.New(regionNames, series.String, ColRegionName),
		series.New(runways, series.Int, ColRunways),
		series.New(freqs, series.Int, ColFrequencies),
		series.New(navaids, series.Int, ColNavaids),
	)
	return &DataProcessor{df: df}
}

func nameOf(row *file.Row) string {
	if row == nil {
		return ""
	}
	return row.Value("name")
}

// DataFrame 返回汇总表
func (p *DataProcessor) DataFrame() dataframe.DataFrame {
	return p.df
}

// CalculateMetrics 计算汇总指标
func (p *DataProcessor) CalculateMetrics() (map[string]interface{}, error) {
	if err := p.df.Err; err != nil {
		return nil, err
	}

	metrics := map[string]interface{}{
		"total_airports":    p.df.Nrow(),
		"with_runways":      0,
		"with_frequencies":  0,
		"with_navaids":      0,
		"unmatched_country": 0,
		"unmatched_region":  0,
	}
	if p.df.Nrow() == 0 {
		return metrics, nil
	}

	filters := map[string]dataframe.F{
		"with_runways":      {Colname: ColRunways, Comparator: series.Greater, Comparando: 0},
		"with_frequencies":  {Colname: ColFrequencies, Comparator: series.Greater, Comparando: 0},
		"with_navaids":      {Colname: ColNavaids, Comparator: series.Greater, Comparando: 0},
		"unmatched_country": {Colname: ColCountryName, Comparator: series.Eq, Comparando: ""},
		"unmatched_region":  {Colname: ColRegionName, Comparator: series.Eq, Comparando: ""},
	}
	for name, f := range filters {
		filtered := p.df.Filter(f)
		if filtered.Err != nil {
			return nil, filtered.Err
		}
		metrics[name] = filtered.Nrow()
	}
	return metrics, nil
}
