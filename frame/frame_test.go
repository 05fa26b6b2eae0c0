package frame

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const titanicCSV = `PassengerId,Survived,Pclass,Sex,Age,Fare
1,0,3,male,22,7.25
2,1,1,female,38,71.2833
3,1,3,female,26,7.925
4,1,1,female,35,53.1
5,0,3,male,35,8.05
6,0,3,male,,8.4583
7,0,1,male,54,51.8625
`

func TestReadCSVAndHead(t *testing.T) {
	df, err := ReadCSV(strings.NewReader(titanicCSV))
	require.NoError(t, err)
	assert.Equal(t, 7, df.Nrow())
	assert.Equal(t, []string{"PassengerId", "Survived", "Pclass", "Sex", "Age", "Fare"}, df.Names())

	// the empty Age cell is missing, not zero
	assert.True(t, df.Col("Age").Elem(5).IsNA())

	head, err := Head(df, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, head.Nrow())
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, head.Col("PassengerId").Records())

	all, err := Head(df, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, all.Nrow())

	_, err = Head(df, 0)
	assert.ErrorIs(t, err, ErrBadHeadSize)
}

func TestReadTSV(t *testing.T) {
	tsv := "Edition\tGrand Total\tCity\tCountry\n1896\t151\tAthens\tGreece\n1900\t512\tParis\tFrance\n"
	df, err := ReadCSV(strings.NewReader(tsv), WithDelimiter(DelimiterFor("EDITIONS.tsv")))
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"Athens", "Paris"}, df.Col("City").Records())

	assert.Equal(t, ',', DelimiterFor("hosts.csv"))
	assert.Equal(t, '\t', DelimiterFor("EDITIONS.TSV"))
}

func TestSelect(t *testing.T) {
	df, err := ReadCSV(strings.NewReader(titanicCSV))
	require.NoError(t, err)

	sel, err := Select(df, "Sex", "PassengerId")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sex", "PassengerId"}, sel.Names())

	_, err = Select(df, "Cabin")
	assert.ErrorIs(t, err, ErrNoSuchColumn)
}

func TestFilterEq(t *testing.T) {
	df, err := ReadCSV(strings.NewReader(titanicCSV))
	require.NoError(t, err)

	women, err := FilterEq(df, "Sex", "female")
	require.NoError(t, err)
	assert.Equal(t, 3, women.Nrow())

	none, err := FilterEq(df, "Sex", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, none.Nrow())
	assert.Equal(t, df.Names(), none.Names())
	assert.Equal(t, df.Types(), none.Types())

	_, err = FilterEq(df, "Cabin", "C85")
	assert.ErrorIs(t, err, ErrNoSuchColumn)
}

// worldIndPop writes rows for three countries over years, interleaved so
// every chunk holds a mix of countries.
func worldIndPop(years int) (string, map[string][]string) {
	var b strings.Builder
	b.WriteString("CountryName,CountryCode,Year,Total Population,Urban population (% of total)\n")
	byCode := map[string][]string{}
	countries := [][2]string{
		{"Arab World", "ARB"},
		{"Central Europe and the Baltics", "CEB"},
		{"Caribbean small states", "CSS"},
	}
	for y := 0; y < years; y++ {
		for i, c := range countries {
			total := strconv.FormatFloat(90000000+float64(y*12345+i), 'f', -1, 64)
			pct := strconv.FormatFloat(44.5+float64(y)*0.37+float64(i), 'f', -1, 64)
			row := []string{c[0], c[1], strconv.Itoa(1960 + y), total, pct}
			byCode[c[1]] = append(byCode[c[1]], strings.Join(row, ","))
			b.WriteString(strings.Join(row, ",") + "\n")
		}
	}
	return b.String(), byCode
}

func TestChunkReader(t *testing.T) {
	data, _ := worldIndPop(3) // 9 rows

	cr, err := NewChunkReader(strings.NewReader(data), 4)
	require.NoError(t, err)

	var sizes []int
	var types [][]series.Type
	for {
		chunk, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, chunk.Nrow())
		types = append(types, chunk.Types())
	}
	assert.Equal(t, []int{4, 4, 1}, sizes)
	assert.Equal(t, 3, cr.Chunks())
	for _, ts := range types[1:] {
		assert.Equal(t, types[0], ts)
	}

	_, err = cr.Next()
	assert.ErrorIs(t, err, io.EOF)

	_, err = NewChunkReader(strings.NewReader(data), 0)
	assert.ErrorIs(t, err, ErrBadChunkSize)
}

func TestChunkReaderCastsNarrowChunks(t *testing.T) {
	data := "Year,Share\n1960,20.5\n1961,21.25\n1962,22\n1963,23\n"

	cr, err := NewChunkReader(strings.NewReader(data), 2)
	require.NoError(t, err)

	first, err := cr.Next()
	require.NoError(t, err)
	second, err := cr.Next()
	require.NoError(t, err)

	assert.Equal(t, series.Float, first.Col("Share").Type())
	// on its own the second chunk would be detected as ints
	assert.Equal(t, series.Float, second.Col("Share").Type())
	assert.Equal(t, []float64{22, 23}, second.Col("Share").Float())
}

func TestChunkReaderWidensTypes(t *testing.T) {
	data := "CountryCode,Year,Total Population\n" +
		"CEB,1960,100\n" +
		"CEB,1961,200\n" +
		"CEB,1962.5,400.5\n" +
		"CEB,1963,50\n"

	cr, err := NewChunkReader(strings.NewReader(data), 2)
	require.NoError(t, err)

	var acc dataframe.DataFrame
	for {
		chunk, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		acc, err = Append(acc, chunk)
		require.NoError(t, err)
	}

	require.Equal(t, 4, acc.Nrow())
	assert.Equal(t, series.Float, acc.Col("Year").Type())
	assert.Equal(t, series.Float, acc.Col("Total Population").Type())
	assert.Equal(t, []float64{1960, 1961, 1962.5, 1963}, acc.Col("Year").Float())
	assert.Equal(t, []float64{100, 200, 400.5, 50}, acc.Col("Total Population").Float())
}

func TestAppendWidensBothSides(t *testing.T) {
	ints, err := ReadCSV(strings.NewReader("Code,Pop\nCEB,100\n"))
	require.NoError(t, err)
	floats, err := ReadCSV(strings.NewReader("Code,Pop\nCEB,400.5\nCEB,\n"))
	require.NoError(t, err)

	acc, err := Append(ints, floats)
	require.NoError(t, err)
	pop := acc.Col("Pop").Float()
	require.Len(t, pop, 3)
	assert.Equal(t, []float64{100, 400.5}, pop[:2])
	assert.True(t, math.IsNaN(pop[2]))

	acc, err = Append(floats, ints)
	require.NoError(t, err)
	assert.Equal(t, 400.5, acc.Col("Pop").Float()[0])
	assert.Equal(t, 100.0, acc.Col("Pop").Float()[2])
}

func TestWidenType(t *testing.T) {
	assert.Equal(t, series.Int, widenType(series.Int, series.Int))
	assert.Equal(t, series.Float, widenType(series.Int, series.Float))
	assert.Equal(t, series.Float, widenType(series.Float, series.Int))
	assert.Equal(t, series.String, widenType(series.Float, series.String))
	assert.Equal(t, series.String, widenType(series.Bool, series.Int))
}

func TestChunkedAggregation(t *testing.T) {
	const (
		total = "Total Population"
		pct   = "Urban population (% of total)"
		urban = "Total Urban Population"
	)
	data, byCode := worldIndPop(10)

	cr, err := NewChunkReader(strings.NewReader(data), 7)
	require.NoError(t, err)

	var acc dataframe.DataFrame
	matched := 0
	for {
		chunk, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		ceb, err := FilterEq(chunk, "CountryCode", "CEB")
		require.NoError(t, err)
		matched += ceb.Nrow()

		ceb, err = DeriveScaledProduct(ceb, total, pct, 0.01, urban)
		require.NoError(t, err)

		acc, err = Append(acc, ceb)
		require.NoError(t, err)
	}

	assert.Equal(t, len(byCode["CEB"]), matched)
	assert.Equal(t, matched, acc.Nrow())
	assert.Equal(t, []string{"CEB"}, uniq(acc.Col("CountryCode").Records()))

	totals := acc.Col(total).Float()
	pcts := acc.Col(pct).Float()
	urbans, err := acc.Col(urban).Int()
	require.NoError(t, err)
	for i := range totals {
		assert.Equal(t, int(totals[i]*pcts[i]*0.01), urbans[i], "row %d", i)
	}
}

func uniq(vals []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func TestDeriveScaledProductMissingValue(t *testing.T) {
	df, err := ReadCSV(strings.NewReader("a,b\n1.5,2\n,3\n"))
	require.NoError(t, err)

	_, err = DeriveScaledProduct(df, "a", "b", 0.01, "c")
	assert.Error(t, err)

	_, err = DeriveScaledProduct(df, "a", "nope", 0.01, "c")
	assert.ErrorIs(t, err, ErrNoSuchColumn)
}

const quarterlyMax = `Month,Max TemperatureF
Jan,68
Apr,89
Jul,91
Oct,84
`

const monthlyMean = `Month,Mean TemperatureF
Jan,32.13
Feb,28.5
Mar,35
Apr,53.1
May,62.6
Jun,70.43
Jul,72.2
Aug,71.9
Sep,65.8
Oct,58.6
Nov,45.1
Dec,39.6
`

func TestConcatColumns(t *testing.T) {
	weatherMax, err := ReadCSV(strings.NewReader(quarterlyMax))
	require.NoError(t, err)
	weatherMean, err := ReadCSV(strings.NewReader(monthlyMean))
	require.NoError(t, err)

	weather, err := ConcatColumns(weatherMax, weatherMean)
	require.NoError(t, err)

	assert.Equal(t, 12, weather.Nrow())
	assert.Equal(t, []string{"Month", "Max TemperatureF", "Mean TemperatureF"}, weather.Names())
	assert.Equal(t, []string{"Apr", "Aug", "Dec", "Feb", "Jan", "Jul", "Jun", "Mar", "May", "Nov", "Oct", "Sep"},
		weather.Col("Month").Records())

	quarters := map[string]bool{"Jan": true, "Apr": true, "Jul": true, "Oct": true}
	months := weather.Col("Month").Records()
	for i, m := range months {
		assert.Equal(t, !quarters[m], weather.Col("Max TemperatureF").Elem(i).IsNA(), "month %s", m)
		assert.False(t, weather.Col("Mean TemperatureF").Elem(i).IsNA(), "month %s", m)
	}
}

func TestConcatColumnsRenamesIndex(t *testing.T) {
	a, err := ReadCSV(strings.NewReader("Month,Max\nJan,1\nFeb,2\n"))
	require.NoError(t, err)
	b, err := ReadCSV(strings.NewReader("Date,Mean\nFeb,3\nMar,4\n"))
	require.NoError(t, err)

	joined, err := ConcatColumns(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Feb", "Jan", "Mar"}, joined.Col("Month").Records())
	assert.Equal(t, 3, joined.Nrow())
}

func TestConcatColumnsIndexMismatch(t *testing.T) {
	a, err := ReadCSV(strings.NewReader("Month,Max\nJan,1\n"))
	require.NoError(t, err)
	b, err := ReadCSV(strings.NewReader("Year,Mean\n1990,3\n"))
	require.NoError(t, err)

	_, err = ConcatColumns(a, b)
	assert.ErrorIs(t, err, ErrIndexMismatch)
}

func TestMergeAndSort(t *testing.T) {
	reshaped, err := ReadCSV(strings.NewReader("Edition,NOC,Change\n1900,FRA,3.1\n1900,USA,0.5\n1896,GRE,5.0\n1896,USA,1.2\n"))
	require.NoError(t, err)
	hosts, err := ReadCSV(strings.NewReader("Edition,NOC\n1896,GRE\n1900,FRA\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Edition", "NOC"}, CommonColumns(reshaped, hosts))

	merged, err := Merge(reshaped, hosts)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Nrow())

	influence, err := SetIndexSorted(merged, "Edition")
	require.NoError(t, err)
	assert.Equal(t, []string{"1896", "1900"}, influence.Col("Edition").Records())

	change, err := Floats(influence, "Change")
	require.NoError(t, err)
	assert.Equal(t, []float64{5.0, 3.1}, change)

	other, err := ReadCSV(strings.NewReader("City\nAthens\n"))
	require.NoError(t, err)
	_, err = Merge(reshaped, other)
	assert.ErrorIs(t, err, ErrNoCommonColumns)
}

func TestDescribe(t *testing.T) {
	df, err := ReadCSV(strings.NewReader("Existing Zoning Sqft\n0\n0\n0\n10\n100\n\n"))
	require.NoError(t, err)

	s, err := Describe(df, "Existing Zoning Sqft")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 22.0, s.Mean, 1e-9)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 0.0, s.Q25)
	assert.Equal(t, 0.0, s.Q50)
	assert.Equal(t, 10.0, s.Q75)
	assert.Equal(t, 100.0, s.Max)
	assert.Contains(t, s.String(), "Name: Existing Zoning Sqft")

	_, err = Describe(df, "Proposed Zoning Sqft")
	assert.ErrorIs(t, err, ErrNoSuchColumn)
}

func TestQuantile(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(vals, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(vals, 0.5), 1e-9)
	assert.InDelta(t, 4.0, quantile(vals, 1), 1e-9)
}

func TestReadNDJSON(t *testing.T) {
	in := `{"a": 1, "b": {"c": 2, "d": "x"}}

{"a": 3, "b": {"c": 4, "d": "y"}}
`
	df, err := ReadNDJSON(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"a", "b__c", "b__d"}, df.Names(), fmt.Sprint(df.Names()))

	_, err = ReadNDJSON(strings.NewReader("[1, 2]\n"))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ReadNDJSON(strings.NewReader("\n"))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestReadNDJSONKeepsKeyOrder(t *testing.T) {
	weather := `{"Month": "Jan", "Max TemperatureF": 68, "Events": {"Rain": 1, "Fog": 0}}
{"Month": "Feb", "Max TemperatureF": 60, "Events": {"Rain": 2, "Fog": 1}, "Note": "cold"}
`
	df, err := ReadNDJSON(strings.NewReader(weather))
	require.NoError(t, err)
	assert.Equal(t, []string{"Month", "Max TemperatureF", "Events__Rain", "Events__Fog", "Note"}, df.Names())
	assert.Equal(t, []string{"NaN", "cold"}, df.Col("Note").Records())

	means, err := ReadNDJSON(strings.NewReader(`{"Month": "Feb", "Mean TemperatureF": 34.5}` + "\n"))
	require.NoError(t, err)

	// the first column is the index
	combined, err := ConcatColumns(df, means)
	require.NoError(t, err)
	assert.Equal(t, "Month", combined.Names()[0])
	assert.Equal(t, []string{"Feb", "Jan"}, combined.Col("Month").Records())
}

func TestFormat(t *testing.T) {
	df, err := ReadCSV(strings.NewReader("Month,Max,Mean\nJan,68,32.1\nFeb,,34.5\n"))
	require.NoError(t, err)

	out := Format(df)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"Month", "Max", "Mean"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "Jan", "68", "32.1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "Feb", "NaN", "34.5"}, strings.Fields(lines[2]))
	assert.Equal(t, "[2 rows x 3 columns]", lines[4])
}

func TestFromRecords(t *testing.T) {
	df, err := FromRecords([][]string{{"state", "age"}, {"Illinois", "0"}, {"Ohio", "1"}})
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, series.Int, df.Col("age").Type())
}
