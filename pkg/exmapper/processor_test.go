package exmapper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/document"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
)

type dept struct {
	Name string
}

type person struct {
	Name   string
	Gender int
	Age    int
	Born   time.Time
	Note   string
	Dept   *dept
}

func personSchema() *schema.Schema[person] {
	return schema.New[person]("person",
		schema.String("Name", func(p *person) *string { return &p.Name },
			schema.Title("姓名"), schema.Order(1)),
		schema.Int("Gender", func(p *person) *int { return &p.Gender },
			schema.Title("性别"), schema.Order(2), schema.Translate("0=男,1=女"), schema.Combo("男", "女")),
		schema.Int("Age", func(p *person) *int { return &p.Age },
			schema.Title("年龄"), schema.Order(3), schema.Numeric(), schema.Prompt("请输入年龄")),
		schema.Time("Born", func(p *person) *time.Time { return &p.Born },
			schema.Title("生日"), schema.Order(4), schema.DateFormat("yyyy-MM-dd")),
		schema.String("Note", func(p *person) *string { return &p.Note },
			schema.Title("备注"), schema.Order(5), schema.NoExport()),
	)
}

func deptSchema() *schema.Schema[person] {
	return schema.New[person]("person",
		schema.String("Name", func(p *person) *string { return &p.Name }, schema.Title("姓名")),
		schema.Nested("Dept", "Name", coerce.KindString,
			func(p *person) (any, bool) {
				if p.Dept == nil {
					return nil, false
				}
				return p.Dept.Name, true
			},
			func(p *person, v any) error {
				if p.Dept == nil {
					p.Dept = &dept{}
				}
				p.Dept.Name = v.(string)
				return nil
			},
			schema.Title("部门"), schema.Order(1)),
	)
}

func people() []person {
	return []person{
		{Name: "Tom", Gender: 0, Age: 30, Born: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), Note: "secret"},
		{Name: "Ann", Gender: 1, Age: 25, Born: time.Date(1995, 12, 24, 0, 0, 0, 0, time.UTC)},
		{Name: "Bob", Gender: 0, Age: 41, Born: time.Date(1979, 1, 7, 0, 0, 0, 0, time.UTC)},
	}
}

func newPersonProcessor(t *testing.T, maxRows int, opts ...Option) *Processor[person] {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxRowsPerSheet = maxRows
	p, err := New(personSchema(), cfg, opts...)
	require.NoError(t, err)
	return p
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestExportPaginates(t *testing.T) {
	p := newPersonProcessor(t, 2)

	var buf bytes.Buffer
	result, err := p.Export(&buf, "report", people())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.NoError(t, result.Err())
	assert.Equal(t, 3, result.Records)
	require.Len(t, result.Sheets, 2)
	assert.Equal(t, models.SheetPlan{Index: 1, Name: "report_1", RowStart: 2, RowEnd: 3}, result.Sheets[1])

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"report", "report_1"}, f.GetSheetList())

	for i, title := range []string{"姓名", "性别", "年龄", "生日", "备注"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		assert.Equal(t, title, cellValue(t, f, "report", cell))
		assert.Equal(t, title, cellValue(t, f, "report_1", cell))
	}

	assert.Equal(t, "Tom", cellValue(t, f, "report", "A2"))
	assert.Equal(t, "男", cellValue(t, f, "report", "B2"))
	assert.Equal(t, "30", cellValue(t, f, "report", "C2"))
	assert.Equal(t, "1990-05-01", cellValue(t, f, "report", "D2"))
	assert.Equal(t, "", cellValue(t, f, "report", "E2"))
	assert.Equal(t, "女", cellValue(t, f, "report", "B3"))
	assert.Equal(t, "Bob", cellValue(t, f, "report_1", "A2"))
	assert.Equal(t, "", cellValue(t, f, "report_1", "A3"))

	typ, err := f.GetCellType("report", "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)

	width, err := f.GetColWidth("report", "A")
	require.NoError(t, err)
	assert.InDelta(t, models.DefaultWidth+0.72, width, 0.01)
}

func TestExportSheetRows(t *testing.T) {
	type item struct {
		Code  string
		Count int
	}
	s := schema.New[item]("item",
		schema.String("Code", func(i *item) *string { return &i.Code }),
		schema.Int("Count", func(i *item) *int { return &i.Count }, schema.Numeric()),
	)
	cfg := DefaultConfig()
	cfg.MaxRowsPerSheet = 2
	p, err := New(s, cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = p.Export(&buf, "report", []item{{"a", 1}, {"b", 2}, {"c", 3}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"report", "report_1"}, f.GetSheetList())
	rows, err := f.GetRows("report")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Code", "Count"}, {"a", "1"}, {"b", "2"}}, rows)
	rows, err = f.GetRows("report_1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Code", "Count"}, {"c", "3"}}, rows)
}

func TestExportEmpty(t *testing.T) {
	p := newPersonProcessor(t, 10)

	var buf bytes.Buffer
	result, err := p.Export(&buf, "report", nil)
	require.NoError(t, err)
	require.Len(t, result.Sheets, 1)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("report")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "姓名", rows[0][0])
}

func TestExportImportRoundTrip(t *testing.T) {
	p := newPersonProcessor(t, 2)

	var buf bytes.Buffer
	_, err := p.Export(&buf, "report", people())
	require.NoError(t, err)
	data := buf.Bytes()

	want := people()
	want[0].Note = ""

	got, err := p.Import(bytes.NewReader(data), "")
	require.NoError(t, err)
	assert.Equal(t, want[:2], got)

	got, err = p.Import(bytes.NewReader(data), "report_1")
	require.NoError(t, err)
	assert.Equal(t, want[2:], got)
}

func TestExportZeroDateWritesDefault(t *testing.T) {
	p := newPersonProcessor(t, 100)

	var buf bytes.Buffer
	_, err := p.Export(&buf, "report", []person{{Name: "NoBirthday", Gender: 1, Age: 3}})
	require.NoError(t, err)
	data := buf.Bytes()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "", cellValue(t, f, "report", "D2"))
	require.NoError(t, f.Close())

	got, err := p.Import(bytes.NewReader(data), "report")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Born.IsZero())
	assert.Equal(t, "NoBirthday", got[0].Name)
}

// One processor serves parallel calls; run with -race.
func TestConcurrentExportImport(t *testing.T) {
	p := newPersonProcessor(t, 2)

	want := people()
	for i := range want {
		want[i].Note = ""
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var buf bytes.Buffer
			result, err := p.Export(&buf, "report", people())
			if err != nil {
				errs <- err
				return
			}
			if !result.OK() {
				errs <- result.Err()
				return
			}

			got, err := p.Import(bytes.NewReader(buf.Bytes()), "report_1")
			if err != nil {
				errs <- err
				return
			}
			if !assert.ObjectsAreEqual(want[2:], got) {
				errs <- fmt.Errorf("unexpected records %+v", got)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestExportFileAndImportFile(t *testing.T) {
	p := newPersonProcessor(t, 100)
	dir := t.TempDir()

	result, err := p.ExportFile(dir, "people", "report", people())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "people.xlsx"), result.File)

	got, err := p.ImportFile(result.File, "report")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = p.ImportFile(filepath.Join(dir, "missing.xlsx"), "")
	assert.ErrorIs(t, err, ErrIO)
}

func TestExportPartialFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p, err := New(deptSchema(), DefaultConfig(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	records := []person{
		{Name: "Tom", Dept: &dept{Name: "R&D"}},
		{Name: "Ann"},
	}

	var buf bytes.Buffer
	result, err := p.Export(&buf, "report", records)
	require.NoError(t, err)
	assert.False(t, result.OK())
	require.Len(t, result.Failures, 1)

	failure := result.Failures[0]
	assert.Equal(t, 1, failure.Record)
	assert.Equal(t, 2, failure.Row)
	assert.Equal(t, "部门", failure.Column)
	assert.ErrorIs(t, result.Err(), ErrCoercion)
	assert.Equal(t, 1, logs.FilterMessage("cell export failed").Len())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Tom", cellValue(t, f, "report", "A2"))
	assert.Equal(t, "R&D", cellValue(t, f, "report", "B2"))
	assert.Equal(t, "Ann", cellValue(t, f, "report", "A3"))
	assert.Equal(t, "", cellValue(t, f, "report", "B3"))
}

func TestImportNested(t *testing.T) {
	p, err := New(deptSchema(), DefaultConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = p.Export(&buf, "report", []person{{Name: "Tom", Dept: &dept{Name: "R&D"}}})
	require.NoError(t, err)

	got, err := p.Import(&buf, "report")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Dept)
	assert.Equal(t, "R&D", got[0].Dept.Name)
}

func workbook(t *testing.T, cells map[string]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestImportSkipsBlankRowsAndUnknownTitles(t *testing.T) {
	p := newPersonProcessor(t, 100)

	buf := workbook(t, map[string]any{
		"A1": "姓名",
		"B1": "Extra",
		"C1": "年龄",
		"A2": "Tom",
		"B3": "ignored",
		"A4": "Ann",
		"C4": "",
		"C5": 7,
	})

	got, err := p.Import(buf, "")
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Tom"}, {Name: "Ann"}, {Age: 7}}, got)
}

func TestImportCustomRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TitleRowIndex = 1
	start := 3
	cfg.DataRowStartIndex = &start
	p, err := New(personSchema(), cfg)
	require.NoError(t, err)

	buf := workbook(t, map[string]any{
		"A1": "Report",
		"A2": "姓名",
		"A3": "skipped",
		"A4": "Tom",
	})

	got, err := p.Import(buf, "")
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Tom"}}, got)
}

func TestImportErrors(t *testing.T) {
	p := newPersonProcessor(t, 100)

	t.Run("missing sheet", func(t *testing.T) {
		_, err := p.Import(workbook(t, map[string]any{"A1": "姓名"}), "missing")
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, document.ErrSheetNotFound)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := p.Import(bytes.NewBufferString("plain text"), "")
		assert.ErrorIs(t, err, ErrIO)
	})

	t.Run("bad number", func(t *testing.T) {
		buf := workbook(t, map[string]any{
			"A1": "年龄",
			"A2": 1,
			"A3": "abc",
		})
		_, err := p.Import(buf, "")
		require.ErrorIs(t, err, ErrCoercion)

		var me *models.Error
		require.True(t, errors.As(err, &me))
		assert.Equal(t, 2, me.Row)
		assert.Equal(t, "Age", me.Field)
		assert.Equal(t, "import", me.Op)
	})

	t.Run("no import columns", func(t *testing.T) {
		s := schema.New[person]("export only",
			schema.String("Name", func(p *person) *string { return &p.Name }, schema.AppliesTo(models.OpExport)))
		p, err := New(s, DefaultConfig())
		require.NoError(t, err)

		_, err = p.Import(workbook(t, map[string]any{"A1": "Name"}), "")
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestExportTemplate(t *testing.T) {
	p := newPersonProcessor(t, 100)

	var buf bytes.Buffer
	require.NoError(t, p.ExportTemplate(&buf, "template"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("template")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"姓名", "性别", "年龄", "生日", "备注"}, rows[0])

	dvs, err := f.GetDataValidations("template")
	require.NoError(t, err)
	assert.Len(t, dvs, 2)

	assert.ErrorIs(t, p.ExportTemplate(io.Discard, ""), ErrConfiguration)
}

func TestExportHTTP(t *testing.T) {
	p := newPersonProcessor(t, 100)

	rec := httptest.NewRecorder()
	_, err := p.ExportHTTP(rec, "报表", "report", people())
	require.NoError(t, err)

	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="__.xlsx"; filename*=UTF-8''%E6%8A%A5%E8%A1%A8.xlsx`,
		rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"report"}, f.GetSheetList())
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="report.xlsx"; filename*=UTF-8''report.xlsx`, ContentDisposition("report.xlsx"))
	assert.Equal(t, `attachment; filename="caf`+"\xe9"+`.xlsx"; filename*=UTF-8''caf%C3%A9.xlsx`, ContentDisposition("café.xlsx"))
	assert.Equal(t, `attachment; filename="a\"b.xlsx"; filename*=UTF-8''a%22b.xlsx`, ContentDisposition(`a"b.xlsx`))
}

// failingWriter fails every cell write after the first n.
type failingWriter struct {
	document.Writer
	n      int
	closed bool
}

func (w *failingWriter) WriteCell(sh document.Sheet, row, col int, value any, style document.Style) error {
	if w.n == 0 {
		return errors.New("disk full")
	}
	w.n--
	return w.Writer.WriteCell(sh, row, col, value, style)
}

func (w *failingWriter) Close() error {
	w.closed = true
	return w.Writer.Close()
}

func TestExportClosesOnFailure(t *testing.T) {
	fw := &failingWriter{Writer: document.NewXLSXWriter(), n: 7}
	p := newPersonProcessor(t, 100, WithWriter(func() (document.Writer, error) { return fw, nil }))

	_, err := p.Export(io.Discard, "report", people())
	assert.ErrorIs(t, err, ErrIO)
	assert.True(t, fw.closed)
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRowsPerSheet = 0
	_, err := New(personSchema(), cfg)
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg = DefaultConfig()
	start := 0
	cfg.DataRowStartIndex = &start
	_, err = New(personSchema(), cfg)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New[person](nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestConfigWithFile(t *testing.T) {
	maxRows, title, validation := 50, 2, 20
	cfg := DefaultConfig().WithFile(schema.FileConfig{
		MaxRowsPerSheet: &maxRows,
		TitleRowIndex:   &title,
		ValidationRows:  &validation,
	})

	assert.Equal(t, 50, cfg.MaxRowsPerSheet)
	assert.Equal(t, 2, cfg.TitleRowIndex)
	assert.Equal(t, 3, cfg.DataRowStart())
	assert.Equal(t, 20, cfg.ValidationRows)
	assert.NoError(t, cfg.Validate())
}
