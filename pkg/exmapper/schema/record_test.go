package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/coerce"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		wantErr bool
	}{
		{"name", []string{"name"}, false},
		{"dept.leader.name", []string{"dept", "leader", "name"}, false},
		{"部门.名称", []string{"部门", "名称"}, false},
		{"", nil, true},
		{"dept..name", nil, true},
		{".name", nil, true},
	}

	for _, tt := range tests {
		got, err := ParsePath(tt.path)
		if tt.wantErr {
			assert.Error(t, err, "path %q", tt.path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRecordLookupAssign(t *testing.T) {
	r := Record{"dept": map[string]any{"name": "R&D"}, "age": 3}

	v, ok := r.Lookup([]string{"dept", "name"})
	assert.True(t, ok)
	assert.Equal(t, "R&D", v)

	_, ok = r.Lookup([]string{"dept", "leader", "name"})
	assert.False(t, ok)

	_, ok = r.Lookup([]string{"age", "value"})
	assert.False(t, ok)

	require.NoError(t, r.Assign([]string{"dept", "leader", "name"}, "ann"))
	v, ok = r.Lookup([]string{"dept", "leader", "name"})
	assert.True(t, ok)
	assert.Equal(t, "ann", v)

	assert.Error(t, r.Assign([]string{"age", "value"}, 1))
	assert.Error(t, Record(nil).Assign([]string{"x"}, 1))
}

func TestRecordField(t *testing.T) {
	plain, err := RecordField("name", coerce.KindString, "")
	require.NoError(t, err)

	var rec Record
	require.NoError(t, plain.Set(&rec, "bob"))
	assert.Equal(t, Record{"name": "bob"}, rec)

	missing, err := plain.Get(&Record{})
	require.NoError(t, err)
	assert.Nil(t, missing)

	nested, err := RecordField("dept", coerce.KindString, "leader.name", Title("负责人"))
	require.NoError(t, err)
	assert.Equal(t, "leader.name", nested.Columns()[0].AssociatedPath)

	_, err = nested.Get(&rec)
	assert.ErrorIs(t, err, models.ErrCoercion)

	require.NoError(t, nested.Set(&rec, "ann"))
	v, err := nested.Get(&rec)
	require.NoError(t, err)
	assert.Equal(t, "ann", v)

	_, err = RecordField("dept", coerce.KindString, "leader..name")
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

const userYAML = `
name: user
config:
  max_rows_per_sheet: 2
  title_row_index: 1
columns:
  - field: name
    title: 姓名
    width: 20
  - field: sex
    kind: int
    title: 性别
    translate: 0=男,1=女,2=未知
    combo: 男, 女, 未知
  - field: born
    kind: date
    title: 出生日期
    date_format: yyyy-MM-dd
    order: 5
  - field: dept
    associate: name
    title: 部门
    applies_to: export
  - field: salary
    kind: decimal
    title: 薪资
    cell_type: numeric
    export: false
    prompt: 请输入数字
    combo: [1000, 2000]
`

func TestLoad(t *testing.T) {
	s, cfg, err := Load(strings.NewReader(userYAML))
	require.NoError(t, err)

	assert.Equal(t, "user", s.Name())
	require.NotNil(t, cfg.MaxRowsPerSheet)
	assert.Equal(t, 2, *cfg.MaxRowsPerSheet)
	require.NotNil(t, cfg.TitleRowIndex)
	assert.Equal(t, 1, *cfg.TitleRowIndex)
	assert.Nil(t, cfg.DataRowStartIndex)

	cols, err := s.Resolve(models.OpExport)
	require.NoError(t, err)
	assert.Equal(t, []string{"姓名", "性别", "部门", "薪资", "出生日期"}, titles(cols))

	assert.Equal(t, 20.0, cols[0].Width)
	assert.Equal(t, []string{"男", "女", "未知"}, cols[1].Combo)
	assert.Equal(t, "女", cols[1].Table.Forward("1"))
	assert.Equal(t, "name", cols[2].AssociatedPath)
	assert.Equal(t, models.CellNumeric, cols[3].CellType)
	assert.False(t, cols[3].Export)
	assert.Equal(t, []string{"1000", "2000"}, cols[3].Combo)
	assert.Equal(t, coerce.KindTime, cols[4].Kind)

	imp, err := s.Resolve(models.OpImport)
	require.NoError(t, err)
	assert.Equal(t, []string{"姓名", "性别", "薪资", "出生日期"}, titles(imp))
}

func TestLoadErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":  "columns:\n  - field: a\n    colour: red\n",
		"no field":     "columns:\n  - title: A\n",
		"bad kind":     "columns:\n  - field: a\n    kind: complex\n",
		"bad op":       "columns:\n  - field: a\n    applies_to: sometimes\n",
		"bad celltype": "columns:\n  - field: a\n    cell_type: formula\n",
		"no columns":   "name: empty\n",
	} {
		t.Run(name, func(t *testing.T) {
			s, _, err := Load(strings.NewReader(doc))
			if err == nil {
				// Empty tables load but cannot resolve.
				_, err = s.Resolve(models.OpAll)
			}
			assert.ErrorIs(t, err, models.ErrConfiguration)
		})
	}
}
