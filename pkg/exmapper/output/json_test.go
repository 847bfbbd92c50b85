package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
)

func TestToJSON(t *testing.T) {
	plans := []models.SheetPlan{{Index: 0, Name: "report", RowStart: 0, RowEnd: 2}}

	data, err := ToJSON(plans, false)
	require.NoError(t, err)
	assert.Equal(t, `[{"index":0,"name":"report","row_start":0,"row_end":2}]`, string(data))

	data, err = ToJSON(plans, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"index\": 0,")
}

func TestReadRecords(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(`[
		{"name": "Tom", "id": 12345678901234567890, "dept": {"name": "R&D"}},
		{"name": "Ann"}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, json.Number("12345678901234567890"), records[0]["id"])

	v, ok := records[0].Lookup([]string{"dept", "name"})
	require.True(t, ok)
	assert.Equal(t, "R&D", v)
	assert.Equal(t, schema.Record{"name": "Ann"}, records[1])
}

func TestReadRecordsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an array", `{"name": "Tom"}`},
		{"malformed", `[{"name": }]`},
		{"trailing", `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecordsBytes([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}
