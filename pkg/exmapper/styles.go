package exmapper

import (
	"github.com/ukaji3/exmapper-go/pkg/exmapper/document"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/models"
)

// StyleSet holds the base header and data cell styles. Column alignment
// is applied on top of them.
type StyleSet struct {
	Header document.StyleSpec
	Data   document.StyleSpec
}

// DefaultStyles returns thin grey borders on every cell, 11pt 宋体 data
// cells and bold white 黑体 header cells on a sky blue fill.
func DefaultStyles() StyleSet {
	data := document.StyleSpec{
		FontFamily:    "宋体",
		FontSize:      11,
		BorderColor:   "808080",
		VerticalAlign: models.AlignCenter,
	}
	header := data
	header.FontFamily = "黑体"
	header.Bold = true
	header.FontColor = "FFFFFF"
	header.FillColor = "87CEEB"
	header.Align = models.AlignCenter
	return StyleSet{Header: header, Data: data}
}

type styleRole int

const (
	roleHeader styleRole = iota
	roleData
)

type styleKey struct {
	role   styleRole
	align  models.Alignment
	valign models.Alignment
}

// styleCache creates each distinct style once per document.
type styleCache struct {
	w      document.Writer
	set    StyleSet
	styles map[styleKey]document.Style
}

func newStyleCache(w document.Writer, set StyleSet) *styleCache {
	return &styleCache{w: w, set: set, styles: make(map[styleKey]document.Style)}
}

func (c *styleCache) get(role styleRole, def models.ColumnDefinition) (document.Style, error) {
	key := styleKey{role: role, align: def.Align, valign: def.VerticalAlign}
	if st, ok := c.styles[key]; ok {
		return st, nil
	}

	spec := c.set.Data
	if role == roleHeader {
		spec = c.set.Header
	}
	if def.Align != models.AlignGeneral {
		spec.Align = def.Align
	}
	if def.VerticalAlign != models.AlignGeneral {
		spec.VerticalAlign = def.VerticalAlign
	}

	st, err := c.w.CreateStyle(spec)
	if err != nil {
		return 0, err
	}
	c.styles[key] = st
	return st, nil
}
