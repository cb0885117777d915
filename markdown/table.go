package markdown

import "strings"

type columnAlign int

const (
	alignLeft columnAlign = iota
	alignCenter
	alignRight
)

func (a columnAlign) style() string {
	switch a {
	case alignCenter:
		return ` style="text-align: center;"`
	case alignRight:
		return ` style="text-align: right;"`
	default:
		return ` style="text-align: left;"`
	}
}

// splitTableRow splits a pipe-delimited row into trimmed cells, dropping the
// empty fields produced by the enclosing pipes.
func splitTableRow(line string) []string {
	fields := strings.Split(strings.TrimSpace(line), "|")
	if len(fields) > 0 && strings.TrimSpace(fields[0]) == "" {
		fields = fields[1:]
	}
	if len(fields) > 0 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// parseAlignments reads an alignment row. ok is false when any cell holds
// something other than '-' and ':' or has no '-'.
func parseAlignments(cells []string) (aligns []columnAlign, ok bool) {
	if len(cells) == 0 {
		return nil, false
	}
	aligns = make([]columnAlign, len(cells))
	for i, cell := range cells {
		if !strings.Contains(cell, "-") || strings.Trim(cell, "-:") != "" {
			return nil, false
		}
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":")
		switch {
		case left && right:
			aligns[i] = alignCenter
		case right:
			aligns[i] = alignRight
		default:
			aligns[i] = alignLeft
		}
	}
	return aligns, true
}

// renderTable turns buffered table lines into HTML. Row 1 is the header and
// row 2 the alignment row; every body row is padded or cut to the header's
// column count. Fewer than two lines render nothing. A second row that is
// not a valid alignment row is treated as data with left alignment.
func renderTable(rows []string) string {
	if len(rows) < 2 {
		return ""
	}
	headers := splitTableRow(rows[0])
	cols := len(headers)

	body := rows[1:]
	aligns, ok := parseAlignments(splitTableRow(rows[1]))
	if ok {
		body = rows[2:]
	}
	alignOf := func(i int) columnAlign {
		if i < len(aligns) {
			return aligns[i]
		}
		return alignLeft
	}

	var b strings.Builder
	b.WriteString(`<div class="` + classTableContainer + `"><table class="` + classTable + `">`)
	b.WriteString(`<thead class="` + classTableHead + `"><tr class="` + classTableRow + `">`)
	for i, h := range headers {
		b.WriteString(`<th class="` + classTableHeader + `"` + alignOf(i).style() + `>`)
		b.WriteString(renderInline(h))
		b.WriteString(`</th>`)
	}
	b.WriteString(`</tr></thead>`)

	b.WriteString(`<tbody class="` + classTableBody + `">`)
	for _, line := range body {
		cells := splitTableRow(line)
		b.WriteString(`<tr class="` + classTableRow + `">`)
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(`<td class="` + classTableCell + `"` + alignOf(i).style() + `>`)
			b.WriteString(renderInline(cell))
			b.WriteString(`</td>`)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></div>`)
	return b.String()
}
