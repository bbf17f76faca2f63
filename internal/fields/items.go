package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/equiplend/invoice-pipeline/internal/entity"
)

// Line-item extraction limits.
const (
	MinItemNameLen  = 3
	MaxKeywordItems = 5
	MaxTotalItems   = 10
)

// headerWords are column labels that must never become item names, no
// matter which cascade stage matched them.
var headerWords = map[string]struct{}{
	"item": {}, "items": {}, "name": {}, "sku": {}, "qty": {},
	"quantity": {}, "price": {}, "value": {}, "unit": {}, "total": {},
	"amount": {}, "description": {}, "equipment": {}, "no": {}, "s/n": {},
}

// equipmentKeywords drive the placeholder fallback when no row shape
// matched anywhere in the text.
var equipmentKeywords = []string{
	"laptop", "caliper", "micrometer", "multimeter", "oscilloscope",
	"projector", "camera", "tripod", "arduino", "breadboard",
	"soldering iron", "power supply", "microscope", "drill", "sensor kit",
	"function generator", "tablet", "charger",
}

var (
	reItemsLabel     = regexp.MustCompile(`(?i)^\s*items?\s*(?:borrowed|issued|list)?\s*:`)
	reItemsTerm      = regexp.MustCompile(`(?i)^\s*(total|signature|terms|notes?)\b`)
	reNumberedPrefix = regexp.MustCompile(`^\s*\d{1,2}[.)]\s+(.+)$`)
	reCompactRow     = regexp.MustCompile(`(?i)^(.{3,60}?)\s+-\s+qty:?\s*(\d+)\s+-\s+\$?(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)\s*$`)
	reMultiSpaceSep  = regexp.MustCompile(` {2,}`)
	reMoneyCell      = regexp.MustCompile(`^\$\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?$|^\d{1,3}(?:,\d{3})*\.\d{1,2}$|^\d{4,}$`)
	reQtyCell        = regexp.MustCompile(`^\d{1,3}$`)
	reSKUCell        = regexp.MustCompile(`^[A-Za-z]{2,6}[-/]?\d{2,8}$|^[A-Z0-9]{2,4}-[A-Z0-9-]{2,12}$`)
	reQtyToken       = regexp.MustCompile(`(?i)\b(?:qty|quantity)[:\s]*(\d{1,3})\b|\bx\s*(\d{1,3})\b`)
	reMoneyToken     = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)|\b(\d{1,3}(?:,\d{3})*\.\d{2})\b`)
	reHeuristicLine  = regexp.MustCompile(`(?i)\bqty\b|\bx\s*\d+\b|\$\s*\d|\bsku\b|\d+\s*(?:pcs|units)\b`)
)

// itemList accumulates accepted rows with duplicate suppression and the
// global item cap.
type itemList struct {
	items   []entity.LineItem
	autoSKU int
}

func (l *itemList) add(name, sku string, qty int, unit, total float64) bool {
	name = strings.TrimSpace(name)
	if rejectItemName(name) {
		return false
	}
	if len(l.items) >= MaxTotalItems {
		return false
	}
	for _, it := range l.items {
		if strings.EqualFold(it.Name, name) {
			return false
		}
	}
	if qty < 1 {
		qty = 1
	}
	if sku == "" {
		l.autoSKU++
		sku = fmt.Sprintf("AUTO%03d", l.autoSKU)
	}
	if total == 0 && unit > 0 {
		total = float64(qty) * unit
	}
	l.items = append(l.items, entity.LineItem{
		Name: name, SKU: sku, Quantity: qty, UnitValue: unit, TotalValue: total,
	})
	return true
}

func rejectItemName(name string) bool {
	if len(name) < MinItemNameLen {
		return true
	}
	key := strings.ToLower(strings.Trim(name, " .:|-"))
	_, header := headerWords[key]
	return header
}

// ExtractItems recovers equipment rows from normalized invoice text. Stages
// run in order until at least one item was found: labelled block, whole-text
// row shapes, known-equipment keywords, then a per-line heuristic scan.
func ExtractItems(text string) []entity.LineItem {
	l := &itemList{}
	lines := strings.Split(text, "\n")

	if block := labelledBlock(lines); len(block) > 0 {
		scanRows(l, block)
	}
	if len(l.items) == 0 {
		scanRows(l, lines)
	}
	if len(l.items) == 0 {
		keywordScan(l, text)
	}
	if len(l.items) == 0 {
		heuristicScan(l, lines)
	}
	return l.items
}

// labelledBlock returns the lines between an "Items:" label and the next
// terminator (total/signature/terms/notes), or nil when no label exists.
func labelledBlock(lines []string) []string {
	start := -1
	for i, ln := range lines {
		if reItemsLabel.MatchString(ln) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if reItemsTerm.MatchString(lines[i]) {
			end = i
			break
		}
	}
	return lines[start:end]
}

func scanRows(l *itemList, lines []string) {
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		if cand, ok := parseRow(ln); ok {
			l.add(cand.name, cand.sku, cand.qty, cand.unit, cand.total)
		}
	}
}

type rowCand struct {
	name, sku   string
	qty         int
	unit, total float64
}

// parseRow tries the supported row shapes in priority order: pipe-delimited,
// multi-space, comma-delimited, numbered list, compact dash form.
func parseRow(line string) (rowCand, bool) {
	if strings.Contains(line, "|") {
		if cand, ok := parseCells(splitTrim(line, "|")); ok {
			return cand, true
		}
	}
	if cells := trimAll(reMultiSpaceSep.Split(line, -1)); len(cells) >= 3 {
		if cand, ok := parseCells(cells); ok {
			return cand, true
		}
	}
	if cells := splitTrim(line, ","); len(cells) >= 3 && hasNumericCell(cells[1:]) {
		if cand, ok := parseCells(cells); ok {
			return cand, true
		}
	}
	if m := reNumberedPrefix.FindStringSubmatch(line); m != nil {
		if cand, ok := parseFreeform(m[1]); ok {
			return cand, true
		}
	}
	if m := reCompactRow.FindStringSubmatch(line); m != nil {
		qty, _ := strconv.Atoi(m[2])
		return rowCand{name: m[1], qty: qty, unit: parseMoney(m[3])}, true
	}
	return rowCand{}, false
}

// parseCells interprets a delimited row: first cell is the name, remaining
// cells are classified as SKU, quantity, unit value and total value.
func parseCells(cells []string) (rowCand, bool) {
	if len(cells) < 2 {
		return rowCand{}, false
	}
	cand := rowCand{name: cells[0]}
	if rejectItemName(strings.TrimSpace(cand.name)) {
		return rowCand{}, false
	}
	numericSeen := false
	for _, cell := range cells[1:] {
		cell = strings.TrimSpace(cell)
		switch {
		case cell == "":
		case cand.qty == 0 && reQtyCell.MatchString(cell):
			cand.qty, _ = strconv.Atoi(cell)
			numericSeen = true
		case reMoneyCell.MatchString(cell):
			v := parseMoney(cell)
			if cand.unit == 0 {
				cand.unit = v
			} else if cand.total == 0 {
				cand.total = v
			}
			numericSeen = true
		case cand.sku == "" && reSKUCell.MatchString(cell):
			cand.sku = cell
		}
	}
	if !numericSeen {
		return rowCand{}, false
	}
	return cand, true
}

// parseFreeform handles the remainder of a numbered-list row: trailing
// quantity and money tokens are lifted out, what is left is the name.
func parseFreeform(rest string) (rowCand, bool) {
	cand := rowCand{}
	name := rest

	if m := reQtyToken.FindStringSubmatch(rest); m != nil {
		g := m[1]
		if g == "" {
			g = m[2]
		}
		cand.qty, _ = strconv.Atoi(g)
		name = strings.Replace(name, m[0], "", 1)
	}
	if m := reMoneyToken.FindStringSubmatch(rest); m != nil {
		g := m[1]
		if g == "" {
			g = m[2]
		}
		cand.unit = parseMoney(g)
		name = strings.Replace(name, m[0], "", 1)
	}
	if cand.qty == 0 && cand.unit == 0 {
		return rowCand{}, false
	}
	cand.name = strings.TrimFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '–' || r == ':' || r == '|' || r == ','
	})
	if cand.name == "" {
		return rowCand{}, false
	}
	return cand, true
}

// keywordScan emits zero-value placeholder items for known equipment nouns.
// Deliberately low confidence: its only job is to avoid returning nothing.
func keywordScan(l *itemList, text string) {
	lower := strings.ToLower(text)
	added := 0
	for _, kw := range equipmentKeywords {
		if added >= MaxKeywordItems {
			return
		}
		if strings.Contains(lower, kw) {
			if l.add(titleCase(kw), "", 1, 0, 0) {
				added++
			}
		}
	}
}

// heuristicScan is the last resort: any line carrying quantity, price or
// SKU-shaped tokens becomes an item.
func heuristicScan(l *itemList, lines []string) {
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || !reHeuristicLine.MatchString(ln) {
			continue
		}
		if cand, ok := parseFreeform(ln); ok {
			l.add(cand.name, cand.sku, cand.qty, cand.unit, cand.total)
		}
	}
}

func parseMoney(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func splitTrim(s, sep string) []string {
	return trimAll(strings.Split(s, sep))
}

func trimAll(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasNumericCell(cells []string) bool {
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if reQtyCell.MatchString(c) || reMoneyCell.MatchString(c) {
			return true
		}
	}
	return false
}
