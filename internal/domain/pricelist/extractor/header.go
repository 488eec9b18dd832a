package extractor

import "strings"

type role int

const (
	roleNone role = iota
	roleCode
	roleName
	rolePrice
	roleCategory
	roleUnit
)

// roleKeywords is checked in order; the first role with a keyword contained
// in the header cell wins.
var roleKeywords = []struct {
	role     role
	keywords []string
}{
	{roleCode, []string{"code", "sku", "model", "item", "product id", "part"}},
	{roleName, []string{"name", "description", "product", "item name", "title", "specification"}},
	{rolePrice, []string{"price", "rate", "cost", "amount", "mrp", "dealer", "selling"}},
	{roleCategory, []string{"category", "type", "group", "class"}},
	{roleUnit, []string{"unit", "uom", "qty", "pack"}},
}

// columnMap holds the column index of each role, -1 when absent.
type columnMap struct {
	code        int
	name        int
	price       int
	description int
	category    int
	unit        int
}

// recognized reports whether the header row identified any column the
// record parser can use.
func (c columnMap) recognized() bool {
	return c.code >= 0 || c.name >= 0 || c.price >= 0
}

func classifyCell(cell string) role {
	cell = strings.ToLower(strings.TrimSpace(cell))
	if cell == "" {
		return roleNone
	}

	for _, rk := range roleKeywords {
		if containsAny(cell, rk.keywords) {
			return rk.role
		}
	}
	return roleNone
}

// classifyHeader maps the cells of a table's first row to roles. The first
// name column keeps the name role and a later one becomes the description.
// For the other roles the rightmost column wins.
func classifyHeader(cells []string) columnMap {
	cols := columnMap{code: -1, name: -1, price: -1, description: -1, category: -1, unit: -1}

	for i, cell := range cells {
		switch classifyCell(cell) {
		case roleCode:
			cols.code = i
		case roleName:
			if cols.name < 0 {
				cols.name = i
			} else {
				cols.description = i
			}
		case rolePrice:
			cols.price = i
		case roleCategory:
			cols.category = i
		case roleUnit:
			cols.unit = i
		}
	}
	return cols
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
