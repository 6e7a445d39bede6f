package parser

import (
	"regexp"
	"strings"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// fieldPatterns is the declarative header pattern table: for each field, an
// ordered list of rules tested against the normalized header text. Polish
// spreadsheet conventions first, English fallbacks after. Extend the table
// here; the scorer never changes.
var fieldPatterns = map[model.Field][]*regexp.Regexp{
	model.FieldLP: {
		regexp.MustCompile(`(?i)^l\.?\s*p\.?$`),
		regexp.MustCompile(`(?i)^poz\.?(ycja)?$`),
		regexp.MustCompile(`(?i)^nr$`),
		regexp.MustCompile(`(?i)^no\.?$`),
		regexp.MustCompile(`^#$`),
	},
	model.FieldItemID: {
		regexp.MustCompile(`(?i)indeks`),
		regexp.MustCompile(`(?i)symbol`),
		regexp.MustCompile(`(?i)\bkod\b`),
		regexp.MustCompile(`(?i)^id$`),
		regexp.MustCompile(`(?i)\bsku\b`),
		regexp.MustCompile(`(?i)item\s*id`),
		regexp.MustCompile(`(?i)\bindex\b`),
	},
	model.FieldName: {
		regexp.MustCompile(`(?i)nazwa`),
		regexp.MustCompile(`(?i)towar`),
		regexp.MustCompile(`(?i)asortyment`),
		regexp.MustCompile(`(?i)materia[łl]`),
		regexp.MustCompile(`(?i)artyku[łl]`),
		regexp.MustCompile(`(?i)opis`),
		regexp.MustCompile(`(?i)product`),
		regexp.MustCompile(`(?i)description`),
		regexp.MustCompile(`(?i)item\s*name`),
	},
	model.FieldQuantity: {
		regexp.MustCompile(`(?i)ilo[śs][ćc]`),
		regexp.MustCompile(`(?i)liczba`),
		regexp.MustCompile(`(?i)\bstan\b`),
		regexp.MustCompile(`(?i)\bszt\b`),
		regexp.MustCompile(`(?i)\bqty\b`),
		regexp.MustCompile(`(?i)quantity`),
		regexp.MustCompile(`(?i)amount`),
	},
	model.FieldUnit: {
		regexp.MustCompile(`(?i)^j\.?\s*m\.?z?\.?$`),
		regexp.MustCompile(`(?i)^jedn\.?$`),
		regexp.MustCompile(`(?i)jednostka`),
		regexp.MustCompile(`(?i)miara`),
		regexp.MustCompile(`(?i)^unit`),
		regexp.MustCompile(`(?i)\buom\b`),
		regexp.MustCompile(`(?i)^u/m$`),
	},
}

// NormalizeHeader trims a header and collapses internal whitespace (wrapped
// header cells come back from Excel with embedded newlines).
func NormalizeHeader(header string) string {
	header = strings.TrimSpace(header)
	return whitespaceRe.ReplaceAllString(header, " ")
}

var whitespaceRe = regexp.MustCompile(`\s+`)
