// Package expansion implements virtual row expansion for multi-item invoice
// rows. A single ai_invoice row packs its purchased line items into three
// parallel array fields (descriptions, unit prices, quantities); this package
// parses those fields and expands each raw row into independent line-item rows.
package expansion

import (
	"fmt"
	"strconv"
	"strings"
)

type fieldKind int

const (
	fieldNull fieldKind = iota
	fieldText
	fieldList
)

// FieldValue is a tagged union over the shapes a result-set cell can take:
// null, a string (JSON array literal, delimited string, or scalar), or a
// native list already decoded by the driver.
type FieldValue struct {
	kind fieldKind
	text string
	list []interface{}
}

// ValueOf classifies a raw cell value into a FieldValue.
func ValueOf(v interface{}) FieldValue {
	switch t := v.(type) {
	case nil:
		return FieldValue{kind: fieldNull}
	case string:
		return FieldValue{kind: fieldText, text: t}
	case []byte:
		// lib/pq returns jsonb and text columns as []byte
		return FieldValue{kind: fieldText, text: string(t)}
	case []interface{}:
		return FieldValue{kind: fieldList, list: t}
	case []string:
		list := make([]interface{}, len(t))
		for i, s := range t {
			list[i] = s
		}
		return FieldValue{kind: fieldList, list: list}
	default:
		return FieldValue{kind: fieldText, text: stringify(v)}
	}
}

// IsNull reports whether the value is null.
func (f FieldValue) IsNull() bool {
	return f.kind == fieldNull
}

// IsEmpty reports whether the value carries no content at all: null, a
// blank string, or an empty native list.
func (f FieldValue) IsEmpty() bool {
	switch f.kind {
	case fieldNull:
		return true
	case fieldText:
		return strings.TrimSpace(f.text) == ""
	case fieldList:
		return len(f.list) == 0
	}
	return true
}

// Text returns the string form of the value. Lists are joined with commas.
func (f FieldValue) Text() string {
	switch f.kind {
	case fieldNull:
		return ""
	case fieldText:
		return f.text
	case fieldList:
		parts := make([]string, 0, len(f.list))
		for _, el := range f.list {
			if el == nil {
				continue
			}
			parts = append(parts, stringify(el))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// stringify renders a scalar the way a human would write it: floats without
// a trailing ".0" so a JSON 5 and a JSON 5.0 both come out as "5".
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
