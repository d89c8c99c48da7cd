package adapter

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ParseList reads a list field that may arrive as a JSON array, as a string
// holding a JSON array, or as a comma separated string. Entries are trimmed and
// empty ones dropped. Ingredient objects ({name, quantity, unit}) are flattened
// to a single line.
func ParseList(r gjson.Result) []string {
	return parseList(r, splitComma)
}

// ParseInstructions is ParseList for instruction steps: a plain string is split
// on line breaks rather than commas, since steps routinely contain commas.
func ParseInstructions(r gjson.Result) []string {
	return parseList(r, splitLines)
}

func parseList(r gjson.Result, split func(string) []string) []string {
	switch {
	case r.IsArray():
		return fromArray(r)
	case r.Type == gjson.String:
		s := strings.TrimSpace(r.Str)
		if strings.HasPrefix(s, "[") && gjson.Valid(s) {
			return fromArray(gjson.Parse(s))
		}
		return split(s)
	default:
		return []string{}
	}
}

func fromArray(r gjson.Result) []string {
	out := []string{}
	for _, item := range r.Array() {
		var s string
		switch {
		case item.Type == gjson.String:
			s = item.Str
		case item.Type == gjson.Number:
			s = item.Raw
		case item.IsObject():
			s = ingredientLine(item)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ingredientLine(obj gjson.Result) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"name", "quantity", "unit"} {
		if v := strings.TrimSpace(obj.Get(key).String()); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func splitComma(s string) []string {
	return clean(strings.Split(s, ","))
}

func splitLines(s string) []string {
	return clean(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }))
}

func clean(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// uniq keeps the first occurrence of each entry
func uniq(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
