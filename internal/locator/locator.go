// Package locator finds a target string anywhere inside a JSON document.
//
// Trial exports come in several shapes (legacy and current API layouts), so the
// search does not assume any schema: it walks every object member and array
// element depth-first and reports the path of the first string that contains the
// target, ignoring case.
package locator

import (
	"strconv"
	"strings"

	"github.com/harrison/trialsift/internal/models"
)

// Find returns the path of the first string value in v that contains target
// (case-insensitive). Members are visited in document order and nested values are
// searched before the next sibling. An empty target never matches.
func Find(v models.Value, target string) (string, bool) {
	if target == "" {
		return "", false
	}
	m := matcher{needle: strings.ToLower(target)}
	return m.search(v, "", true)
}

// FindInField is like Find but only tests string values held directly by an
// object member named field, or by elements of an array held by such a member.
func FindInField(v models.Value, field, target string) (string, bool) {
	return FindInFields(v, []string{field}, target)
}

// FindInFields is FindInField for a set of member names. Blank names are
// ignored; with no names left nothing matches.
func FindInFields(v models.Value, fields []string, target string) (string, bool) {
	m := matcher{needle: strings.ToLower(target), fields: make(map[string]bool, len(fields))}
	for _, f := range fields {
		if f != "" {
			m.fields[f] = true
		}
	}
	if target == "" || len(m.fields) == 0 {
		return "", false
	}
	return m.search(v, "", false)
}

// Contains reports whether Find would succeed.
func Contains(v models.Value, target string) bool {
	_, ok := Find(v, target)
	return ok
}

type matcher struct {
	needle string
	fields map[string]bool // nil means any member
}

func (m matcher) hit(s string) bool {
	return strings.Contains(strings.ToLower(s), m.needle)
}

// search walks v. eligible reports whether a string found at this position may
// match; it is always true for an unrestricted search.
func (m matcher) search(v models.Value, path string, eligible bool) (string, bool) {
	switch v.Kind() {
	case models.KindObject:
		for _, member := range v.Members() {
			childPath := member.Key
			if path != "" {
				childPath = path + "." + member.Key
			}
			childEligible := m.fields == nil || m.fields[member.Key]
			if found, ok := m.search(member.Value, childPath, childEligible); ok {
				return found, true
			}
		}
	case models.KindArray:
		for i, elem := range v.Elems() {
			childPath := path + "[" + strconv.Itoa(i) + "]"
			// elements inherit eligibility from the member holding the array,
			// but objects inside the array start over
			if found, ok := m.search(elem, childPath, eligible); ok {
				return found, true
			}
		}
	case models.KindString:
		if !eligible || path == "" {
			return "", false
		}
		s, _ := v.Str()
		if m.hit(s) {
			return path, true
		}
	}
	return "", false
}
