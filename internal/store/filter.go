package store

import (
	"fmt"
	"strings"
)

// MemberFilter holds the identifying fields of a membership search.
// Empty fields are ignored; present ones are ANDed.
type MemberFilter struct {
	CustomerRef string
	Mobile      string
	Email       string
	Name        string
}

// HasExact reports whether any exact-match field is set
func (f MemberFilter) HasExact() bool {
	return f.CustomerRef != "" || f.Mobile != "" || f.Email != ""
}

// IsEmpty reports whether no field is set
func (f MemberFilter) IsEmpty() bool {
	return !f.HasExact() && f.Name == ""
}

// Where builds the WHERE clause body and its positional arguments
func (f MemberFilter) Where() (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CustomerRef != "" {
		conditions = append(conditions, "customer_ref = "+next(f.CustomerRef))
	}
	if f.Mobile != "" {
		conditions = append(conditions, "mobile = "+next(f.Mobile))
	}
	if f.Email != "" {
		conditions = append(conditions, "email = "+next(f.Email))
	}
	if f.Name != "" {
		p := next("%" + escapeLike(f.Name) + "%")
		q := next("%" + escapeLike(stripSpaces(f.Name)) + "%")
		conditions = append(conditions, "("+strings.Join([]string{
			"firstname_th ILIKE " + p,
			"lastname_th ILIKE " + p,
			"firstname_en ILIKE " + p,
			"lastname_en ILIKE " + p,
			"CONCAT_WS(' ', firstname_th, lastname_th) ILIKE " + p,
			"CONCAT_WS(' ', firstname_en, lastname_en) ILIKE " + p,
			compactName("firstname_th", "lastname_th") + " ILIKE " + q,
			compactName("firstname_en", "lastname_en") + " ILIKE " + q,
		}, " OR ")+")")
	}

	return strings.Join(conditions, " AND "), args
}

// escapeLike neutralizes LIKE wildcards typed by the user
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// nameSpaces is the whitespace removed from both sides of a compact name
// match. It mirrors the SQL class in compactName.
const nameSpaces = " \t\n\v\f\r\u00a0"

// compactName concatenates two name columns with all nameSpaces removed
func compactName(first, last string) string {
	return fmt.Sprintf(`regexp_replace(CONCAT(%s, %s), '[\s\u00a0]', '', 'g')`, first, last)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(nameSpaces, r) {
			return -1
		}
		return r
	}, s)
}
