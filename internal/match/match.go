// Package match decides whether resume fields agree with provider-asserted
// verified values, for trust-badge display. All functions are pure and total:
// missing or empty input folds into a false match, never an error.
package match

import (
	"sort"
	"strings"
)

// Normalize trims, lowercases, and collapses internal whitespace runs to a
// single space. Idempotent.
func Normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// Exact reports whether two values are equal after normalization. An empty
// value on either side never matches.
func Exact(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

var phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "")

// Phone compares two phone numbers after stripping spaces, hyphens,
// parentheses, and plus signs. No locale-aware parsing is done: "+91 555..."
// and "0091 555..." are different numbers here. Known limitation inherited
// from the editor's behavior.
func Phone(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return phoneStripper.Replace(a) == phoneStripper.Replace(b)
}

// Names compares person names with deliberately permissive rules, in order,
// short-circuiting on the first hit:
//
//  1. exact normalized equality
//  2. identical first word ("John Smith" vs "John Doe-Smith")
//  3. same word count and identical words ignoring order ("Smith John")
//  4. every word of the shorter name present in the longer one
//     ("John Michael Smith" vs "John Smith")
//
// Rule 2 accepts distinct people sharing a first name. That is an accepted
// product tradeoff (fewer false "mismatch" badges), not a bug.
func Names(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	wa := strings.Split(na, " ")
	wb := strings.Split(nb, " ")
	if len(wa) == 0 || len(wb) == 0 {
		return false
	}
	if wa[0] == wb[0] {
		return true
	}

	if len(wa) == len(wb) {
		sa := append([]string(nil), wa...)
		sb := append([]string(nil), wb...)
		sort.Strings(sa)
		sort.Strings(sb)
		equal := true
		for i := range sa {
			if sa[i] != sb[i] {
				equal = false
				break
			}
		}
		if equal {
			return true
		}
	}

	shorter, longer := wa, wb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	longerSet := make(map[string]struct{}, len(longer))
	for _, w := range longer {
		longerSet[w] = struct{}{}
	}
	for _, w := range shorter {
		if _, ok := longerSet[w]; !ok {
			return false
		}
	}
	return true
}

// Field dispatches on the logical field name: phone numbers and person names
// get their fuzzy comparators, everything else (email, address, document ids)
// gets exact normalized equality.
func Field(field, resumeValue, verifiedValue string) bool {
	switch field {
	case "phone":
		return Phone(resumeValue, verifiedValue)
	case "name":
		return Names(resumeValue, verifiedValue)
	default:
		return Exact(resumeValue, verifiedValue)
	}
}
