package yaml

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// keywords are the spellings YAML resolves to booleans or null. The list is
// kept exactly as consumers of generated files expect it, asymmetries included.
var keywords = map[string]struct{}{
	"null": {}, "Null": {}, "NULL": {},
	"true": {}, "True": {}, "TRUE": {},
	"false": {}, "False": {}, "FALSE": {},
	"YES": {}, "Yes": {}, "yes": {},
	"NO": {}, "No": {}, "no": {},
	"ON": {}, "On": {}, "on": {},
	"OFF": {}, "Off": {}, "off": {},
}

// listPattern matches a bracketed list literal, optionally glued to word
// characters on either side (foo[1,2]bar matches too). The trailing \n? keeps
// the end anchor matching before a single final newline.
var listPattern = regexp.MustCompile(`^\w*\[.+\]\w*\n?$`)

var integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)

// Escape returns the text to place after "key: " so that a YAML parser reads
// back a value of the type value appears to have. Keywords, list literals and
// numbers pass through untouched; everything else becomes a single-quoted
// string with embedded quotes doubled.
//
// Escape is not idempotent: escaping an already quoted value quotes it again.
func Escape(value string) string {
	if Unquoted(value) {
		return value
	}
	return Quote(value)
}

// Unquoted reports whether value is emitted as-is, leaving its type to the
// YAML parser. Numbers may carry surrounding whitespace; the YAML parser
// drops it when reading the plain scalar back.
func Unquoted(value string) bool {
	if isKeyword(value) || isList(value) {
		return true
	}
	number := strings.TrimSpace(value)
	return isInteger(number) || isFloat(number)
}

// Quote wraps value in single quotes, doubling any single quote inside it.
func Quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func isKeyword(value string) bool {
	_, ok := keywords[value]
	return ok
}

func isList(value string) bool {
	return listPattern.MatchString(value)
}

func isInteger(value string) bool {
	return integerPattern.MatchString(value)
}

func isFloat(value string) bool {
	// strconv accepts hex mantissas and, with a base prefix, underscores;
	// neither is a decimal float.
	if strings.ContainsAny(value, "xX_") {
		return false
	}
	// strconv only accepts an unsigned nan.
	unsigned := value
	if unsigned != "" && (unsigned[0] == '+' || unsigned[0] == '-') {
		unsigned = unsigned[1:]
	}
	if strings.EqualFold(unsigned, "nan") {
		return true
	}
	_, err := strconv.ParseFloat(value, 64)
	if err == nil {
		return true
	}
	// 1e999 is still a float, it just does not fit.
	var numErr *strconv.NumError
	return errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange)
}
