package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// symbolReplacer maps degree/minute/second glyphs and group separators to a
// space. Several of these (º, ʹ, ʺ) are Unicode letters, so they must be
// removed before letters are read as hemisphere tokens.
var symbolReplacer = strings.NewReplacer(
	"°", " ", "º", " ", "˚", " ",
	"′", " ", "ʹ", " ", "'", " ", "’", " ", "‘", " ", "`", " ", "´", " ",
	"″", " ", "ʺ", " ", `"`, " ", "”", " ", "“", " ",
	",", " ", ";", " ", "/", " ",
)

func normalize(raw string) string {
	return symbolReplacer.Replace(raw)
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenWord
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits normalized input into numeric and alphabetic tokens.
// A leading + or - belongs to a number only at the start of the input or
// after whitespace; between digits (40-44-55N) a dash is a separator.
func tokenize(s string) ([]token, error) {
	runes := []rune(s)
	var tokens []token

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isNumberRune(r) || isSignedNumberStart(runes, i):
			start := i
			i++
			for i < len(runes) && isNumberRune(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i])})
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[start:i])})
		case r == '-' || r == '+':
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return tokens, nil
}

func isNumberRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}

func isSignedNumberStart(runes []rune, i int) bool {
	if runes[i] != '-' && runes[i] != '+' {
		return false
	}
	if i+1 >= len(runes) || !isNumberRune(runes[i+1]) {
		return false
	}
	return i == 0 || unicode.IsSpace(runes[i-1])
}

// group is the numeric fields of one component plus its hemisphere.
type group struct {
	fields     []string
	hemisphere Hemisphere
}

// splitGroups normalizes raw and cuts it into hemisphere-terminated groups.
// Exactly two groups are required.
func splitGroups(raw string) ([]group, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, newParseError(raw, ErrFormat, "empty input", nil)
	}

	tokens, err := tokenize(normalize(raw))
	if err != nil {
		return nil, newParseError(raw, ErrFormat, err.Error(), nil)
	}

	var (
		groups  []group
		pending []string
	)
	for _, tok := range tokens {
		if tok.kind == tokenNumber {
			pending = append(pending, tok.text)
			continue
		}
		h, ok := parseHemisphere(tok.text)
		if !ok {
			return nil, newParseError(raw, ErrHemisphere,
				fmt.Sprintf("unrecognized hemisphere %q, want one of N, S, E, W", tok.text), nil)
		}
		if len(pending) == 0 {
			return nil, newParseError(raw, ErrFormat,
				fmt.Sprintf("hemisphere %s has no preceding degrees", h), nil)
		}
		groups = append(groups, group{fields: pending, hemisphere: h})
		pending = nil
	}

	if len(pending) > 0 {
		return nil, newParseError(raw, ErrFormat,
			fmt.Sprintf("trailing value %q has no hemisphere letter", strings.Join(pending, " ")), nil)
	}
	if len(groups) != 2 {
		return nil, newParseError(raw, ErrFormat,
			fmt.Sprintf("expected 2 hemisphere-tagged components, found %d", len(groups)), nil)
	}
	return groups, nil
}
