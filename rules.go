// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "strings"

// globMatch implements the small subset of shell-glob syntax
// original_source/src/rules.c relies on for class/instance matching:
// '*' (any run, including empty) and '?' (exactly one rune). No
// character classes, no escaping — rule tables in practice only ever
// use '*' as a prefix/suffix wildcard.
func globMatch(pattern, s string) bool {
	return globMatchRunes([]rune(pattern), []rune(s))
}

func globMatchRunes(pat, s []rune) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			// Collapse consecutive '*' and try every possible split.
			for len(pat) > 1 && pat[1] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatchRunes(pat[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pat, s = pat[1:], s[1:]
		default:
			if len(s) == 0 || s[0] != pat[0] {
				return false
			}
			pat, s = pat[1:], s[1:]
		}
	}
	return len(s) == 0
}

// containsFold reports whether title contains substr, case-insensitively,
// matching original_source's strcasestr use for title-based rules.
func containsFold(title, substr string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(substr))
}
