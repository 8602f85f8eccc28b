// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils formats values for the command line output.
package textutils

import (
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatInt formats n with a comma every three digits.
func FormatInt(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatKm renders a distance in kilometers the way staff read it.
func FormatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', 2, 64) + " km"
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= width {
		return s
	}

	runes := []rune(s)

	return string(runes[:width-1]) + "…"
}
