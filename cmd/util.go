package main

import (
	"log"
	"strconv"
)

// miscellaneous utility functions

func firstElementOf(s []string) string {
	// return first element of slice, or blank string if empty
	val := ""

	if len(s) > 0 {
		val = s[0]
	}

	return val
}

func nonemptyValues(val []string) []string {
	res := []string{}

	for _, s := range val {
		if s != "" {
			res = append(res, s)
		}
	}

	return res
}

func integerWithFallback(str string, min int, fallback int) int {
	val, err := strconv.Atoi(str)

	// fallback for invalid or nonsensical values
	if err != nil || val < min {
		val = fallback
	}

	return val
}

func timeoutWithMinimum(str string, min int) int {
	val, err := strconv.Atoi(str)

	if err != nil || val < min {
		val = min
		log.Printf(`invalid or missing timeout value "%s"; using minimum %d`, str, min)
	}

	return val
}

func uniqueStrings(s []string) []string {
	var uniq []string

	seen := make(map[string]bool)

	for _, val := range s {
		if seen[val] == false {
			uniq = append(uniq, val)
			seen[val] = true
		}
	}

	return uniq
}
