package main

import (
	"log"
)

// collects required string values during startup validation, so that every
// missing or invalid field is reported before the service exits

type stringValidator struct {
	values  []string
	invalid bool
}

func (v *stringValidator) addValue(value string) {
	if value != "" {
		v.values = append(v.values, value)
	}
}

func (v *stringValidator) requireValue(value string, label string) {
	if value == "" {
		log.Printf("[VALIDATE] missing %s", label)
		v.invalid = true
		return
	}

	v.addValue(value)
}

func (v *stringValidator) Values() []string {
	return v.values
}

func (v *stringValidator) Invalid() bool {
	return v.invalid
}
