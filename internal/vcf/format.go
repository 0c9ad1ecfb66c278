package vcf

import "strings"

// NotFound is returned by FormatIndex when the label is absent.
const NotFound = -1

// FormatIndex returns the 0-based position of label among the
// colon-delimited subfields of a FORMAT descriptor such as "GT:GL:DP",
// or NotFound.
func FormatIndex(format, label string) int {
	for i := 0; ; i++ {
		field, rest, more := strings.Cut(format, ":")
		if field == label {
			return i
		}
		if !more {
			return NotFound
		}
		format = rest
	}
}

// subfield returns the idx-th colon-delimited subfield of a sample value.
// ok is false when the value has fewer subfields.
func subfield(sample string, idx int) (string, bool) {
	for i := 0; i < idx; i++ {
		_, rest, more := strings.Cut(sample, ":")
		if !more {
			return "", false
		}
		sample = rest
	}
	field, _, _ := strings.Cut(sample, ":")
	return field, true
}
