package classifier

import "unicode/utf8"

// SampleSize is the number of leading bytes inspected per file.
const SampleSize = 1024

// controlRatioLimit is the fraction of control bytes at which a sample that
// is not valid UTF-8 is considered binary.
const controlRatioLimit = 0.30

// IsText decides whether a byte sample looks like human-readable text.
//
// An empty sample is text. Any NUL byte makes it binary. Valid UTF-8 is text.
// Otherwise the sample is text only if control bytes (below 0x20, excluding
// '\n', '\r' and '\t') make up strictly less than 30% of it.
func IsText(sample []byte) bool {
	if len(sample) == 0 {
		return true
	}

	for _, b := range sample {
		if b == 0 {
			return false
		}
	}

	if utf8.Valid(sample) {
		return true
	}

	controls := 0
	for _, b := range sample {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			controls++
		}
	}

	return float64(controls)/float64(len(sample)) < controlRatioLimit
}
