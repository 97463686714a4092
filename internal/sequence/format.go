package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const (
	// DefaultMRNTemplate renders Medical Record Numbers, e.g. MRN-20260831-0001.
	DefaultMRNTemplate = "MRN-{YYYY}{MM}{DD}-{SEQ4}"
	// DefaultBillNumberTemplate renders bill numbers, e.g. BILL-20260831-0001.
	DefaultBillNumberTemplate = "BILL-{YYYY}{MM}{DD}-{SEQ4}"
)

// FormatDocumentNumber formats a human-readable document number based on a
// template, issue day, and monotonic per-day sequence.
//
// This function is PURE:
// - No side effects
// - No DB access
// - Fully deterministic
func FormatDocumentNumber(template string, day time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("document number template is empty")
	}

	if seq <= 0 {
		return "", fmt.Errorf("invalid document sequence: %d", seq)
	}

	out := template

	// Date tokens
	out = strings.ReplaceAll(out, "{YYYY}", day.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", day.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", day.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", day.Format("02"))

	// Simple sequence
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	// Padded sequence
	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}

		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}

		return fmt.Sprintf("%0*d", width, seq)
	})

	// Final safety check: unresolved tokens
	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in document number format: %s", out)
	}

	return out, nil
}
