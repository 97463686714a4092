package sequence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDocumentNumber(t *testing.T) {
	day := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		seq      int64
		want     string
		wantErr  bool
	}{
		{name: "mrn template", template: DefaultMRNTemplate, seq: 1, want: "MRN-20260831-0001"},
		{name: "bill template", template: DefaultBillNumberTemplate, seq: 42, want: "BILL-20260831-0042"},
		{name: "overflowing pad keeps digits", template: "X-{SEQ2}", seq: 1234, want: "X-1234"},
		{name: "plain seq", template: "{YY}{MM}-{SEQ}", seq: 7, want: "2608-7"},
		{name: "empty template", template: "", seq: 1, wantErr: true},
		{name: "zero seq", template: DefaultMRNTemplate, seq: 0, wantErr: true},
		{name: "negative seq", template: DefaultMRNTemplate, seq: -3, wantErr: true},
		{name: "unresolved token", template: "MRN-{NOPE}", seq: 1, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatDocumentNumber(tc.template, day, tc.seq)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDayOf(t *testing.T) {
	at := time.Date(2026, time.August, 31, 15, 4, 5, 0, time.UTC)
	day := DayOf(at)

	assert.Equal(t, "20260831", day.Key())
	assert.True(t, day.Contains(at))
	assert.True(t, day.Contains(day.Start))
	assert.False(t, day.Contains(day.End), "end bound is exclusive")
	assert.False(t, day.Contains(day.Start.Add(-time.Nanosecond)))
	assert.Equal(t, day.Start.AddDate(0, 0, 1), day.End)
}
