package grants

import (
	"testing"
	"time"
)

func TestReferenceCode(t *testing.T) {
	at := time.Date(2026, 7, 4, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		prefix    string
		holder    string
		at        time.Time
		threshold int
		roll      int
		want      string
	}{
		{"success", "GRT", "player-ayla", at, 12, 15, "GRT-AYLA04072026-T12-R15-S"},
		{"roll equals threshold", "GRT", "player-ayla", at, 12, 12, "GRT-AYLA04072026-T12-R12-S"},
		{"fail", "GRT", "player-ayla", at, 12, 3, "GRT-AYLA04072026-T12-R3-F"},
		{"prefix uppercased", "veil", "u-9f3a", at, 0, 0, "VEIL-9F3A04072026-T0-R0-S"},
		{"empty prefix uses default", "  ", "abc12", at, 1, 0, "GRT-BC1204072026-T1-R0-F"},
		{"short holder padded", "GRT", "x-7", at, 5, 9, "GRT-00X704072026-T5-R9-S"},
		{"non ascii ignored", "GRT", "ñandú-42", at, 5, 9, "GRT-ND4204072026-T5-R9-S"},
		{"date uses UTC", "GRT", "ayla", at.In(time.FixedZone("UTC+3", 3*3600)), 1, 1, "GRT-AYLA04072026-T1-R1-S"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReferenceCode(tt.prefix, tt.holder, tt.at, tt.threshold, tt.roll); got != tt.want {
				t.Fatalf("ReferenceCode = %q, want %q", got, tt.want)
			}
		})
	}
}
