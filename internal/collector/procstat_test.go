package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProcStat(t *testing.T) {
	tests := []struct {
		name      string
		procStat  string
		wantCores int
		wantCtxt  int64
		wantIntr  int64
		wantErr   bool
	}{
		{
			name: "two core system",
			procStat: `cpu  1234567 12345 234567 8901234 12345 0 6789 0 0 0
cpu0 617283 6172 117283 4450617 6172 0 3394 0 0 0
cpu1 617284 6173 117284 4450617 6173 0 3395 0 0 0
intr 98765432 12 0 0 45 0 0
ctxt 123456789
btime 1700000000
processes 54321`,
			wantCores: 2,
			wantCtxt:  123456789,
			wantIntr:  98765432,
		},
		{
			name:      "only ctxt",
			procStat:  "ctxt 42",
			wantCores: 0,
			wantCtxt:  42,
		},
		{
			name:     "bad intr total",
			procStat: "intr lots 1 2 3",
			wantErr:  true,
		},
		{
			name:     "bad ctxt",
			procStat: "ctxt -",
			wantErr:  true,
		},
		{
			name:     "no counters",
			procStat: "cpu  1 2 3 4\ncpu0 1 2 3 4",
			wantErr:  true,
		},
		{
			name:     "empty",
			procStat: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat, err := ParseProcStat(tt.procStat)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCores, stat.Cores)
			assert.Equal(t, tt.wantCtxt, stat.ContextSwitches)
			assert.Equal(t, tt.wantIntr, stat.Interrupts)
		})
	}
}

func TestParseProcStat_LongInterruptLine(t *testing.T) {
	var b strings.Builder
	b.WriteString("intr 1000")
	for i := 0; i < 20000; i++ {
		b.WriteString(" 0")
	}
	b.WriteString("\nctxt 7\n")

	stat, err := ParseProcStat(b.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stat.Interrupts)
	assert.Equal(t, int64(7), stat.ContextSwitches)
}
