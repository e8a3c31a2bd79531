package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase         { return r.phase }
func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunner_PhaseOrder(t *testing.T) {
	t.Parallel()
	var log []string
	r := NewRunner()
	r.Register(recorder{"save", PhasePersist, &log})
	r.Register(recorder{"script", PhaseUpdate, &log})
	r.Register(recorder{"clock", PhaseInput, &log})
	r.Register(recorder{"trail", PhaseUpdate, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"clock", "script", "trail", "save"}, log)
	assert.Equal(t, 4, r.Len())
}

func TestPhase_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "persist", PhasePersist.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
