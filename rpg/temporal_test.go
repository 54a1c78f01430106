package rpg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/sas"
)

func TestBuildTemporalOrdersChainByTime(t *testing.T) {
	st := chainTask(t)
	state := State{st.Variables[0].ID: st.InitValue[st.Variables[0].ID]}
	g := BuildTemporal(st, state)

	v := st.Variables[0]
	b, ok := v.ValueOf(ground.FactKey(0, []string{"b"}))
	require.True(t, ok)
	vc := st.Variables[1]
	c, ok := vc.ValueOf(ground.FactKey(0, []string{"c"}))
	require.True(t, ok)

	tb, ok := g.Time(sas.Atom{Var: v.ID, Value: b})
	require.True(t, ok)
	tc, ok := g.Time(sas.Atom{Var: vc.ID, Value: c})
	require.True(t, ok)
	assert.Less(t, tb, tc)
}
