package common

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageTimings_RecordAndGet(t *testing.T) {
	st := NewStageTimings()
	st.Record("filter", 10*time.Millisecond)
	st.Record("colors", 30*time.Millisecond)
	st.Record("filter", 5*time.Millisecond)

	assert.Equal(t, 15*time.Millisecond, st.Get("filter"))
	assert.Equal(t, 30*time.Millisecond, st.Get("colors"))
	assert.Zero(t, st.Get("layout"))
	assert.Equal(t, 45*time.Millisecond, st.Total())
}

func TestStageTimings_StartStop(t *testing.T) {
	st := NewStageTimings()
	stop := st.Start("layout")
	time.Sleep(2 * time.Millisecond)
	stop()
	require.GreaterOrEqual(t, st.Get("layout"), 2*time.Millisecond)
}

func TestStageTimings_String(t *testing.T) {
	st := NewStageTimings()
	assert.Empty(t, st.String())
	st.Record("filter", time.Millisecond)
	st.Record("colors", 2*time.Millisecond)
	assert.Equal(t, "filter: 1ms, colors: 2ms", st.String())
}

func TestStageTimings_Sorted(t *testing.T) {
	st := NewStageTimings()
	st.Record("a", time.Millisecond)
	st.Record("b", 3*time.Millisecond)
	st.Record("c", 2*time.Millisecond)
	assert.Equal(t, []string{"b", "c", "a"}, st.Sorted())
}

func TestStageTimings_Map(t *testing.T) {
	st := NewStageTimings()
	st.Record("filter", time.Millisecond)
	m := st.Map()
	m["filter"] = 0
	assert.Equal(t, time.Millisecond, st.Get("filter"))
}

func TestStageTimings_Concurrent(t *testing.T) {
	st := NewStageTimings()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				st.Record("colors", time.Microsecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1600*time.Microsecond, st.Get("colors"))
}
