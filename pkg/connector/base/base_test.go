package base

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hftex/mindsdb/pkg/connector/core"
)

func testSpec() *core.ArgSpec {
	return core.NewArgSpec().
		Add(core.Arg{Name: "host", Type: core.ArgTypeString, Required: true}).
		Add(core.Arg{Name: "port", Type: core.ArgTypeInt}).
		Add(core.Arg{Name: "password", Type: core.ArgTypePassword}).
		Add(core.Arg{Name: "debug", Type: core.ArgTypeBool})
}

func TestNew(t *testing.T) {
	c := New("orders_db", testSpec(), map[string]interface{}{"host": "db.local"})

	assert.Equal(t, "orders_db", c.Name())
	assert.NotNil(t, c.Logger())
	assert.NotNil(t, c.Metrics())
	assert.False(t, c.IsConnected())
}

func TestConnectedFlag(t *testing.T) {
	c := New("orders_db", testSpec(), map[string]interface{}{})

	c.SetConnected(true)
	assert.True(t, c.IsConnected())

	c.MarkBroken(fmt.Errorf("connection reset"))
	assert.False(t, c.IsConnected())
}

func TestConnectedFlagConcurrency(t *testing.T) {
	c := New("orders_db", testSpec(), map[string]interface{}{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(on bool) {
			defer wg.Done()
			c.SetConnected(on)
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			_ = c.IsConnected()
		}()
	}
	wg.Wait()
}

func TestDescribe(t *testing.T) {
	c := New("orders_db", testSpec(), map[string]interface{}{
		"host":     "db.local",
		"password": "s3cret",
	})

	rendered := c.Describe(false)
	require.Len(t, rendered, 2)
	assert.Equal(t, core.RenderedArg{Name: "host", Value: "db.local"}, rendered[0])
	assert.Equal(t, core.RenderedArg{Name: "password", Value: core.RedactedValue}, rendered[1])

	revealed := c.Describe(true)
	assert.Equal(t, "s3cret", revealed[1].Value)
}

func TestStringArg(t *testing.T) {
	c := New("x", testSpec(), map[string]interface{}{
		"host":  "db.local",
		"empty": "",
		"port":  5432,
	})

	v, ok := c.StringArg("host")
	assert.True(t, ok)
	assert.Equal(t, "db.local", v)

	_, ok = c.StringArg("empty")
	assert.False(t, ok)

	_, ok = c.StringArg("port")
	assert.False(t, ok)

	assert.Equal(t, "fallback", c.StringArgDefault("absent", "fallback"))
}

func TestIntArg(t *testing.T) {
	c := New("x", testSpec(), map[string]interface{}{
		"int":     5432,
		"int64":   int64(5433),
		"float":   float64(5434),
		"string":  "5435",
		"garbage": "not a number",
	})

	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"int", 5432, true},
		{"int64", 5433, true},
		{"float", 5434, true},
		{"string", 5435, true},
		{"garbage", 0, false},
		{"absent", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, ok := c.IntArg(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
		})
	}

	assert.Equal(t, 5432, c.IntArgDefault("int", 1))
	assert.Equal(t, 9999, c.IntArgDefault("absent", 9999))
}

func TestBoolArg(t *testing.T) {
	c := New("x", testSpec(), map[string]interface{}{
		"debug":   true,
		"textual": "true",
		"garbage": "maybe",
	})

	v, ok := c.BoolArg("debug")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = c.BoolArg("textual")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = c.BoolArg("garbage")
	assert.False(t, ok)
}
