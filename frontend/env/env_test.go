package env_test

import (
	"sync"
	"testing"

	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/types"
	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	e := env.Of(env.Binding{Name: "x", Type: types.IntType})
	typ, ok := e.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, types.IntType, typ)

	_, ok = e.Lookup("y")
	assert.False(t, ok)
	_, ok = env.Empty().Lookup("x")
	assert.False(t, ok)
}

func TestShadowing(t *testing.T) {
	outer := env.Of(env.Binding{Name: "x", Type: types.StrType})
	inner := outer.With("x", types.IntType)

	typ, _ := inner.Lookup("x")
	assert.Equal(t, types.IntType, typ)

	typ, _ = outer.Lookup("x")
	assert.Equal(t, types.StrType, typ, "leaving the inner scope restores the outer binding")

	both := env.Empty().WithAll(
		env.Binding{Name: "a", Type: types.IntType},
		env.Binding{Name: "a", Type: types.BoolType},
	)
	typ, _ = both.Lookup("a")
	assert.Equal(t, types.BoolType, typ)
	assert.Equal(t, 1, both.Len())
}

func TestImmutable(t *testing.T) {
	base := env.Of(env.Binding{Name: "a", Type: types.IntType})
	_ = base.With("b", types.IntType)
	_ = base.WithAll(env.Binding{Name: "c", Type: types.IntType})

	assert.Equal(t, []string{"a"}, base.Names())
	assert.Equal(t, 0, env.Empty().Len())
}

func TestNames(t *testing.T) {
	e := env.Of(
		env.Binding{Name: "zeta", Type: types.IntType},
		env.Binding{Name: "alpha", Type: types.IntType},
		env.Binding{Name: "mid", Type: types.IntType},
	)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, e.Names())
}

func TestNilEnv(t *testing.T) {
	var e *env.Env
	_, ok := e.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, e.Len())
	assert.Equal(t, []string{"x"}, e.With("x", types.IntType).Names())
}

func TestConcurrentReaders(t *testing.T) {
	base := env.Of(env.Binding{Name: "shared", Type: types.IntType})
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := base.With("own", types.List{Elem: types.IntType})
			for j := 0; j < 100; j++ {
				_, ok := child.Lookup("shared")
				assert.True(t, ok)
			}
			assert.Equal(t, 2, child.Len(), "goroutine %d", i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, base.Len())
}
