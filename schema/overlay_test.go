package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlayKeepsInsertionOrder(t *testing.T) {
	var o Overlay[string, int]
	o.Set("c", 1)
	o.Set("a", 2)
	o.Set("b", 3)
	o.Set("c", 4) // overwrite keeps position

	assert.Equal(t, []string{"c", "a", "b"}, o.Keys())
	v, ok := o.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 3, o.Len())
}

func TestOverlayDelete(t *testing.T) {
	var o Overlay[string, int]
	o.Set("a", 1)
	o.Set("b", 2)
	o.Delete("a")
	o.Delete("missing")

	assert.Equal(t, []string{"b"}, o.Keys())
	_, ok := o.Get("a")
	assert.False(t, ok)

	o.Set("a", 5)
	assert.Equal(t, []string{"b", "a"}, o.Keys())
}

func TestOverlayZeroValue(t *testing.T) {
	var o Overlay[KPIKey, float64]
	_, ok := o.Get(KPIKey{Dimension: "d", KPI: "k"})
	assert.False(t, ok)
	assert.Equal(t, 0, o.Len())
	assert.Empty(t, o.Keys())
	o.Each(func(KPIKey, float64) { t.Fatal("unexpected entry") })
}

func TestOverlayClone(t *testing.T) {
	var o Overlay[string, int]
	o.Set("a", 1)
	o.Set("b", 2)

	c := o.Clone()
	c.Set("a", 10)
	c.Set("z", 26)

	v, _ := o.Get("a")
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"a", "b"}, o.Keys())
	assert.Equal(t, []string{"a", "b", "z"}, c.Keys())
}
