package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

func TestTitles(t *testing.T) {
	assert.Equal(t, "Zones: finger 20px, thumb 25px", RadiiTitle(trigger.DefaultRadii()))
	assert.Equal(t, "Last: none", LastTitle(""))
	assert.Equal(t, "Last: Harder", LastTitle("Harder"))
}

func TestTray_StateWithoutMenu(t *testing.T) {
	tr := New(trigger.DefaultRadii())

	tr.SetRadii(trigger.Radii{Finger: 22, Thumb: 27})
	tr.SetLastTrigger("Work It")

	assert.Equal(t, trigger.Radii{Finger: 22, Thumb: 27}, tr.Radii())
	assert.Equal(t, "Work It", tr.LastTrigger())
	assert.True(t, tr.IsEnabled())
}

func TestTray_Callbacks(t *testing.T) {
	tr := New(trigger.DefaultRadii())

	var bigger, smaller int
	var toggled []bool
	tr.OnBigger(func() { bigger++ })
	tr.OnSmaller(func() { smaller++ })
	tr.OnToggle(func(enabled bool) { toggled = append(toggled, enabled) })

	tr.handle(func() func() { return tr.onBigger })
	tr.handle(func() func() { return tr.onBigger })
	tr.handle(func() func() { return tr.onSmaller })
	tr.handle(func() func() { return tr.onDashboard })
	tr.handleToggle()
	tr.handleToggle()

	assert.Equal(t, 2, bigger)
	assert.Equal(t, 1, smaller)
	assert.Equal(t, []bool{false, true}, toggled)
	assert.True(t, tr.IsEnabled())
}
