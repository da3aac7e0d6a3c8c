package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

type recorder struct {
	steps []string
	fail  map[keysym.Keysym]bool
}

func (r *recorder) TypeKeysym(_ context.Context, sym keysym.Keysym, mods keymap.Mods) error {
	r.steps = append(r.steps, fmt.Sprintf("type %v %v", sym, mods))
	if r.fail[sym] {
		return errors.New("unresolvable")
	}
	return nil
}

func (r *recorder) Activate(_ context.Context, name string, latch keymap.Mods) (keymap.Mods, error) {
	r.steps = append(r.steps, fmt.Sprintf("activate %s %v", name, latch))
	if name == "Control_L" {
		return latch ^ keymap.ModControl, nil
	}
	return 0, nil
}

func (r *recorder) Direct(_ context.Context, name string, action inject.Action) error {
	r.steps = append(r.steps, fmt.Sprintf("direct %s %v", name, action))
	return nil
}

func (r *recorder) Click(button uint8) error {
	r.steps = append(r.steps, fmt.Sprintf("click %d", button))
	return nil
}

func (r *recorder) MovePointer(axis inject.Axis, value int, relative bool) error {
	r.steps = append(r.steps, fmt.Sprintf("move %d %d %v", axis, value, relative))
	return nil
}

func TestRunLatchAppliesToNextKeyOnly(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, 0, nil)
	require.NoError(t, r.Run(context.Background(), `\C\Sab`))
	assert.Equal(t, []string{"type a Shift+Control", "type b none"}, rec.steps)
}

func TestRunActivateCarriesLatch(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, 0, nil)
	require.NoError(t, r.Run(context.Background(), `\S\[Control_L]x\[Tab]y`))
	assert.Equal(t, []string{
		"activate Control_L Shift",
		"type x Shift+Control",
		"activate Tab none",
		"type y none",
	}, rec.steps)
}

func TestRunOtherSteps(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, 0, nil)
	require.NoError(t, r.Run(context.Background(), `\{+Alt_L}\m3\x+4\y7`))
	assert.Equal(t, []string{"direct Alt_L press", "click 3", "move 0 4 true", "move 1 7 false"}, rec.steps)
}

func TestRunContinuesAfterFailures(t *testing.T) {
	rec := &recorder{fail: map[keysym.Keysym]bool{keysym.FromRune('ж'): true}}
	r := NewRunner(rec, 0, nil)
	err := r.Run(context.Background(), `aж\Dzb`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Len(t, rec.steps, 4)
	assert.True(t, strings.HasPrefix(rec.steps[2], "type z"), rec.steps[2])
}

func TestRunHonoursDelayAndCancel(t *testing.T) {
	rec := &recorder{}
	r := NewRunner(rec, 20*time.Millisecond, nil)
	start := time.Now()
	require.NoError(t, r.Run(context.Background(), "abc"))
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.steps = nil
	assert.ErrorIs(t, r.Run(ctx, "abc"), context.Canceled)
	assert.Empty(t, rec.steps)
}

func ExampleParse() {
	ops, _ := Parse(`\Cc\[Return]`)
	for _, op := range ops {
		switch op.Kind {
		case Latch:
			fmt.Println("latch", op.Mod)
		case Char:
			fmt.Println("char", op.Sym)
		case Activate:
			fmt.Println("activate", op.Name)
		}
	}
	// Output:
	// latch Control
	// char c
	// activate Return
}
