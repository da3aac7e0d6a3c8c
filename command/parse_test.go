package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

func kinds(ops []Op) []Kind {
	var out []Kind
	for _, op := range ops {
		out = append(out, op.Kind)
	}
	return out
}

func TestParsePlainText(t *testing.T) {
	ops, errs := Parse("hé\n")
	require.Empty(t, errs)
	require.Len(t, ops, 3)
	assert.Equal(t, keysym.Keysym('h'), ops[0].Sym)
	assert.Equal(t, keysym.Keysym(0xe9), ops[1].Sym)
	assert.Equal(t, 1, ops[1].Pos)
	assert.Equal(t, keysym.Return, ops[2].Sym)
	assert.Equal(t, 3, ops[2].Pos)
}

func TestParseEscapes(t *testing.T) {
	ops, errs := Parse(`\Ca\[F5]\{+Shift_L}\{-Shift_L}\{Tab}\b\t\n\r\e\d\D3\m2\x100\y-20\\`)
	require.Empty(t, errs)
	assert.Equal(t, []Kind{
		Latch, Char, Activate, Direct, Direct, Direct,
		Char, Char, Char, Char, Char, Char,
		Delay, Click, Move, Move, Char,
	}, kinds(ops))

	assert.Equal(t, keymap.ModControl, ops[0].Mod)
	assert.Equal(t, "F5", ops[2].Name)
	assert.Equal(t, Op{Kind: Direct, Pos: ops[3].Pos, Name: "Shift_L", Action: inject.Press}, ops[3])
	assert.Equal(t, inject.Release, ops[4].Action)
	assert.Equal(t, inject.Tap, ops[5].Action)
	assert.Equal(t, []keysym.Keysym{
		keysym.BackSpace, keysym.Tab, keysym.Linefeed, keysym.Return, keysym.Escape, keysym.Delete,
	}, []keysym.Keysym{ops[6].Sym, ops[7].Sym, ops[8].Sym, ops[9].Sym, ops[10].Sym, ops[11].Sym})
	assert.Equal(t, 3, ops[12].N)
	assert.Equal(t, 2, ops[13].N)
	assert.Equal(t, Op{Kind: Move, Pos: ops[14].Pos, Axis: inject.AxisX, N: 100}, ops[14])
	assert.Equal(t, Op{Kind: Move, Pos: ops[15].Pos, Axis: inject.AxisY, N: -20, Relative: true}, ops[15])
	assert.Equal(t, keysym.Keysym('\\'), ops[16].Sym)
}

func TestParseLatches(t *testing.T) {
	ops, errs := Parse(`\S\C\A\M\Wx`)
	require.Empty(t, errs)
	var latch keymap.Mods
	for _, op := range ops[:5] {
		latch |= op.Mod
	}
	assert.Equal(t, keymap.ModShift|keymap.ModControl|keymap.ModAlt|keymap.ModMeta|keymap.ModSuper, latch)
	assert.Equal(t, Char, ops[5].Kind)
}

func TestParseMalformed(t *testing.T) {
	for _, tc := range []struct {
		in    string
		kinds []Kind
	}{
		{`\[Return`, []Kind{Char, Char, Char, Char, Char, Char}},
		{`\{}a`, []Kind{Char}},
		{`\D0x`, []Kind{Char, Char}},
		{`\m`, nil},
		{`\xq`, []Kind{Char}},
		{`ab\`, []Kind{Char, Char}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			ops, errs := Parse(tc.in)
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], ErrMalformed)
			assert.Equal(t, tc.kinds, kinds(ops))
		})
	}
}

func TestParseMalformedKeepsFollowingChar(t *testing.T) {
	ops, errs := Parse(`\D5\Dxy`)
	require.Len(t, errs, 1)
	require.Len(t, ops, 3)
	assert.Equal(t, Delay, ops[0].Kind)
	assert.Equal(t, keysym.Keysym('x'), ops[1].Sym)
	assert.Equal(t, keysym.Keysym('y'), ops[2].Sym)
}
