// Package command parses the backslash-escaped command strings accepted
// for typing and runs them against an Executor.
//
//	\[Name]   press the named key, as if activated on the keyboard
//	\{Name}   press and release the keysym Name, ignoring latches
//	\{+Name}  press only
//	\{-Name}  release only
//	\S \C \A \M \W   latch Shift, Control, Alt, Meta or Super for the next key
//	\b \t \n \r \e \d   BackSpace, Tab, Linefeed, Return, Escape, Delete
//	\D1..\D9  wait 100ms..900ms
//	\m1..\m9  click a pointer button
//	\x123 \x+5 \x-5   set or move the pointer horizontally; \y likewise
//
// Any other escaped character is typed literally.
package command

import (
	"errors"
	"fmt"
	"strconv"

	"xkeysend/inject"
	"xkeysend/keymap"
	"xkeysend/keysym"
)

var ErrMalformed = errors.New("command: malformed escape")

type Kind int

const (
	// Char types Sym with the latched modifiers.
	Char Kind = iota
	// Activate presses the key named Name.
	Activate
	// Direct presses or releases the keysym named Name.
	Direct
	// Latch adds Mod to the latch.
	Latch
	// Delay waits N hundred milliseconds.
	Delay
	// Click clicks pointer button N.
	Click
	// Move sets or shifts the pointer coordinate on Axis.
	Move
)

// Op is one parsed step. Pos is its byte offset in the input.
type Op struct {
	Kind     Kind
	Pos      int
	Sym      keysym.Keysym
	Name     string
	Action   inject.Action
	Mod      keymap.Mods
	N        int
	Axis     inject.Axis
	Relative bool
}

// ParseError reports one malformed escape; parsing resumes after it.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s at %d: %s", ErrMalformed, e.Pos, e.Msg) }
func (e *ParseError) Unwrap() error { return ErrMalformed }

var latches = map[rune]keymap.Mods{
	'S': keymap.ModShift,
	'C': keymap.ModControl,
	'A': keymap.ModAlt,
	'M': keymap.ModMeta,
	'W': keymap.ModSuper,
}

var controls = map[rune]keysym.Keysym{
	'b': keysym.BackSpace,
	't': keysym.Tab,
	'n': keysym.Linefeed,
	'r': keysym.Return,
	'e': keysym.Escape,
	'd': keysym.Delete,
}

// Parse splits text into ops. Malformed escapes are reported and skipped
// without consuming the character after them, so the rest is still typed.
func Parse(text string) ([]Op, []error) {
	var (
		ops  []Op
		errs []error
		rs   []rune
		offs []int
	)
	for off, r := range text {
		rs = append(rs, r)
		offs = append(offs, off)
	}
	bad := func(i int, format string, args ...any) {
		errs = append(errs, &ParseError{Pos: offs[i], Msg: fmt.Sprintf(format, args...)})
	}

	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' {
			ops = append(ops, Op{Kind: Char, Pos: offs[i], Sym: keysym.FromRune(rs[i])})
			continue
		}
		start := i
		i++
		if i >= len(rs) {
			bad(start, "missing character after \\")
			break
		}
		c := rs[i]
		if mod, ok := latches[c]; ok {
			ops = append(ops, Op{Kind: Latch, Pos: offs[start], Mod: mod})
			continue
		}
		if sym, ok := controls[c]; ok {
			ops = append(ops, Op{Kind: Char, Pos: offs[start], Sym: sym})
			continue
		}
		switch c {
		case '[', '{':
			closer := ']'
			if c == '{' {
				closer = '}'
			}
			end := indexRune(rs, i+1, closer)
			if end < 0 {
				bad(start, "no closing %c", closer)
				continue
			}
			name := string(rs[i+1 : end])
			op := Op{Kind: Activate, Pos: offs[start], Name: name}
			if c == '{' {
				op.Kind = Direct
				if len(name) > 0 && (name[0] == '+' || name[0] == '-') {
					op.Action = inject.Press
					if name[0] == '-' {
						op.Action = inject.Release
					}
					op.Name = name[1:]
				}
			}
			if op.Name == "" {
				bad(start, "empty key name")
				i = end
				continue
			}
			ops = append(ops, op)
			i = end
		case 'D', 'm':
			if i+1 >= len(rs) || rs[i+1] < '1' || rs[i+1] > '9' {
				bad(start, "\\%c needs a digit 1-9", c)
				continue
			}
			kind := Delay
			if c == 'm' {
				kind = Click
			}
			i++
			ops = append(ops, Op{Kind: kind, Pos: offs[start], N: int(rs[i] - '0')})
		case 'x', 'y':
			n, rel, width := number(rs[i+1:])
			if width == 0 {
				bad(start, "\\%c needs a number", c)
				continue
			}
			axis := inject.AxisX
			if c == 'y' {
				axis = inject.AxisY
			}
			ops = append(ops, Op{Kind: Move, Pos: offs[start], Axis: axis, N: n, Relative: rel})
			i += width
		default:
			ops = append(ops, Op{Kind: Char, Pos: offs[start], Sym: keysym.FromRune(c)})
		}
	}
	return ops, errs
}

func indexRune(rs []rune, from int, r rune) int {
	for j := from; j < len(rs); j++ {
		if rs[j] == r {
			return j
		}
	}
	return -1
}

// number reads an optionally signed decimal; a sign makes it relative.
func number(rs []rune) (n int, relative bool, width int) {
	j := 0
	if j < len(rs) && (rs[j] == '+' || rs[j] == '-') {
		relative = true
		j++
	}
	digits := j
	for j < len(rs) && rs[j] >= '0' && rs[j] <= '9' {
		j++
	}
	if j == digits {
		return 0, false, 0
	}
	n, err := strconv.Atoi(string(rs[:j]))
	if err != nil {
		return 0, false, 0
	}
	return n, relative, j
}
