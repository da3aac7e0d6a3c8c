package exec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse(`notify-send "hello world" 'it''s'`)
	require.NoError(t, err)
	assert.Equal(t, "notify-send", c.Command)
	assert.Equal(t, []string{"hello world", "its"}, c.Args)
	assert.False(t, c.NoWait)

	for _, line := range []string{"xterm &", "xterm&"} {
		c, err = Parse(line)
		require.NoError(t, err)
		assert.Equal(t, "xterm", c.Command, line)
		assert.Empty(t, c.Args, line)
		assert.True(t, c.NoWait, line)
	}

	_, err = Parse("  ")
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Parse(`echo "open`)
	assert.Error(t, err)
}

func TestExecCommand(t *testing.T) {
	r := ExecCommand(&Command{Command: "echo", Args: []string{"-n", "hi"}})
	require.NoError(t, r.Err)
	assert.True(t, r.Processed)
	assert.Equal(t, "hi", string(r.StdOut))

	r = ExecCommand(&Command{Command: "cat", StdIn: []byte("typed")})
	require.NoError(t, r.Err)
	assert.Equal(t, "typed", string(r.StdOut))

	r = ExecCommand(&Command{UseShell: true, Command: "echo $0 >&2; exit 3", Args: []string{"oops"}})
	assert.Error(t, r.Err)
	assert.Equal(t, 3, r.Status)
	assert.Equal(t, "oops\n", string(r.StdErr))
}

func TestExecCommandMissing(t *testing.T) {
	r := ExecCommand(&Command{Command: "/nonexistent/xkeysend-test"})
	assert.False(t, r.Processed)
	assert.Equal(t, -1, r.Status)
	assert.Error(t, r.Err)
}

func TestExecCommandTimeout(t *testing.T) {
	start := time.Now()
	r := ExecCommand(&Command{UseShell: true, Command: "sleep 10; echo late", Timeout: 100 * time.Millisecond})
	assert.Error(t, r.Err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Empty(t, r.StdOut)
}

func TestMaxReply(t *testing.T) {
	r := ExecCommand(&Command{UseShell: true, Command: "printf 1234567890", MaxReply: 4})
	require.NoError(t, r.Err)
	assert.Equal(t, "1234", string(r.StdOut))
}
