package exec

/*
  Fold external command execution: the "!command" macros bound to keys.
*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
)

type Command struct {
	ID       string
	UseShell bool
	NoWait   bool          // https://golang.org/pkg/os/exec/#Cmd.Start vs "Run()"
	Timeout  time.Duration // 0: wait forever
	MaxReply int64         // stdout/stderr bytes kept, 0: 64k
	// https://golang.org/pkg/os/exec/#Cmd
	Env     []string
	Dir     string
	Command string
	Args    []string
	StdIn   []byte
}

type Result struct {
	ID        string   `json:"id"`
	Processed bool     `json:"processed"` // Was this command ever started?
	Command   string   `json:"command"`
	Args      []string `json:"args,omitempty"`
	Status    int      `json:"status"`
	StdOut    []byte   `json:"stdout,omitempty"`
	StdErr    []byte   `json:"stderr,omitempty"`
	Err       error    `json:"-"`
}

var ErrEmpty = errors.New("exec: empty command line")

// Parse splits a macro command line the way a POSIX shell would, without
// running one. A trailing "&" detaches the command.
func Parse(line string) (*Command, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("exec: %q: %w", line, err)
	}
	c := &Command{}
	if n := len(words); n > 0 && words[n-1] == "&" {
		c.NoWait = true
		words = words[:n-1]
	} else if n > 0 && strings.HasSuffix(words[n-1], "&") && !strings.HasSuffix(words[n-1], `\&`) {
		c.NoWait = true
		words[n-1] = strings.TrimSuffix(words[n-1], "&")
	}
	if len(words) == 0 || words[0] == "" {
		return nil, ErrEmpty
	}
	c.Command, c.Args = words[0], words[1:]
	return c, nil
}

// https://golang.org/pkg/os/exec/#Cmd
func ExecCommand(c *Command) *Result {
	r := &Result{ID: c.ID, Command: c.Command, Args: c.Args}

	cmd := exec.Command(c.Command, c.Args...)
	if c.UseShell {
		// -c: commands are read from the first non-option argument, the
		// following ones become $0, $1...
		cmd = exec.Command("/bin/sh", append([]string{"-c", c.Command}, c.Args...)...)
	}
	// https://medium.com/@felixge/killing-a-child-process-and-all-of-its-children-in-go-54079af94773
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdin = bytes.NewReader(c.StdIn)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	limit := c.MaxReply
	if limit <= 0 {
		limit = 64 << 10
	}
	var stdout, stderr bytes.Buffer
	var stdoutIn, stderrIn io.ReadCloser
	if !c.NoWait { // Otherwise the child keeps /dev/null at stdout and stderr.
		stdoutIn, _ = cmd.StdoutPipe()
		stderrIn, _ = cmd.StderrPipe()
	}

	if err := cmd.Start(); err != nil {
		r.fail(err)
		return r
	}
	r.Processed = true
	if c.NoWait {
		go cmd.Wait() // reap
		return r
	}

	if c.Timeout > 0 {
		pid := cmd.Process.Pid
		t := time.AfterFunc(c.Timeout, func() {
			// Signal the whole group, not only the leader.
			syscall.Kill(-pid, syscall.SIGTERM)
			time.Sleep(time.Second / 2)
			syscall.Kill(-pid, syscall.SIGKILL)
		})
		defer t.Stop()
	}

	// https://blog.kowalczyk.info/article/wOYk/advanced-command-execution-in-go-with-osexec.html
	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, &stdout, stdoutIn, limit)
	go drain(&wg, &stderr, stderrIn, limit)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		r.fail(err)
	}
	r.StdOut = stdout.Bytes()
	if len(r.StdErr) == 0 {
		r.StdErr = stderr.Bytes()
	}
	return r
}

func drain(wg *sync.WaitGroup, dst *bytes.Buffer, src io.Reader, limit int64) {
	defer wg.Done()
	io.CopyN(dst, src, limit)
	io.Copy(io.Discard, src) // Discard all the rest
}

func (r *Result) fail(err error) {
	r.Err = err
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			r.Status = status.ExitStatus()
			if status.Signaled() {
				r.Status = -int(status.Signal())
			}
		}
		return
	}
	r.Status = -1 // No such command at all?
	r.StdErr = []byte(err.Error())
}
