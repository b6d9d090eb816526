package adapters

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/creack/pty"
	"golang.org/x/term"
)

// ExpectRule answers an expected prompt from an interactive process.
// Max bounds how many times the rule may fire; zero means once.
type ExpectRule struct {
	Pattern  *regexp.Regexp
	Response string
	Secret   bool
	Max      int
}

// Exchange describes one scripted conversation with an external process:
// the command to run, the prompt/response rules applied in order, and the
// patterns that terminate the conversation early.
type Exchange struct {
	Command string
	Args    []string
	Dir     string

	Rules []ExpectRule

	// Failure aborts the exchange as soon as it appears in the output.
	Failure *regexp.Regexp

	// Success, when set, must have appeared in the output by the time the
	// process exits; a clean exit without it is still a failure.
	Success *regexp.Regexp
}

// InteractiveDriver runs scripted exchanges against external processes
// on a pseudo terminal. The terminal matters: ssh and gpg read
// passphrases from /dev/tty, never from a stdin pipe, so the process
// must own a controlling terminal for its prompts to reach the
// transcript and for responses to reach the process. Every exchange is
// bounded by Timeout; terminal echo is disabled, so responses never
// appear in the transcript regardless of the Secret flag.
type InteractiveDriver struct {
	Timeout time.Duration
}

func NewInteractiveDriver(timeout time.Duration) InteractiveDriver {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return InteractiveDriver{Timeout: timeout}
}

// Run executes the exchange and returns the full output transcript. The
// transcript holds only what the process wrote.
func (d InteractiveDriver) Run(ctx context.Context, ex Exchange) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ex.Command, ex.Args...)
	if ex.Dir != "" {
		cmd.Dir = ex.Dir
	}
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to start %s", ex.Command)).
			WithCause(err)
	}
	defer ptmx.Close()

	// Raw mode turns off echo on the shared terminal; without it every
	// response, passphrases included, would bounce back into the
	// transcript.
	if _, err := term.MakeRaw(int(ptmx.Fd())); err != nil {
		killGroup(cmd)
		_ = cmd.Wait()
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to configure terminal for %s", ex.Command)).
			WithCause(err)
	}

	output := make(chan []byte)
	go func() {
		defer close(output)
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				output <- chunk
			}
			if err != nil {
				// EIO here means the process side of the terminal is gone.
				return
			}
		}
	}()

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	remaining := make([]int, len(ex.Rules))
	for i, rule := range ex.Rules {
		remaining[i] = rule.Max
		if remaining[i] <= 0 {
			remaining[i] = 1
		}
	}

	var transcript strings.Builder
	scanned := 0
	succeeded := false
	var waitErr error

	for exited := false; !exited; {
		select {
		case chunk, ok := <-output:
			if !ok {
				output = nil
				continue
			}
			transcript.Write(chunk)
			text := transcript.String()
			if ex.Failure != nil && ex.Failure.MatchString(text) {
				killGroup(cmd)
				reapKilled(output, waitCh, &transcript)
				return transcript.String(), errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("%s reported failure", ex.Command))
			}
			if ex.Success != nil && ex.Success.MatchString(text) {
				succeeded = true
			}
			scanned = d.answer(text, scanned, ex.Rules, remaining, ptmx)
		case waitErr = <-waitCh:
			exited = true
		case <-ctx.Done():
			killGroup(cmd)
			reapKilled(output, waitCh, &transcript)
			return transcript.String(), errbuilder.New().
				WithCode(errbuilder.CodeDeadlineExceeded).
				WithMsg(fmt.Sprintf("timed out waiting for %s", ex.Command))
		}
	}
	// The process exited first; collect whatever output is still queued
	// behind the terminal before judging the transcript.
	if output != nil {
		for chunk := range output {
			transcript.Write(chunk)
		}
	}

	text := transcript.String()
	if ex.Failure != nil && ex.Failure.MatchString(text) {
		return text, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s reported failure", ex.Command))
	}
	if ex.Success != nil {
		if ex.Success.MatchString(text) {
			succeeded = true
		}
		if !succeeded {
			return text, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("%s exited without confirming success", ex.Command)).
				WithCause(waitErr)
		}
		return text, nil
	}
	if waitErr != nil {
		return text, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s failed", ex.Command)).
			WithCause(waitErr)
	}
	return text, nil
}

// killGroup takes down the process and everything it spawned. The child
// leads its own session on the pseudo terminal, so signalling the group
// keeps orphaned grandchildren from holding the terminal open.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

// reapKilled consumes remaining terminal output until the killed process
// is waited on and its terminal drains. Waiting without draining would
// deadlock against a process that was still writing when it died.
func reapKilled(output <-chan []byte, waitCh <-chan error, transcript *strings.Builder) {
	exited := false
	for output != nil || !exited {
		select {
		case chunk, ok := <-output:
			if !ok {
				output = nil
				continue
			}
			transcript.Write(chunk)
		case <-waitCh:
			exited = true
		}
	}
}

// answer feeds responses for every rule whose pattern matches the
// unconsumed tail of the transcript, in rule order. Consuming up to the
// match end keeps one prompt from satisfying a rule twice.
func (d InteractiveDriver) answer(text string, scanned int, rules []ExpectRule, remaining []int, input io.Writer) int {
	for {
		advanced := false
		for i, rule := range rules {
			if remaining[i] == 0 {
				continue
			}
			loc := rule.Pattern.FindStringIndex(text[scanned:])
			if loc == nil {
				continue
			}
			scanned += loc[1]
			remaining[i]--
			_, _ = input.Write([]byte(rule.Response + "\n"))
			advanced = true
			break
		}
		if !advanced {
			return scanned
		}
	}
}
