package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool                  { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error    { return f.record("register") }
func (f *fakeExec) Profile(context.Context) error     { return f.record("profile") }
func (f *fakeExec) Status(context.Context) error      { return f.record("status") }
func (f *fakeExec) ChangeEmail(context.Context) error { return f.record("email") }
func (f *fakeExec) Forgot(context.Context) error      { return f.record("forgot") }
func (f *fakeExec) Verify(_ context.Context, token string) error {
	return f.record("verify " + token)
}
func (f *fakeExec) Reset(_ context.Context, token string) error {
	return f.record("reset " + token)
}
func (f *fakeExec) Avatar(_ context.Context, path string) error {
	return f.record("avatar " + path)
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

// capture replaces printlnFn and returns the printed lines.
func capture(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec execIface, input string) {
	runREPL(context.Background(), exec, func() string { return "(s)" }, bufio.NewReader(strings.NewReader(input)))
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capture(t)

	exec := &fakeExec{}
	run(exec, strings.Join([]string{
		"register",
		"verify tok-1",
		"login",
		"profile",
		"me",
		"status",
		"avatar /tmp/my photo.png",
		"email",
		"logout",
		"forgot",
		"reset tok-2",
		"exit",
		"login",
	}, "\n"))

	assert.Equal(t, []string{
		"register", "verify tok-1", "login", "profile", "profile", "status",
		"avatar /tmp/my photo.png", "email", "logout", "forgot", "reset tok-2",
	}, exec.calls)
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capture(t)

	exec := &fakeExec{}
	run(exec, "help\nlogin\nhelp\n")

	assert.Contains(t, *lines, helpGuest)
	assert.Contains(t, *lines, helpMember)
}

func TestRunREPL_UsageForMissingArguments(t *testing.T) {
	lines := capture(t)

	exec := &fakeExec{}
	run(exec, "verify\navatar\nreset\nquit\n")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Usage: verify <token>")
	assert.Contains(t, *lines, "Usage: avatar <path>")
	assert.Contains(t, *lines, "Usage: reset <token>")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_UnknownAndBlankLines(t *testing.T) {
	lines := capture(t)

	exec := &fakeExec{}
	run(exec, "\n   \nfoobar\n")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capture(t)

	exec := &fakeExec{err: client.ErrUnavailable}
	run(exec, "profile\nstatus\n")

	assert.Equal(t, []string{"profile", "status"}, exec.calls)
	assert.Contains(t, *lines, "Error: Server unavailable, try again later")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capture(t)

	exec := &fakeExec{}
	run(exec, "status")

	assert.Equal(t, []string{"status"}, exec.calls)
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("status\n")))
	assert.Empty(t, exec.calls)
}

func TestDescribeError_Plain(t *testing.T) {
	assert.Equal(t, "boom", describeError(errors.New("boom")))
}
