package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"etarefas/internal/commands"
	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/service"
	"etarefas/internal/state"
	"etarefas/internal/testutil"
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:     t.TempDir(),
		BaseURL: "http://localhost:8080",
		Timeout: 10 * time.Second,
		Color:   config.ColorNever,
		Quiet:   quiet,
	}

	var gw *gateway.Gateway
	if svc != nil {
		gw = gateway.New(svc, state.NewContainer())
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, gw, args, &outBuf, &errBuf)
	if gw != nil {
		gw.Wait()
	}
	return outBuf.String(), errBuf.String(), code
}

func expectCode(t *testing.T, got, want int, stderr string) {
	t.Helper()
	if got != want {
		t.Errorf("expected exit code %d, got %d (stderr %q)", want, got, stderr)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "etarefas 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "etarefas add", "#<id>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", "2%", service.StatusPending)
	svc.AddTask("Pay rent", "before the 5th", service.StatusFinished)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "   1  [ ] Buy milk (#1)\n          2%\n   2  [x] Pay rent (#2)\n          before the 5th\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, true)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestListCommand_StatusFilterKeepsPositions(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "x", service.StatusFinished)
	svc.AddTask("b", "y", service.StatusPending)

	cmd := &commands.ListCmd{}
	cmd.SetStatus("pending")
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "   2  [ ] b (#2)\n          y\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_InvalidStatus(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetStatus("maybe")
	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), nil, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: invalid status: maybe\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListErr = service.Transportf(nil, "list tasks: dial tcp: connection refused")

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, code, exitcode.BackendError, stderr)
	if stderr != "error: backend error: list tasks: dial tcp: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_PlainErrorIsBackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expectCode(t, code, exitcode.BackendError, stderr)
	if stderr != "error: backend error: boom\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	cmd.SetDescription("2%")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Buy", "milk"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	tasks := svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	want := service.Task{ID: 1, Title: "Buy milk", Description: "2%", Status: service.StatusPending}
	if tasks[0] != want {
		t.Errorf("expected %+v, got %+v", want, tasks[0])
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	cmd.SetDescription("d")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Task"}, true)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_FinishedStatus(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	cmd.SetDescription("d")
	cmd.SetStatus("Finalizada")
	_, stderr, code := runCommand(t, cmd, svc, []string{"Task"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if tasks := svc.Tasks(); len(tasks) != 1 || !tasks[0].Completed() {
		t.Errorf("expected one finished task, got %+v", tasks)
	}
}

func TestAddCommand_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		desc    string
		status  string
		wantErr string
	}{
		{"no title", nil, "d", "", "error: title required\n"},
		{"blank title", []string{"  "}, "d", "", "error: title required\n"},
		{"no description", []string{"Task"}, "", "", "error: description required\n"},
		{"bad status", []string{"Task"}, "d", "later", "error: invalid status: later\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			cmd := &commands.AddCmd{}
			cmd.SetDescription(tt.desc)
			cmd.SetStatus(tt.status)

			_, stderr, code := runCommand(t, cmd, svc, tt.args, false)

			expectCode(t, code, exitcode.UserError, stderr)
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
			if calls := svc.Calls(); len(calls) != 0 {
				t.Errorf("expected no backend calls, got %v", calls)
			}
		})
	}
}

func TestAddCommand_RemoteValidationIsUserError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateErr = service.Validationf(nil, "create task rejected: 400 Bad Request")

	cmd := &commands.AddCmd{}
	cmd.SetDescription("d")
	_, stderr, code := runCommand(t, cmd, svc, []string{"Task"}, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: create task rejected: 400 Bad Request\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_WithPhoto(t *testing.T) {
	svc := testutil.NewFakeService()
	photo := filepath.Join(t.TempDir(), "cat.png")
	if err := os.WriteFile(photo, []byte("meow"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := &commands.AddCmd{}
	cmd.SetDescription("a cat")
	cmd.SetPhoto(photo, "secret")
	_, stderr, code := runCommand(t, cmd, svc, []string{"Cat"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].PhotoURL != "/uploads/cat.png" || tasks[0].PhotoPassword != "secret" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	got, err := svc.FetchPhoto(context.Background(), "/uploads/cat.png", "secret")
	if err != nil || string(got) != "meow" {
		t.Errorf("expected stored photo, got %q, %v", got, err)
	}
}

func TestAddCommand_PhotoPasswordWithoutPhoto(t *testing.T) {
	cmd := &commands.AddCmd{}
	cmd.SetDescription("d")
	cmd.SetPhoto("", "secret")
	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), []string{"Task"}, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: --photo-password requires --photo\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_MissingPhotoFile(t *testing.T) {
	cmd := &commands.AddCmd{}
	cmd.SetDescription("d")
	cmd.SetPhoto(filepath.Join(t.TempDir(), "nope.png"), "")
	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), []string{"Task"}, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if !strings.HasPrefix(stderr, "error: cannot read photo: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_OverridesFields(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", "2%", service.StatusPending)

	cmd := &commands.EditCmd{}
	cmd.SetFields("", "whole", "done")
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	want := service.Task{ID: 1, Title: "Buy milk", Description: "whole", Status: service.StatusFinished}
	if got := svc.Tasks()[0]; got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestEditCommand_ByID(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "x", service.StatusPending)
	svc.AddTask("b", "y", service.StatusPending)

	cmd := &commands.EditCmd{}
	cmd.SetFields("renamed", "", "")
	_, stderr, code := runCommand(t, cmd, svc, []string{"#2"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if got := svc.Tasks()[1].Title; got != "renamed" {
		t.Errorf("expected renamed task, got %q", got)
	}
}

func TestEditCommand_RemoteNotFound(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "x", service.StatusPending)
	svc.ReplaceErr = service.NotFoundf("task 1 not found")

	cmd := &commands.EditCmd{}
	cmd.SetFields("b", "", "")
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: task 1 not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for done and reopen commands
func TestDoneCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Task 1", "x", service.StatusPending)
	svc.AddTask("Task 2", "y", service.StatusPending)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"2"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	tasks := svc.Tasks()
	if tasks[0].Completed() || !tasks[1].Completed() {
		t.Errorf("expected only task 2 finished, got %+v", tasks)
	}
	if tasks[1].Description != "y" {
		t.Errorf("description should be kept, got %q", tasks[1].Description)
	}
}

func TestReopenCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Task", "x", service.StatusFinished)

	_, stderr, code := runCommand(t, &commands.ReopenCmd{}, svc, []string{"#1"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if svc.Tasks()[0].Status != service.StatusPending {
		t.Errorf("expected pending, got %q", svc.Tasks()[0].Status)
	}
}

func TestDoneCommand_RefErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no ref", nil, "error: task reference required\n"},
		{"invalid ref", []string{"abc"}, "error: invalid task reference: abc\n"},
		{"out of range", []string{"5"}, "error: task number out of range: 5\n"},
		{"unknown id", []string{"#9"}, "error: task not found: #9\n"},
		{"extra arg", []string{"1", "2"}, "error: unexpected argument: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			svc.AddTask("Task", "x", service.StatusPending)

			_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, tt.args, false)

			expectCode(t, code, exitcode.UserError, stderr)
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
		})
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Task 1", "x", service.StatusPending)
	svc.AddTask("Task 2", "y", service.StatusPending)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].ID != 2 {
		t.Errorf("expected only task 2 left, got %+v", tasks)
	}
}

func TestRmCommand_TransportFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Task", "x", service.StatusPending)
	svc.DeleteErr = service.Transportf(nil, "delete task 1: dial tcp: connection refused")

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, false)

	expectCode(t, code, exitcode.BackendError, stderr)
	if stderr != "error: backend error: delete task 1: dial tcp: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Tasks()) != 1 {
		t.Error("task should be kept")
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmCmd{}, testutil.NewFakeService(), nil, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: task reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for photo command
func photoService(t *testing.T) *testutil.FakeService {
	t.Helper()
	svc := testutil.NewFakeService()
	task := svc.AddTask("Cat", "a cat", service.StatusPending)
	svc.AddPhoto(task.ID, "cat.png", []byte("meow"), "secret")
	svc.AddTask("Dog", "no photo", service.StatusPending)
	return svc
}

func TestPhotoCommand_ToStdout(t *testing.T) {
	cmd := &commands.PhotoCmd{}
	cmd.SetOutput("-")
	cmd.SetPassword("secret", false)

	stdout, stderr, code := runCommand(t, cmd, photoService(t), []string{"1"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "meow" {
		t.Errorf("expected photo bytes, got %q", stdout)
	}
}

func TestPhotoCommand_ToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.png")
	cmd := &commands.PhotoCmd{}
	cmd.SetOutput(dest)
	cmd.SetPassword("secret", false)

	stdout, stderr, code := runCommand(t, cmd, photoService(t), []string{"#1"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "saved "+dest+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	got, err := os.ReadFile(dest)
	if err != nil || string(got) != "meow" {
		t.Errorf("expected written photo, got %q, %v", got, err)
	}
}

func TestPhotoCommand_WrongPassword(t *testing.T) {
	cmd := &commands.PhotoCmd{}
	cmd.SetOutput("-")
	cmd.SetPassword("nope", false)

	stdout, stderr, code := runCommand(t, cmd, photoService(t), []string{"1"}, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: photo password required or incorrect\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestPhotoCommand_NoPhoto(t *testing.T) {
	cmd := &commands.PhotoCmd{}
	cmd.SetOutput("-")

	_, stderr, code := runCommand(t, cmd, photoService(t), []string{"2"}, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: task has no photo\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestPhotoCommand_Prompt(t *testing.T) {
	orig := commands.PasswordReader
	commands.PasswordReader = func(io.Writer) (string, error) { return "secret", nil }
	t.Cleanup(func() { commands.PasswordReader = orig })

	cmd := &commands.PhotoCmd{}
	cmd.SetOutput("-")
	cmd.SetPassword("", true)

	stdout, stderr, code := runCommand(t, cmd, photoService(t), []string{"1"}, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "meow" {
		t.Errorf("expected photo bytes, got %q", stdout)
	}
}

func TestPhotoCommand_PasswordAndPrompt(t *testing.T) {
	cmd := &commands.PhotoCmd{}
	cmd.SetPassword("secret", true)

	_, stderr, code := runCommand(t, cmd, photoService(t), []string{"1"}, false)

	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: cannot use both --password and --prompt\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for config command
func TestConfigCommand_InitAndShow(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	cfg, err := config.Load(filepath.Join(t.TempDir(), "etarefas"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.BaseURL = "http://tasks.example:9000"

	cmd := &commands.ConfigCmd{}
	if code := cmd.Run(context.Background(), cfg, nil, []string{"init"}, &outBuf, &errBuf); code != exitcode.Success {
		t.Fatalf("init failed with %d: %s", code, errBuf.String())
	}
	if outBuf.String() != "wrote "+cfg.FilePath()+"\n" {
		t.Errorf("unexpected init output %q", outBuf.String())
	}

	loaded, err := config.Load(cfg.Dir)
	if err != nil {
		t.Fatalf("Load after init: %v", err)
	}
	if loaded.BaseURL != "http://tasks.example:9000" || loaded.Timeout != 10*time.Second {
		t.Errorf("unexpected loaded config %+v", loaded)
	}

	errBuf.Reset()
	if code := cmd.Run(context.Background(), cfg, nil, []string{"init"}, &outBuf, &errBuf); code != exitcode.UserError {
		t.Errorf("expected second init to fail, got %d", code)
	}
	if !strings.HasPrefix(errBuf.String(), "error: config file already exists: ") {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}

	outBuf.Reset()
	if code := cmd.Run(context.Background(), loaded, nil, nil, &outBuf, &errBuf); code != exitcode.Success {
		t.Fatalf("show failed with %d", code)
	}
	for _, want := range []string{"config file: " + cfg.FilePath() + "\n", "base-url:    http://tasks.example:9000\n", "api-token:   (not set)\n"} {
		if !strings.Contains(outBuf.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, outBuf.String())
		}
	}
}
