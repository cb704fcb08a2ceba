// SPDX-License-Identifier: MPL-2.0

package invocation

import (
	"context"
	"errors"
	"os/exec"
	"os/user"
	"slices"
	"strings"
	"testing"
	"time"

	"dsw-cli/internal/config"
	"dsw-cli/internal/container"
	"dsw-cli/internal/environ"
	"dsw-cli/internal/issue"
	"dsw-cli/internal/jvm"
	"dsw-cli/internal/layout"
)

func fixedUser() (*user.User, error) {
	return &user.User{Uid: "1000", Gid: "1000"}, nil
}

func fixedNow() time.Time {
	return time.Unix(1700000000, 0)
}

func testSettings() config.Settings {
	return config.Settings{
		Version:       "2.3.1",
		ConfigFile:    "docsmithConfig.groovy",
		Headless:      true,
		ProjectBranch: "main",
	}
}

func TestBuild_LocalLauncherArgv(t *testing.T) {
	t.Parallel()

	var got []string
	fake := func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		got = append([]string{name}, arg...)
		return exec.CommandContext(ctx, "true")
	}

	lay := layout.Layout{InstallRoot: "/home/u/.docsmith"}
	b := NewBuilder(WithExecCommand(fake))

	plan, err := b.Build(context.Background(), Inputs{
		Env:      environ.EnvLocal,
		Version:  "2.3.1",
		Tasks:    []string{"generateSite", "generatePDF"},
		Settings: testSettings(),
		Layout:   lay,
		Runtime:  jvm.RuntimeDescriptor{Exec: "/usr/bin/java", Major: 17},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.Env != environ.EnvLocal {
		t.Errorf("plan.Env = %v", plan.Env)
	}

	want := []string{
		lay.Launcher("2.3.1"),
		".", "generateSite", "generatePDF",
		"-PmainConfigFile=docsmithConfig.groovy",
		"--warning-mode=none",
		"--no-daemon",
	}
	if !slices.Equal(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestBuild_SDKUsesCandidateLauncher(t *testing.T) {
	t.Parallel()

	var got []string
	fake := func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		got = append([]string{name}, arg...)
		return exec.CommandContext(ctx, "true")
	}

	lay := layout.Layout{InstallRoot: "/home/u/.docsmith", SDKManDir: "/home/u/.sdkman"}
	b := NewBuilder(WithExecCommand(fake))

	_, err := b.Build(context.Background(), Inputs{
		Env:      environ.EnvSDK,
		Version:  "2.3.1",
		Tasks:    []string{"generateHTML"},
		Settings: testSettings(),
		Layout:   lay,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got[0] != lay.SDKLauncher("2.3.1") {
		t.Errorf("launcher = %q, want %q", got[0], lay.SDKLauncher("2.3.1"))
	}
}

func TestBuild_InteractiveSharesBuildCache(t *testing.T) {
	t.Parallel()

	var got []string
	fake := func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		got = append([]string{name}, arg...)
		return exec.CommandContext(ctx, "true")
	}

	lay := layout.Layout{InstallRoot: "/home/u/.docsmith"}
	settings := testSettings()
	settings.Headless = false

	b := NewBuilder(WithExecCommand(fake))
	_, err := b.Build(context.Background(), Inputs{
		Env:      environ.EnvLocal,
		Version:  "2.3.1",
		Tasks:    []string{"generateSite"},
		Settings: settings,
		Layout:   lay,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := "-Dgradle.user.home=" + lay.GradleHomeDir()
	if !slices.Contains(got, want) {
		t.Errorf("argv %v missing %q", got, want)
	}
}

func TestBuild_HeadlessOmitsBuildCache(t *testing.T) {
	t.Parallel()

	var got []string
	fake := func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		got = append([]string{name}, arg...)
		return exec.CommandContext(ctx, "true")
	}

	b := NewBuilder(WithExecCommand(fake))
	_, err := b.Build(context.Background(), Inputs{
		Env:      environ.EnvLocal,
		Version:  "2.3.1",
		Tasks:    []string{"generateSite"},
		Settings: testSettings(),
		Layout:   layout.Layout{InstallRoot: "/home/u/.docsmith"},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, arg := range got {
		if strings.HasPrefix(arg, "-Dgradle.user.home=") {
			t.Errorf("headless run must not share the build cache, argv = %v", got)
		}
	}
}

func TestBuild_LocalExportsRuntimeHome(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	plan, err := b.Build(context.Background(), Inputs{
		Env:      environ.EnvLocal,
		Version:  "2.3.1",
		Tasks:    []string{"generateSite"},
		Settings: testSettings(),
		Layout:   layout.Layout{InstallRoot: "/home/u/.docsmith"},
		Runtime:  jvm.RuntimeDescriptor{Home: "/opt/jdk", Exec: "/opt/jdk/bin/java", Major: 17},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !slices.Contains(plan.Cmd.Env, "JAVA_HOME=/opt/jdk") {
		t.Error("plan must export JAVA_HOME for the launcher")
	}
}

func TestBuild_ContainerInvocation(t *testing.T) {
	t.Parallel()

	var got []string
	engine := &container.DockerEngine{
		BaseCLIEngine: container.NewBaseCLIEngine("/usr/bin/docker",
			container.WithExecCommand(func(ctx context.Context, name string, arg ...string) *exec.Cmd {
				got = append([]string{name}, arg...)
				return exec.CommandContext(ctx, "true")
			})),
	}

	b := NewBuilder(
		WithGetwd(func() (string, error) { return "/work/docs", nil }),
		WithCurrentUser(fixedUser),
		WithNow(fixedNow),
	)

	plan, err := b.Build(context.Background(), Inputs{
		Env:      environ.EnvContainer,
		Version:  "2.3.1",
		Tasks:    []string{"generateSite"},
		Settings: testSettings(),
		Layout:   layout.Layout{InstallRoot: "/home/u/.docsmith"},
		Engine:   engine,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.Cmd == nil {
		t.Fatal("plan.Cmd = nil")
	}

	argv := strings.Join(got, " ")
	for _, fragment := range []string{
		"/usr/bin/docker run --rm",
		"--name docsmith-1700000000",
		"--platform linux/amd64",
		"-u 1000:1000",
		"-w /project",
		"-i",
		"-e DOCSMITH_HEADLESS=true",
		"-e DOCSMITH_VERSION=2.3.1",
		"-v /work/docs:/project",
		"-p 8042:8042",
		"--entrypoint /opt/docsmith/bin/docsmith",
		"docsmith/docsmith:v2.3.1 . generateSite -PmainConfigFile=docsmithConfig.groovy --warning-mode=none --no-daemon",
	} {
		if !strings.Contains(argv, fragment) {
			t.Errorf("argv %q missing fragment %q", argv, fragment)
		}
	}
	if strings.Contains(argv, " -t ") {
		t.Errorf("headless container run must not allocate a TTY, argv = %q", argv)
	}
}

func TestBuild_ContainerWithoutEngineIsInternalError(t *testing.T) {
	t.Parallel()

	b := NewBuilder(
		WithGetwd(func() (string, error) { return "/work/docs", nil }),
		WithCurrentUser(fixedUser),
		WithNow(fixedNow),
	)

	_, err := b.Build(context.Background(), Inputs{
		Env:      environ.EnvContainer,
		Version:  "2.3.1",
		Settings: testSettings(),
	})
	if !errors.Is(err, issue.ErrInternal) {
		t.Errorf("error = %v, want it flagged as an internal invariant violation", err)
	}
}

func TestBuild_UnknownEnvironmentIsInternalError(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	_, err := b.Build(context.Background(), Inputs{
		Env:      environ.Environment("cloud"),
		Version:  "2.3.1",
		Settings: testSettings(),
	})
	if !errors.Is(err, issue.ErrInternal) {
		t.Errorf("error = %v, want it flagged as an internal invariant violation", err)
	}
}

func TestExecute_PropagatesExitCode(t *testing.T) {
	t.Parallel()

	plan := &Plan{
		Env: environ.EnvLocal,
		Cmd: exec.Command("sh", "-c", "exit 3"),
	}
	code, err := Execute(plan)
	if err == nil {
		t.Fatal("Execute() error = nil, want exit error")
	}
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}
}

func TestExecute_Success(t *testing.T) {
	t.Parallel()

	plan := &Plan{Env: environ.EnvLocal, Cmd: exec.Command("true")}
	code, err := Execute(plan)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
}
