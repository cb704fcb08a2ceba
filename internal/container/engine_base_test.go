// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

func TestBaseCLIEngine_RunArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/docker", WithName("docker"))

	opts := RunOptions{
		Image:       "docsmith/docsmith:v2.3.1",
		Entrypoint:  "/opt/docsmith/bin/docsmith",
		Command:     []string{".", "generateHTML"},
		WorkDir:     "/project",
		Platform:    "linux/amd64",
		User:        "1000:1000",
		Name:        "docsmith-1700000000",
		Env:         map[string]string{"DOCSMITH_HEADLESS": "true", "DOCSMITH_PROJECT_BRANCH": "main"},
		Volumes:     []VolumeMount{{HostPath: "/work/docs", ContainerPath: "/project"}},
		Ports:       []PortMapping{{HostPort: 8042, ContainerPort: 8042}},
		Remove:      true,
		Interactive: true,
	}

	got := e.RunArgs(opts)

	want := []string{
		"run",
		"--rm",
		"--name", "docsmith-1700000000",
		"--platform", "linux/amd64",
		"-u", "1000:1000",
		"-w", "/project",
		"-i",
		"-e", "DOCSMITH_HEADLESS=true",
		"-e", "DOCSMITH_PROJECT_BRANCH=main",
		"-v", "/work/docs:/project",
		"-p", "8042:8042",
		"--entrypoint", "/opt/docsmith/bin/docsmith",
		"docsmith/docsmith:v2.3.1",
		".", "generateHTML",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("RunArgs() =\n  %v\nwant\n  %v", got, want)
	}
}

func TestBaseCLIEngine_RunArgs_MinimalOptions(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/docker")
	got := e.RunArgs(RunOptions{Image: "docsmith/docsmith:v2.3.1"})

	want := []string{"run", "docsmith/docsmith:v2.3.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RunArgs() = %v, want %v", got, want)
	}
}

func TestBaseCLIEngine_CreateRunCommand(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotArgs []string
	fake := func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		gotName = name
		gotArgs = arg
		return exec.CommandContext(ctx, "true")
	}

	e := NewBaseCLIEngine("/usr/bin/podman", WithExecCommand(fake))
	e.CreateRunCommand(context.Background(), RunOptions{Image: "img", Remove: true})

	if gotName != "/usr/bin/podman" {
		t.Errorf("command binary = %q, want %q", gotName, "/usr/bin/podman")
	}
	if len(gotArgs) == 0 || gotArgs[0] != "run" {
		t.Errorf("command args = %v, want leading 'run'", gotArgs)
	}
}

func TestVolumeMount_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		mount VolumeMount
		want  string
	}{
		{"plain", VolumeMount{HostPath: "/a", ContainerPath: "/b"}, "/a:/b"},
		{"read-only", VolumeMount{HostPath: "/a", ContainerPath: "/b", ReadOnly: true}, "/a:/b:ro"},
		{"selinux shared", VolumeMount{HostPath: "/a", ContainerPath: "/b", SELinux: SELinuxLabelShared}, "/a:/b:z"},
		{
			"read-only with selinux",
			VolumeMount{HostPath: "/a", ContainerPath: "/b", ReadOnly: true, SELinux: SELinuxLabelPrivate},
			"/a:/b:ro,Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.mount.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    RunOptions
		wantErr error
	}{
		{"valid", RunOptions{Image: "img"}, nil},
		{"empty image", RunOptions{}, nil /* any error */},
		{
			"zero port",
			RunOptions{Image: "img", Ports: []PortMapping{{HostPort: 0, ContainerPort: 8042}}},
			ErrInvalidNetworkPort,
		},
		{
			"empty mount path",
			RunOptions{Image: "img", Volumes: []VolumeMount{{HostPath: "", ContainerPath: "/p"}}},
			ErrInvalidVolumeMount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			switch tt.name {
			case "valid":
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
			case "empty image":
				if err == nil || !strings.Contains(err.Error(), "image reference") {
					t.Errorf("Validate() = %v, want image reference error", err)
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() = %v, want errors.Is(%v)", err, tt.wantErr)
				}
			}
		})
	}
}
