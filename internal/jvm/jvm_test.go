// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"dsw-cli/internal/layout"
)

func TestParseMajor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		banner string
		want   int
		wantOk bool
	}{
		{
			"modern openjdk",
			`openjdk version "17.0.8" 2023-08-22`,
			17, true,
		},
		{
			"modern oracle",
			`java version "11.0.21" 2023-10-17 LTS`,
			11, true,
		},
		{
			"legacy numbering is normalized",
			`java version "1.8.0_392"`,
			8, true,
		},
		{
			"bare major",
			`openjdk version "21" 2023-09-19`,
			21, true,
		},
		{
			"multi line banner",
			"openjdk version \"14.0.2\" 2020-07-14\nOpenJDK Runtime Environment\n",
			14, true,
		},
		{
			"no quotes",
			"command not found",
			0, false,
		},
		{
			"unterminated quote",
			`openjdk version "17.0.8`,
			0, false,
		},
		{
			"non numeric version",
			`openjdk version "beta"`,
			0, false,
		},
		{
			"empty banner",
			"",
			0, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseMajor(tt.banner)
			if ok != tt.wantOk {
				t.Fatalf("ParseMajor() ok = %v, want %v", ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("ParseMajor() = %d, want %d", got, tt.want)
			}
		})
	}
}

type fakeExecInfo struct{}

func (fakeExecInfo) Name() string       { return "java" }
func (fakeExecInfo) Size() int64        { return 1 }
func (fakeExecInfo) Mode() os.FileMode  { return 0o755 }
func (fakeExecInfo) ModTime() time.Time { return time.Time{} }
func (fakeExecInfo) IsDir() bool        { return false }
func (fakeExecInfo) Sys() any           { return nil }

func statOnly(paths ...string) StatFunc {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(name string) (os.FileInfo, error) {
		if set[name] {
			return fakeExecInfo{}, nil
		}
		return nil, os.ErrNotExist
	}
}

func envOf(pairs map[string]string) GetenvFunc {
	return func(key string) string { return pairs[key] }
}

// bannerExec replaces the java invocation with a shell that prints the given
// banner on stderr, mirroring where the JVM writes it.
func bannerExec(t *testing.T, banner string) ExecCommandFunc {
	t.Helper()
	return func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		if len(arg) != 1 || arg[0] != "-version" {
			t.Errorf("unexpected argv %v", arg)
		}
		return exec.CommandContext(ctx, "sh", "-c",
			fmt.Sprintf("echo '%s' >&2", banner))
	}
}

func TestValidator_Resolve_SearchOrder(t *testing.T) {
	t.Parallel()

	lay := layout.Layout{InstallRoot: "/home/u/.docsmith"}
	managed := lay.RuntimeJavaExec()
	banner := `openjdk version "17.0.8" 2023-08-22`

	t.Run("managed runtime wins and shadows JAVA_HOME", func(t *testing.T) {
		t.Parallel()

		var logBuf bytes.Buffer
		v := New(
			WithStat(statOnly(managed, "/opt/jdk/bin/java")),
			WithGetenv(envOf(map[string]string{"JAVA_HOME": "/opt/jdk"})),
			WithExecCommand(bannerExec(t, banner)),
			WithLogger(log.New(&logBuf)),
		)

		desc, err := v.Resolve(context.Background(), lay)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if desc.Exec != managed {
			t.Errorf("Exec = %q, want managed runtime %q", desc.Exec, managed)
		}
		if desc.Home != lay.RuntimeDir() {
			t.Errorf("Home = %q, want %q", desc.Home, lay.RuntimeDir())
		}
		if desc.Major != 17 {
			t.Errorf("Major = %d, want 17", desc.Major)
		}
		if !strings.Contains(logBuf.String(), "JAVA_HOME") {
			t.Error("expected a shadowing warning mentioning JAVA_HOME")
		}
	})

	t.Run("JAVA_HOME used when no managed runtime", func(t *testing.T) {
		t.Parallel()

		v := New(
			WithStat(statOnly("/opt/jdk/bin/java")),
			WithGetenv(envOf(map[string]string{"JAVA_HOME": "/opt/jdk"})),
			WithExecCommand(bannerExec(t, banner)),
		)

		desc, err := v.Resolve(context.Background(), lay)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if desc.Home != "/opt/jdk" || desc.Exec != "/opt/jdk/bin/java" {
			t.Errorf("descriptor = %+v", desc)
		}
	})

	t.Run("broken JAVA_HOME is fatal, no PATH fallthrough", func(t *testing.T) {
		t.Parallel()

		v := New(
			WithStat(statOnly()),
			WithGetenv(envOf(map[string]string{"JAVA_HOME": "/opt/missing"})),
			WithLookPath(func(string) (string, error) { return "/usr/bin/java", nil }),
		)

		_, err := v.Resolve(context.Background(), lay)
		if !errors.Is(err, ErrRuntimeNotFound) {
			t.Fatalf("Resolve() error = %v, want ErrRuntimeNotFound", err)
		}
	})

	t.Run("PATH fallback", func(t *testing.T) {
		t.Parallel()

		v := New(
			WithStat(statOnly()),
			WithGetenv(envOf(nil)),
			WithLookPath(func(file string) (string, error) {
				if file != "java" {
					return "", exec.ErrNotFound
				}
				return "/usr/bin/java", nil
			}),
			WithExecCommand(bannerExec(t, banner)),
		)

		desc, err := v.Resolve(context.Background(), lay)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if desc.Exec != "/usr/bin/java" || desc.Home != "" {
			t.Errorf("descriptor = %+v", desc)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Parallel()

		v := New(
			WithStat(statOnly()),
			WithGetenv(envOf(nil)),
			WithLookPath(func(string) (string, error) { return "", exec.ErrNotFound }),
		)

		_, err := v.Resolve(context.Background(), lay)
		if !errors.Is(err, ErrRuntimeNotFound) {
			t.Fatalf("Resolve() error = %v, want ErrRuntimeNotFound", err)
		}
	})
}

func TestValidator_Resolve_VersionRange(t *testing.T) {
	t.Parallel()

	lay := layout.Layout{InstallRoot: "/home/u/.docsmith"}

	tests := []struct {
		name    string
		banner  string
		want    int
		wantErr bool
	}{
		{"lower bound accepted", `openjdk version "11.0.21"`, 11, false},
		{"middle accepted", `openjdk version "14.0.2"`, 14, false},
		{"upper bound accepted", `openjdk version "17.0.8"`, 17, false},
		{"java 8 rejected", `java version "1.8.0_392"`, 0, true},
		{"java 10 rejected", `openjdk version "10.0.2"`, 0, true},
		{"java 18 rejected", `openjdk version "18.0.1"`, 0, true},
		{"unparseable rejected", `no version here`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := New(
				WithStat(statOnly(lay.RuntimeJavaExec())),
				WithGetenv(envOf(nil)),
				WithExecCommand(bannerExec(t, tt.banner)),
			)

			desc, err := v.Resolve(context.Background(), lay)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedRuntime) {
					t.Fatalf("Resolve() error = %v, want ErrUnsupportedRuntime", err)
				}
				var uve *UnsupportedRuntimeVersionError
				if !errors.As(err, &uve) {
					t.Fatalf("error = %T, want *UnsupportedRuntimeVersionError", err)
				}
				if uve.Detected == "" {
					t.Error("Detected version string must be carried in the error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if desc.Major != tt.want {
				t.Errorf("Major = %d, want %d", desc.Major, tt.want)
			}
		})
	}
}
