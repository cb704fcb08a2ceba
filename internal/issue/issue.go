// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RuntimeNotFoundId Id = iota + 1
	UnsupportedRuntimeVersionId
	DownloadToolNotFoundId
	ExtractorNotFoundId
	GitNotFoundId
	ContainerEngineNotFoundId
	EnvironmentUnavailableId
	UnsupportedHostId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to look up the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.extLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	runtimeNotFoundIssue = &Issue{
		id: RuntimeNotFoundId,
		mdMsg: `
# No Java runtime found!

docsmith needs a Java runtime (major version 11-17) to run outside a container.

## Search locations (in order of precedence):
1. The dsw-managed runtime under the install root (` + "`~/.docsmith/jdk`" + `)
2. The JAVA_HOME environment variable
3. The 'java' executable on your PATH

## Things you can try:
- Let dsw install a runtime for you:
~~~
$ dsw install runtime
~~~

- Or install a JDK yourself and export JAVA_HOME
- Or run your tasks in the container environment instead:
~~~
$ dsw container <task>
~~~`,
		extLinks: []HttpLink{"https://adoptium.net"},
	}

	unsupportedRuntimeVersionIssue = &Issue{
		id: UnsupportedRuntimeVersionId,
		mdMsg: `
# Unsupported Java runtime version!

docsmith supports Java major versions 11 through 17. The runtime that was
found reports a version outside that range.

## Things you can try:
- Install a supported runtime with dsw:
~~~
$ dsw install runtime
~~~

- Or point JAVA_HOME at a JDK in the 11-17 range
- Or run your tasks in the container environment, which ships its own runtime:
~~~
$ dsw container <task>
~~~`,
	}

	downloadToolNotFoundIssue = &Issue{
		id: DownloadToolNotFoundId,
		mdMsg: `
# No download tool found!

dsw needs one of the following tools to download releases:

1. **curl**
2. **wget**
3. **fetch**

## Things you can try:
- Linux: ` + "`sudo apt install curl`" + ` or ` + "`sudo dnf install curl`" + `
- macOS: curl ships with the system; ` + "`brew install wget`" + ` also works`,
	}

	extractorNotFoundIssue = &Issue{
		id: ExtractorNotFoundId,
		mdMsg: `
# No archive extraction tool found!

Installing a pinned toolchain release requires **unzip**.

## Things you can try:
- Linux: ` + "`sudo apt install unzip`" + ` or ` + "`sudo dnf install unzip`" + `
- macOS: unzip ships with the system`,
	}

	gitNotFoundIssue = &Issue{
		id: GitNotFoundId,
		mdMsg: `
# Version control tool not found!

Installing a floating toolchain version ('latest' or 'latestdev') requires
**git** to clone and update the development repository.

## Things you can try:
- Install git: https://git-scm.com/downloads
- Or install a pinned release instead:
~~~
$ DOCSMITH_VERSION=2.3.1 dsw install toolchain
~~~`,
		extLinks: []HttpLink{"https://git-scm.com/downloads"},
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

You requested the 'container' environment but no container engine is available.

## Supported container engines:
- **Docker**
- **Podman**

## Things you can try:
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `
- Or use the local environment:
~~~
$ dsw local <task>
~~~`,
	}

	environmentUnavailableIssue = &Issue{
		id: EnvironmentUnavailableId,
		mdMsg: `
# Environment not available on this host!

The environment you named explicitly is missing its prerequisite.

## Prerequisites per environment:
- **local**: always available
- **sdk**: an SDKMAN installation (` + "`~/.sdkman`" + ` or SDKMAN_DIR)
- **container**: a Docker or Podman engine

## Things you can try:
- Omit the environment token and let dsw pick one
- Install the missing prerequisite and retry`,
		extLinks: []HttpLink{"https://sdkman.io"},
	}

	unsupportedHostIssue = &Issue{
		id: UnsupportedHostId,
		mdMsg: `
# Host not supported for runtime install!

dsw can install a Java runtime on Linux and macOS (amd64/arm64). Native
Windows and the MSYS/Cygwin compatibility layers are not supported.

## Things you can try:
- Install a JDK manually and export JAVA_HOME
- Or run your tasks in the container environment:
~~~
$ dsw container <task>
~~~`,
	}

	issues = map[Id]*Issue{
		runtimeNotFoundIssue.Id():           runtimeNotFoundIssue,
		unsupportedRuntimeVersionIssue.Id(): unsupportedRuntimeVersionIssue,
		downloadToolNotFoundIssue.Id():      downloadToolNotFoundIssue,
		extractorNotFoundIssue.Id():         extractorNotFoundIssue,
		gitNotFoundIssue.Id():               gitNotFoundIssue,
		containerEngineNotFoundIssue.Id():   containerEngineNotFoundIssue,
		environmentUnavailableIssue.Id():    environmentUnavailableIssue,
		unsupportedHostIssue.Id():           unsupportedHostIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
