// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ContentNotFoundId
	CompilationFailedId
	UnknownBackendId
	InvalidSceneId
	HookFaultId
	MetricsUnavailableId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalogued failure with Markdown guidance for the terminal.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The scripthook configuration file could not be read or did not match the schema.

## Configuration file locations:
- Linux: ~/.config/scripthook/config.cue
- macOS: ~/Library/Application Support/scripthook/config.cue
- Windows: %APPDATA%\scripthook\config.cue

## Things you can try:
- Write a default configuration:
~~~
$ scripthook config init
~~~
- Print the effective configuration:
~~~
$ scripthook config show
~~~

## Example configuration:
~~~cue
content: root: "./scripts"
dispatch: fault_policy: "isolate"
log: level: "info"
~~~`,
		docLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	contentNotFoundIssue = &Issue{
		id: ContentNotFoundId,
		mdMsg: `
# Content directory not found!

scripthook crawls a directory tree for scripts, and the one given does not exist or is not a directory.

## Things you can try:
- Pass the directory explicitly:
~~~
$ scripthook run ./scripts
~~~
- Or set it once in your config:
~~~cue
content: root: "./scripts"
~~~`,
	}

	compilationFailedIssue = &Issue{
		id: CompilationFailedId,
		mdMsg: `
# One or more scripts failed to compile!

Files that fail to compile are skipped and contribute no hooks. Every other file still loads.

## Things you can try:
- List the diagnostics without running anything:
~~~
$ scripthook check ./scripts
~~~
- Make sure each hook directive names a known scene and event:
~~~sh
# scripthook:hook flight update
tick() { :; }
~~~`,
	}

	unknownBackendIssue = &Issue{
		id: UnknownBackendId,
		mdMsg: `
# Unknown compiler backend!

## Available backends:
- **shell**: ` + "`.sh`" + ` files run by the embedded POSIX shell interpreter
- **lua**: ` + "`.lua`" + ` files
- **go**: ` + "`.go`" + ` files interpreted at load time

## Example:
~~~cue
compilers: enabled: ["shell", "lua"]
~~~`,
		docLinks: []HttpLink{"https://www.lua.org/manual/5.2/", "https://pkg.go.dev/mvdan.cc/sh/v3/interp"},
	}

	invalidSceneIssue = &Issue{
		id: InvalidSceneId,
		mdMsg: `
# Invalid scene or event!

Hooks attach to a scene category and a lifecycle event by name.

## Things you can try:
- List the registered hooks and the names in use:
~~~
$ scripthook hooks ./scripts
~~~
- Use kebab-case names such as ` + "`main-menu`" + ` or ` + "`fixed-update`",
	}

	hookFaultIssue = &Issue{
		id: HookFaultId,
		mdMsg: `
# A hook failed while running!

With the default ` + "`isolate`" + ` policy every remaining hook still runs and the failures are reported together.

## Things you can try:
- Rerun with debug logging to see each invocation:
~~~
$ scripthook run --verbose ./scripts
~~~
- Stop at the first failure instead:
~~~cue
dispatch: fault_policy: "fail-fast"
~~~`,
	}

	metricsUnavailableIssue = &Issue{
		id: MetricsUnavailableId,
		mdMsg: `
# Metrics endpoint could not start!

## Things you can try:
- Choose a free address:
~~~
$ scripthook run --metrics-addr 127.0.0.1:9464 ./scripts
~~~
- Or disable the endpoint by leaving ` + "`metrics.addr`" + ` empty`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		contentNotFoundIssue.Id():    contentNotFoundIssue,
		compilationFailedIssue.Id():  compilationFailedIssue,
		unknownBackendIssue.Id():     unknownBackendIssue,
		invalidSceneIssue.Id():       invalidSceneIssue,
		hookFaultIssue.Id():          hookFaultIssue,
		metricsUnavailableIssue.Id(): metricsUnavailableIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guidance with the given glamour style ("dark",
// "light", "notty", or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			md += "- " + string(link) + "\n"
		}
	}
	return render(md, stylePath)
}

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	v := maps.Values(issues)
	slices.SortFunc(v, func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
	return v
}

// Get returns nil for an unknown id.
func Get(id Id) *Issue {
	return issues[id]
}
