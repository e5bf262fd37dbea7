// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/charmbracelet/log"

	"github.com/scripthook/scripthook/internal/console"
	"github.com/scripthook/scripthook/internal/library"
	"github.com/scripthook/scripthook/pkg/hook"
)

// luaLineRE extracts the line number from go-lua messages of the form
// "chunk:12: message", possibly behind a "runtime error: " prefix.
var luaLineRE = regexp.MustCompile(`^.*?:(\d+): (.*)$`)

type (
	// LuaCompiler loads Lua chunks, one interpreter state per module. A chunk
	// declares hooks through the scripthook table and exports the function
	// fields of the table it returns:
	//
	//	local M = {}
	//	function M.tick() print("frame") end
	//	scripthook.hook("flight", "update", M.tick, "tick")
	//	return M
	LuaCompiler struct {
		logger *log.Logger
	}

	luaModule struct {
		*module
		state  *lua.State
		stdout *console.Writer
		linked []library.Library
		nextFn int
	}
)

// NewLuaCompiler creates a Lua backend.
func NewLuaCompiler(logger *log.Logger) *LuaCompiler {
	return &LuaCompiler{logger: logger}
}

// Name returns the backend name.
func (c *LuaCompiler) Name() string { return string(BackendLua) }

// Extensions returns the extensions this backend compiles.
func (c *LuaCompiler) Extensions() []string { return []string{"lua"} }

// Compile loads and runs the chunk in a fresh state.
func (c *LuaCompiler) Compile(_ context.Context, src Source, linked []library.Library) Result {
	l := lua.NewState()
	lua.OpenLibraries(l)

	m := &luaModule{
		module: newModule(src.URL, string(BackendLua)),
		state:  l,
		stdout: console.NewWriter(c.logger, src.URL),
		linked: linked,
	}
	m.installGlobals()

	if err := lua.LoadBuffer(l, string(src.Data), "@"+src.URL, "t"); err != nil {
		return Failed(luaDiagnostic(src.Path, err))
	}
	err := l.ProtectedCall(0, 1, 0)
	m.stdout.Flush()
	if err != nil {
		return Failed(luaDiagnostic(src.Path, err))
	}

	if l.TypeOf(-1) == lua.TypeTable {
		m.collectExports(l.AbsIndex(-1))
	}
	l.SetTop(0)

	return Loaded(m)
}

// installGlobals redirects print, exposes linked symbols as globals that do
// not shadow the standard library, and installs the scripthook table.
func (m *luaModule) installGlobals() {
	l := m.state

	l.Register("print", m.print)

	for _, name := range library.Visible(m.linked) {
		l.Global(name)
		taken := !l.IsNil(-1)
		l.Pop(1)
		if taken {
			continue
		}
		l.PushGoFunction(m.linkedFunc(name))
		l.SetGlobal(name)
	}

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "hook", Function: m.luaHook},
		{Name: "requires", Function: m.luaRequires},
		{Name: "call", Function: m.luaCall},
	}, 0)
	l.PushString(APIVersion)
	l.SetField(-2, "version")
	l.SetGlobal("scripthook")
}

func (m *luaModule) print(l *lua.State) int {
	n := l.Top()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		s, _ := lua.ToStringMeta(l, i)
		parts = append(parts, s)
		l.SetTop(n)
	}
	_, _ = m.stdout.Write([]byte(strings.Join(parts, "\t") + "\n"))
	return 0
}

// luaHook implements scripthook.hook(scene, event, fn [, name]).
func (m *luaModule) luaHook(l *lua.State) int {
	scene := lua.CheckString(l, 1)
	event := lua.CheckString(l, 2)
	lua.CheckType(l, 3, lua.TypeFunction)
	name := lua.OptString(l, 4, "")

	desc, err := hook.ParseDescriptor(scene, event)
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}

	key := m.store(3)
	if name == "" {
		name = "hook" + strconv.Itoa(len(m.hooks)+1)
	}
	m.bind(name, desc, func() error { return m.invoke(key) })
	return 0
}

// luaRequires implements scripthook.requires(constraint).
func (m *luaModule) luaRequires(l *lua.State) int {
	if err := CheckAPIVersion(lua.CheckString(l, 1)); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	return 0
}

// luaCall implements scripthook.call(name, ...), reaching every linked
// symbol, including those whose global name is taken.
func (m *luaModule) luaCall(l *lua.State) int {
	name := lua.CheckString(l, 1)
	fn, _, err := library.Resolve(m.linked, name)
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
		return 0
	}
	if err := fn(context.Background(), stringArgs(l, 2)...); err != nil {
		lua.Errorf(l, "%s: %s", name, err.Error())
	}
	return 0
}

func (m *luaModule) linkedFunc(name string) lua.Function {
	return func(l *lua.State) int {
		fn, _, err := library.Resolve(m.linked, name)
		if err != nil {
			lua.Errorf(l, "%s", err.Error())
			return 0
		}
		if err := fn(context.Background(), stringArgs(l, 1)...); err != nil {
			lua.Errorf(l, "%s: %s", name, err.Error())
		}
		return 0
	}
}

// store saves the value at index in the registry and returns its key.
func (m *luaModule) store(index int) string {
	m.nextFn++
	key := fmt.Sprintf("scripthook:%s:%d", m.name, m.nextFn)
	m.state.PushValue(index)
	m.state.SetField(lua.RegistryIndex, key)
	return key
}

// invoke calls the stored function key with args.
func (m *luaModule) invoke(key string, args ...string) error {
	l := m.state
	top := l.Top()
	defer l.SetTop(top)

	l.Field(lua.RegistryIndex, key)
	for _, a := range args {
		l.PushString(a)
	}
	err := l.ProtectedCall(len(args), 0, 0)
	m.stdout.Flush()
	if err != nil {
		return fmt.Errorf("%s: %w", m.name, err)
	}
	return nil
}

// collectExports exports every function-valued string field of the table
// at index, in name order.
func (m *luaModule) collectExports(index int) {
	l := m.state
	found := make(map[string]string)
	l.PushNil()
	for l.Next(index) {
		if l.TypeOf(-2) == lua.TypeString && l.TypeOf(-1) == lua.TypeFunction {
			name, _ := l.ToString(-2)
			found[name] = m.store(-1)
		}
		l.Pop(1)
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		key := found[name]
		m.export(name, func(_ context.Context, args ...string) error {
			return m.invoke(key, args...)
		})
	}
}

func stringArgs(l *lua.State, from int) []string {
	n := l.Top()
	var out []string
	for i := from; i <= n; i++ {
		s, _ := lua.ToStringMeta(l, i)
		out = append(out, s)
		l.SetTop(n)
	}
	return out
}

func luaDiagnostic(path string, err error) Diagnostic {
	d := Diagnostic{Path: path, Severity: SeverityError, Message: err.Error()}
	if match := luaLineRE.FindStringSubmatch(d.Message); match != nil {
		if line, convErr := strconv.Atoi(match[1]); convErr == nil {
			d.Line = line
			d.Message = match[2]
		}
	}
	return d
}
