// SPDX-License-Identifier: MIT
package action

// Entry binds an action name to its constructor. The table is assembled
// by hand so the available action set is statically enumerable and needs
// no runtime discovery.
type Entry struct {
	Name string
	New  func(Deps) Action
}

// Table returns the registered actions in display order. Shell is absent:
// it is constructed directly by the MCP server, never looked up by name.
func Table() []Entry {
	return []Entry{
		{Name: "sync", New: func(d Deps) Action { return NewSync(d) }},
		{Name: "clone", New: func(d Deps) Action { return NewClone(d) }},
		{Name: "pull", New: func(d Deps) Action { return NewPull(d) }},
		{Name: "status", New: func(d Deps) Action { return NewStatus() }},
		{Name: "desc-sync", New: func(d Deps) Action { return NewDescSync(d) }},
		{Name: "sandbox-enable", New: func(d Deps) Action { return NewSandboxEnable() }},
		{Name: "settings-clean", New: func(d Deps) Action { return NewSettingsClean(d) }},
		{Name: "exec", New: func(d Deps) Action { return NewExec(d) }},
	}
}

// Lookup finds a registry entry by action name.
func Lookup(name string) (Entry, bool) {
	for _, entry := range Table() {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// Names returns the registered action names in table order.
func Names() []string {
	table := Table()
	names := make([]string, 0, len(table))
	for _, entry := range table {
		names = append(names, entry.Name)
	}
	return names
}
