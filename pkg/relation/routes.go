package relation

// Operation names one of the five entry points of a relation.
type Operation string

const (
	OpBrowse       Operation = "browse"
	OpEdit         Operation = "edit"
	OpListAttached Operation = "list_attached"
	OpAttach       Operation = "attach"
	OpDetach       Operation = "detach"
)

// Route is one entry in a relation's dispatch table. Type is set for the
// per-related-type routes (browse, edit) and empty otherwise.
type Route struct {
	Name      string
	Operation Operation
	Type      string
}

// BrowseRoute names the candidate listing for typeName.
func (d Descriptor) BrowseRoute(typeName string) string {
	return d.prefix + "_list_" + typeName
}

// EditRoute names the edit/create flow for typeName.
func (d Descriptor) EditRoute(typeName string) string {
	return d.prefix + "_edit_" + typeName
}

// ListAttachedRoute names the attached listing of the primary record.
func (d Descriptor) ListAttachedRoute() string {
	return d.prefix + "_list_" + d.primary + "_" + d.Key()
}

// AttachRoute names the attach flow.
func (d Descriptor) AttachRoute() string {
	return d.prefix + "_add_" + d.primary + "_" + d.Key()
}

// DetachRoute names the detach flow.
func (d Descriptor) DetachRoute() string {
	return d.prefix + "_remove_" + d.primary + "_" + d.Key()
}

// Routes returns the dispatch table: browse and edit per related type in
// declaration order, then list-attached, attach and detach.
func (d Descriptor) Routes() []Route {
	routes := make([]Route, 0, len(d.related)*2+3)
	for _, name := range d.related {
		routes = append(routes,
			Route{Name: d.BrowseRoute(name), Operation: OpBrowse, Type: name},
			Route{Name: d.EditRoute(name), Operation: OpEdit, Type: name},
		)
	}
	routes = append(routes,
		Route{Name: d.ListAttachedRoute(), Operation: OpListAttached},
		Route{Name: d.AttachRoute(), Operation: OpAttach},
		Route{Name: d.DetachRoute(), Operation: OpDetach},
	)
	return routes
}
