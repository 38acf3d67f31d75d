// Package route holds the route table of one area.
//
// A Table is an ordered list of Definitions. Each definition maps a route
// key (its When) to a component descriptor and an optional guard:
//
//	t := route.NewTable()
//	t.Register(route.Definition{When: "public-page", Component: component.Tag("public-page")})
//	t.Register(route.Definition{When: "users/:id", Component: userPage, Guard: loggedIn})
//
// Resolve performs an exact string match on When. Match additionally
// understands hierarchical keys: segments are separated by "/", ":name"
// captures a parameter, "*name" captures the rest of the key, and a
// definition that is not Exact also matches keys below it.
package route
