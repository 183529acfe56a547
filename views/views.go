// Package views holds the few server-rendered pages of the bundle host. The
// site itself is the client bundle; these cover the cases where it cannot be
// served.
package views

//go:generate templ generate

// Site carries the values shared by every page.
type Site struct {
	Name string
}
