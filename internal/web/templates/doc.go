// Package templates renders the HTML pages of the validation service.
//
// The *.templ files are the sources; the *_templ.go files are generated from
// them with `templ generate` and must not be edited by hand.
package templates
