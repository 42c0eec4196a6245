// Package render turns host data into HTML.
//
// Templates holds the embedded page set (home, list, project, page, table and
// error). Each page is parsed together with the shared layout so every page
// defines its own "content" block. Markdown wraps goldmark with a named set
// of extensions chosen per backend descriptor.
package render
