// Package templates holds the transactional email bodies as templ components.
//
// The markup lives in email.templ; email_templ.go is generated from it with
// `templ generate` and must not be edited by hand. Render turns a component
// into the HTML string handed to an email.EmailSender.
package templates
