// Package authz holds every role rule of the helpdesk.
//
// Allow/deny is decided by an embedded Cedar policy set; the listing scope
// that goes with an allowed decision is derived from the caller's role in
// the same call. Handlers and services never branch on roles themselves.
package authz
