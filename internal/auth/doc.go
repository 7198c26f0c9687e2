// Package auth resolves the authorization credential used by report
// submissions.
//
// Resolve is the non-blocking path used by the pipeline: it consults the
// credential store, refreshes non-interactively via a signed JWT client
// assertion when a private key is configured, and otherwise reports that
// user authentication is required. AuthenticateInteractively runs the
// browser-mediated flow: URL construction is a pure function, while the
// SessionPresenter collaborator owns everything that needs a host
// environment. Only one interactive session may be in flight at a time.
package auth
