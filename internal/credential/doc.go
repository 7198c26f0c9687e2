// Package credential holds the cached authorization credential and the
// Store contract for persisting it between submissions.
//
// Load never fails and never checks expiry: it returns whatever was
// saved last, or nil when nothing was. Expiry policy lives with the
// caller (internal/auth), which needs to tell "no stored credential"
// apart from "stored but expired"; the two take different recovery
// paths. Stores are safe for concurrent use from parallel submissions.
package credential
