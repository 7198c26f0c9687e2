// Package payload assembles the canonical wire records POSTed to the
// webhook collector. Build is a pure transformation from the in-memory
// Report plus its processed attachments; field presence and naming are
// part of the collector contract, so nothing a caller set is ever
// dropped. The wktype discriminator tells a full report submission
// apart from a standalone file upload.
package payload
