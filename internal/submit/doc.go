// Package submit performs the HTTP exchange with the webhook collector.
//
// Submit runs the full pipeline for one report: endpoint validation,
// authorization resolution, concurrent attachment processing, payload
// assembly and a single POST. No retries, no batching; a failure is
// returned to the caller, never requeued. UploadFile posts one
// attachment against an existing report id.
//
// All outcomes land in one error taxonomy; authorization errors are
// mapped into it at this boundary so callers handle a single set.
package submit
