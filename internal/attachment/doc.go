// Package attachment turns captured media references into wire-ready
// encoded blobs.
//
// Screenshots are decoded, downscaled to fit the configured target frame
// (never upscaled) and re-encoded as JPEG at a fixed quality, so the
// output MIME type is image/jpeg regardless of the input format. Screen
// recordings go through a VideoExporter (the default shells out to
// ffmpeg/ffprobe), exporting to a temporary file that is removed on
// every exit path.
//
// ProcessAll fans one goroutine out per attachment; each task owns a
// fixed slot of a pre-sized result vector so input order is preserved
// regardless of completion order, and a single failing task fails the
// whole batch.
package attachment
