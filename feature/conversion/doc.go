// Package conversion keeps every fiction ebook available in the canonical
// formats.
//
// A Sweeper walks the library and queues one Job per (version, target format)
// that has no uploaded copy. Jobs live in the conversion_jobs table and are
// deduplicated by an idempotency key, so repeated sweeps never queue the same
// work twice. A WorkerPool claims queued jobs, the Runner downloads the source
// file from object storage, converts it with calibre's ebook-convert, uploads
// the result and attaches it to the same version as an uploaded format.
// Failed jobs are retried until max_retries is reached.
package conversion
