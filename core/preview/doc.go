// Package preview turns retrieved file bytes into a ready-to-render
// presentation plan.
//
// Classification is keyed purely by the declared Content-Type of the
// retrieval response; previewability itself is decided by the server and
// carried on the file record, never re-derived here. Text-like content is
// decoded as UTF-8 with a single GBK retry for legacy uploads, and binary
// content is handed over as a Blob whose release is guaranteed by the
// orchestrator on every exit path.
package preview
