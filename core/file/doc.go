// Package file defines the shared-file record consumed by the retrieval
// core. Records are owned by the backend; the client fetches them fresh
// per operation and this subsystem treats them as read-only.
package file
