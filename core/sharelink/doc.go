// Package sharelink builds shareable preview URLs for files.
//
// The link itself never embeds a download code: codes for private files
// travel out of band and appear in the bundle only when the requester
// owns the file. Public files never carry a code at all.
package sharelink
