// Package qrcode generates PNG QR codes for share links.
//
// Codes use medium error correction, which balances data capacity with
// recovery from typical display and printing defects. Output is raw PNG
// bytes or a base64 data URI for direct embedding.
//
// Usage:
//
//	png, err := qrcode.Generate("https://example.com/preview/42", 256)
//	if err != nil {
//		log.Fatal(err)
//	}
//	os.WriteFile("share.png", png, 0o644)
package qrcode
