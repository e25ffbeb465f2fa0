// Package errx provides structured, code-based errors for the engine bridge.
//
// Every error carries:
//   - A five-character SQLSTATE-shaped code (e.g., "22021" for format errors)
//   - A category description (e.g., "Format error")
//   - A user-facing message
//   - Optional structured context (key-value pairs)
//   - Optional cause and base sentinel errors
//
// Codes reuse the engine's own classes so a bridge error can be attached to a
// native report without translation:
//   - 22021: a report field could not be encoded
//   - 38000: a report crossed the error threshold in this frame
//   - 39000: a native error is being relayed through this frame
//   - 55000: bridge API misuse (nested report, repeated field)
//   - XX000: exception stack corruption
//   - F0000: configuration errors
//   - 58000: scenario/CLI errors
//
// Example usage:
//
//	err := errx.Format("message contains a NUL byte").
//		WithContext("field", "detail").
//		WithBase(sentinelErr)
//
//	if errors.Is(err, sentinelErr) {
//		// Handle specific error
//	}
//
//	fmt.Println(errx.UserString(err))  // User-friendly message
//	fmt.Println(errx.DebugString(err)) // Full debug details
package errx
