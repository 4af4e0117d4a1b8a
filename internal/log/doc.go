// Package log provides the application logger: log/slog with a handler that
// masks contact and tax details before they reach the output.
//
// The agency dataset is public, but log files are often shared when
// reporting problems. The SecureHandler keeps e-mail addresses, VAT numbers
// and credentials out of them:
//   - attributes keyed email, vat, password, token, cookie... are masked
//   - string values that look like an e-mail address or a Belgian VAT
//     number are masked, also when embedded in a longer message
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("row rejected", "email", rec.Email) // email=***REDACTED***
//	slog.SetDefault(logger)
package log
