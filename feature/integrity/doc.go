// Package integrity provides system health checks for the ebook server.
//
// It validates the infrastructure the library depends on rather than the
// library content itself.
//
// # Checks Provided
//
//   - Structure: Checks that the bucket exists and holds the ebooks/ folder.
//   - Schema: Validates that the connected database matches the library, conversion and search models.
//   - Formats: Builds a read-only reconcile plan between format rows and stored objects.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/formats : Runs formats reconciliation.
package integrity
