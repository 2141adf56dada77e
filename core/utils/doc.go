// Package utils provides small conversion helpers shared across features,
// mainly for loosely typed values decoded from client JSON.
package utils
