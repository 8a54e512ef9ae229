// Package utils contains the generic decorators every transaction passes
// through: panic recovery, logging, savepoints and action tagging.
package utils
