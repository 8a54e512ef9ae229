// Package quorumtest provides mocks and helpers used by the tests of the
// quorum packages.
package quorumtest
