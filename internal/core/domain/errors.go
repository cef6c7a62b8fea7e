package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownKind is returned when a dependency report names a node kind
	// that is not part of the closed enumeration.
	ErrUnknownKind = zerr.New("unknown dependency kind")

	// ErrUnknownAspect is returned when a dependency report names an aspect
	// other than interface or implementation.
	ErrUnknownAspect = zerr.New("unknown dependency aspect")

	// ErrDuplicateNode is returned by the consistency check when two nodes
	// occupy the same (file, key) slot.
	ErrDuplicateNode = zerr.New("duplicate node for file and key")

	// ErrMisplacedNode is returned by the consistency check when a node's
	// owning file disagrees with its position in the store.
	ErrMisplacedNode = zerr.New("node misplaced in store")

	// ErrUntrackedExternal is returned by the consistency check when an
	// external-dependency node exists whose name is missing from the
	// external-dependency set.
	ErrUntrackedExternal = zerr.New("external dependency not tracked")

	// ErrExpatFingerprint is returned when a use-only snapshot node carries
	// a fingerprint. Only declarations have content to fingerprint.
	ErrExpatFingerprint = zerr.New("use-only node carries a fingerprint")

	// ErrConcreteAndExpat is returned by the consistency check when a key is
	// represented both by a node in a concrete file and by an expat node.
	ErrConcreteAndExpat = zerr.New("key has both a concrete node and an expat")

	// ErrTaskNotFound is returned when a requested task is not registered
	// with the driver.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrBuildExecutionFailed is returned when one or more compile tasks
	// fail; per-task details are logged as they happen.
	ErrBuildExecutionFailed = zerr.New("build execution failed")
)
