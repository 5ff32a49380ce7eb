package supplychain

import (
	"errors"

	"github.com/vsinha/echelon/pkg/domain/services"
)

var (
	// ErrInvalidNetwork wraps every construction failure
	ErrInvalidNetwork = errors.New("invalid supply network")
	// ErrUnknownNode is returned when an edge or order names a node outside the chain
	ErrUnknownNode = errors.New("unknown node")
	// ErrDuplicateNode is returned when two nodes share an id
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrDuplicateEdge is returned when an edge id is supplied more than once
	ErrDuplicateEdge = errors.New("duplicate edge")
	// ErrEdgeMismatch is returned when a node carries an edge that disagrees with the registered one
	ErrEdgeMismatch = errors.New("edge mismatch")
	// ErrCycle is returned when the network is not acyclic
	ErrCycle = services.ErrCycle
)
