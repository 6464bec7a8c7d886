package control

// This file defines the API for single-instance ownership and the command
// channel the CLI uses to talk to a resident instance.

import (
	"context"
)

// Commands understood by a resident instance.
const (
	CmdStatus     = "STATUS"
	CmdNext       = "NEXT"
	CmdClear      = "CLEAR"
	CmdLoad       = "LOAD"
	CmdToggleLoop = "TOGGLE-LOOP"
)

// Server owns the TCP endpoint and answers commands from later invocations.
// Binding the port doubles as the single-instance lock.
type Server interface {
	// Start binds the first port of the configured range. Failure means a
	// resident instance already holds it.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted command connection, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends OK followed by an optional body.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request is a single command from a client.
type Request struct {
	Command string
	// Payload carries the LOAD body; empty for other commands.
	Payload string
}

// Client delegates commands to a resident instance.
type Client interface {
	// Send scans the TCP range for a resident, performs the PING handshake,
	// and delegates the command. If no resident is found, returns
	// delegated=false, err=nil.
	Send(ctx context.Context, command, payload string) (delegated bool, reply string, err error)
}

// NewServer returns the TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns the TCP implementation.
func NewClient() Client { return newTcpClient() }
