package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"

	"sorcerer/pkg/protocol"
)

// DialTimeout bounds how long Dial waits for a connection when the caller's
// context carries no deadline.
const DialTimeout = 5 * time.Second

var (
	// ErrUnreachable is wrapped by Dial failures.
	ErrUnreachable = errors.New("agent unreachable")
	// ErrCallFailed is wrapped by transport failures of an individual call.
	ErrCallFailed = errors.New("agent call failed")
)

// Client is a connected handle to one agent. It implements
// protocol.AgentClient and is safe for concurrent use.
type Client struct {
	name string
	addr string
	conn *grpc.ClientConn
}

var _ protocol.AgentClient = (*Client)(nil)

// Addr formats the loopback RPC address of an agent listening on port.
func Addr(port int) string {
	return net.JoinHostPort(protocol.AgentHost, strconv.Itoa(port))
}

// Dial connects to the agent named name at addr and waits until the
// connection is ready. Failures return a *protocol.WorkerUnreachableError
// wrapping ErrUnreachable.
func Dial(ctx context.Context, name, addr string) (*Client, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DialTimeout)
		defer cancel()
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	)
	if err != nil {
		return nil, unreachable(name, addr, err.Error(), err)
	}

	conn.Connect()
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return &Client{name: name, addr: addr, conn: conn}, nil
		case connectivity.TransientFailure, connectivity.Shutdown:
			_ = conn.Close()
			return nil, unreachable(name, addr, "connection "+stateReason(state), nil)
		}
		if !conn.WaitForStateChange(ctx, state) {
			_ = conn.Close()
			return nil, unreachable(name, addr, "timed out", ctx.Err())
		}
	}
}

func stateReason(s connectivity.State) string {
	if s == connectivity.Shutdown {
		return "shut down"
	}
	return "refused"
}

func unreachable(name, addr, reason string, cause error) error {
	err := ErrUnreachable
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrUnreachable, cause)
	}
	return &protocol.WorkerUnreachableError{Worker: name, Addr: addr, Reason: reason, Err: err}
}

// Name returns the agent name the client was dialed for.
func (c *Client) Name() string { return c.name }

// Invoke sends text to the agent under a fresh invocation ID. A response
// with Success=false is returned as-is; only transport failures are errors.
func (c *Client) Invoke(ctx context.Context, text string) (*protocol.InvokeResponse, error) {
	req := &protocol.InvokeRequest{InvocationID: uuid.NewString(), Text: text}
	resp := new(protocol.InvokeResponse)
	if err := c.conn.Invoke(ctx, MethodInvoke, req, resp); err != nil {
		return nil, c.callErr("invoke", err)
	}
	if resp.InvocationID == "" {
		resp.InvocationID = req.InvocationID
	}
	return resp, nil
}

// Status fetches the agent's state snapshot.
func (c *Client) Status(ctx context.Context) (*protocol.StatusResponse, error) {
	resp := new(protocol.StatusResponse)
	if err := c.conn.Invoke(ctx, MethodGetStatus, &protocol.StatusRequest{}, resp); err != nil {
		return nil, c.callErr("status", err)
	}
	return resp, nil
}

// History fetches the last lines chat-log entries (all when lines is 0).
func (c *Client) History(ctx context.Context, lines int) ([]string, error) {
	resp := new(protocol.HistoryResponse)
	if err := c.conn.Invoke(ctx, MethodGetHistory, &protocol.HistoryRequest{Lines: lines}, resp); err != nil {
		return nil, c.callErr("history", err)
	}
	return resp.History, nil
}

// Terminate asks the agent process to exit.
func (c *Client) Terminate(ctx context.Context, reason string) error {
	resp := new(protocol.TerminateResponse)
	if err := c.conn.Invoke(ctx, MethodTerminate, &protocol.TerminateRequest{Reason: reason}, resp); err != nil {
		return c.callErr("terminate", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) callErr(op string, err error) error {
	return fmt.Errorf("%w: %s %s at %s: %w", ErrCallFailed, op, c.name, c.addr, err)
}
