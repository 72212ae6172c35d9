package driver

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/oraq/pkg/dpi"
	"github.com/leapstack-labs/oraq/pkg/oratype"
)

// Connection is one database session. It owns its statements and the
// narrow native-call surface they require. A Connection may move between
// goroutines; distinct statements on one connection may be used from
// different goroutines, relying on the native layer's connection-scoped
// serialization.
type Connection struct {
	api    dpi.API
	h      *dpi.Handle
	logger *slog.Logger

	fetchArraySize uint32

	mu     sync.Mutex
	stmts  map[*Statement]struct{}
	closed bool
}

// ConnOption configures a Connection.
type ConnOption func(*Connection)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) ConnOption {
	return func(c *Connection) { c.logger = logger }
}

// WithDefaultFetchArraySize sets the rows-per-round-trip batch size used
// by statements that do not override it.
func WithDefaultFetchArraySize(n uint32) ConnOption {
	return func(c *Connection) { c.fetchArraySize = n }
}

// Connect establishes a session through the given native layer. dpi.Init
// must have been called first.
func Connect(ctx context.Context, api dpi.API, params dpi.ConnParams, opts ...ConnOption) (*Connection, error) {
	c := &Connection{
		api:            api,
		fetchArraySize: DefaultFetchArraySize,
		stmts:          make(map[*Statement]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	h, err := api.Connect(ctx, params)
	if err != nil {
		return nil, wrapNative(err, "connect")
	}
	c.h = h
	c.logger.Debug("connected", "connect_string", params.ConnectString, "user", params.Username)
	return c, nil
}

func (c *Connection) checkOpen() error {
	if c.closed {
		return newError(ErrKindInvalidOperation, "connection is closed")
	}
	return nil
}

// Prepare parses sql and returns a Statement in the prepared state with
// its kind classified and its placeholders discovered. A partial
// prepare failure releases everything already allocated.
func (c *Connection) Prepare(ctx context.Context, sql string, opts ...StmtOption) (*Statement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	s := &Statement{
		conn:           c,
		sql:            sql,
		fetchArraySize: c.fetchArraySize,
		logger:         c.logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	h, err := c.api.Prepare(ctx, c.h, sql, s.tag)
	if err != nil {
		return nil, wrapNative(err, "prepare")
	}
	cleanup := func() {
		_ = c.api.CloseStmt(h, "")
		h.Close()
	}

	info, err := c.api.StmtInfo(h)
	if err != nil {
		cleanup()
		return nil, wrapNative(err, "statement info")
	}
	count, err := c.api.BindCount(h)
	if err != nil {
		cleanup()
		return nil, wrapNative(err, "bind count")
	}
	var names []string
	if count > 0 {
		names, err = c.api.BindNames(h)
		if err != nil {
			cleanup()
			return nil, wrapNative(err, "bind names")
		}
		for i, n := range names {
			names[i] = strings.ToUpper(n)
		}
	}

	s.h = h
	s.info = info
	s.kind = oratype.StatementKindFromNative(info.StatementType)
	s.bindNames = names
	s.binds = make([]*bindSlot, count)
	for i := range s.binds {
		s.binds[i] = &bindSlot{}
		if i < len(names) {
			s.binds[i].name = names[i]
		}
	}

	c.stmts[s] = struct{}{}
	c.logger.Debug("statement prepared", "kind", s.kind.String(), "binds", count)
	return s, nil
}

// Execute prepares, binds the given positional arguments, executes, and
// closes in one call, returning the affected row count. Convenience for
// DML and DDL.
func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (uint64, error) {
	s, err := c.Prepare(ctx, sql)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()
	for i, arg := range args {
		if err := s.Bind(i+1, arg); err != nil {
			return 0, err
		}
	}
	if err := s.Execute(ctx); err != nil {
		return 0, err
	}
	return s.RowsAffected(), nil
}

// QueryRow prepares, binds, executes and fetches the first row,
// returning it detached. ErrNoMoreData when the result set is empty.
func (c *Connection) QueryRow(ctx context.Context, sql string, args ...any) (*Row, error) {
	s, err := c.Prepare(ctx, sql, WithFetchArraySize(1))
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	for i, arg := range args {
		if err := s.Bind(i+1, arg); err != nil {
			return nil, err
		}
	}
	if err := s.Execute(ctx); err != nil {
		return nil, err
	}
	ok, err := s.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMoreData
	}
	return s.Row()
}

// Commit commits the current transaction.
func (c *Connection) Commit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}
	return wrapNative(c.api.Commit(ctx, c.h), "commit")
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}
	return wrapNative(c.api.Rollback(ctx, c.h), "rollback")
}

// Ping issues a liveness round trip.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return err
	}
	return wrapNative(c.api.Ping(ctx, c.h), "ping")
}

// ServerVersion reports the connected server's version.
func (c *Connection) ServerVersion() (oratype.Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return oratype.Version{}, err
	}
	info, err := c.api.ServerVersion(c.h)
	if err != nil {
		return oratype.Version{}, wrapNative(err, "server version")
	}
	return oratype.VersionFromInfo(info), nil
}

// forget drops a closed statement from the connection's registry.
func (c *Connection) forget(s *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stmts, s)
}

// Close closes every open statement and then the session. Idempotent.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	open := make([]*Statement, 0, len(c.stmts))
	for s := range c.stmts {
		open = append(open, s)
	}
	c.stmts = make(map[*Statement]struct{})
	c.mu.Unlock()

	for _, s := range open {
		_ = s.Close()
	}
	err := c.api.CloseConn(c.h)
	c.h.Close()
	c.logger.Debug("connection closed")
	if err != nil {
		return wrapNative(err, "close connection")
	}
	return nil
}
