// Package engine owns the long-lived gateway components: the audit store chain,
// the provider router, the event bus and the background outbox drainer.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"cvgateway/config"
	"cvgateway/messaging"
	"cvgateway/provider"
	"cvgateway/recordcache"
	"cvgateway/router"
	"cvgateway/soap"
	"cvgateway/store"
)

type LogFunc func(format string, args ...any)

var errNotConnected = errors.New("not connected")

type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	// Redis is optional; without it records are read from SQL only.
	Redis      *recordcache.RedisStore
	// MsgClient is optional; without it saved records are not published.
	MsgClient  *messaging.Client
	LogFunc    LogFunc
}

type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	redis      *recordcache.RedisStore
	records    *recordcache.Manager
	bindings   *soap.BindingCache
	router     *router.Router
	msgClient  *messaging.Client
	drainer    *messaging.OutboxDrainer
	Events     *EventBus
	logFn      LogFunc
	stopChan   chan struct{}
	stopOnce   sync.Once

	dbConnected    bool
	cacheConnected bool
	msgConnected   bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	e := &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		redis:      c.Redis,
		msgClient:  c.MsgClient,
		bindings:   soap.NewBindingCache(),
		Events:     NewEventBus(),
		logFn:      logFn,
		stopChan:   make(chan struct{}),
	}
	e.records = recordcache.NewManager(c.DB, c.Redis)
	e.records.SetEmitter(&recordEmitter{bus: e.Events})
	e.router = router.New(c.AppConfig, e.records, e.bindings, provider.LogFunc(logFn))
	return e
}

func (e *Engine) Start() {
	e.wireEventHandlers()

	if e.msgClient != nil {
		e.drainer = messaging.NewOutboxDrainer(e.db, e.msgClient, e.cfg.Messaging.OutboxDrainInterval)
		e.drainer.Start()
	}

	e.checkConnectionStatus()
	go e.connectionHealthLoop()

	e.logFn("engine: started (%d routes)", len(e.router.Pairs()))
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	if e.drainer != nil {
		e.drainer.Stop()
	}
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) DB() *store.DB { return e.db }
func (e *Engine) AppConfig() *config.Config { return e.cfg }
func (e *Engine) ConfigPath() string { return e.configPath }
func (e *Engine) Records() *recordcache.Manager { return e.records }
func (e *Engine) Router() *router.Router { return e.router }
func (e *Engine) Bindings() *soap.BindingCache { return e.bindings }
func (e *Engine) MsgClient() *messaging.Client { return e.msgClient }
func (e *Engine) Drainer() *messaging.OutboxDrainer { return e.drainer }

// Ready reports whether the durable store is reachable.
func (e *Engine) Ready(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

func (e *Engine) checkConnectionStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.dbConnected = e.track(e.dbConnected, e.db.PingContext(ctx),
		EventDatabaseConnected, EventDatabaseDisconnected, "database "+e.db.Driver())

	if e.redis != nil {
		e.cacheConnected = e.track(e.cacheConnected, e.redis.Ping(ctx),
			EventCacheConnected, EventCacheDisconnected, "redis")
	}

	if e.msgClient != nil {
		var err error
		if !e.msgClient.IsConnected() {
			err = errNotConnected
		}
		e.msgConnected = e.track(e.msgConnected, err,
			EventMessagingConnected, EventMessagingDisconnected, "messaging "+e.msgClient.Backend())
	}
}

// track emits a connection event when the up/down state changes and returns
// the new state.
func (e *Engine) track(was bool, err error, up, down EventType, name string) bool {
	switch {
	case err == nil && !was:
		e.Events.Emit(Event{Type: up, Payload: ConnectionEvent{Detail: name}})
		return true
	case err != nil && was:
		e.Events.Emit(Event{Type: down, Payload: ConnectionEvent{Detail: name + ": " + err.Error()}})
		return false
	}
	return was
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}
