package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/hydraulic"
	"github.com/san-kum/hydrosim/internal/sim"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server exposes a running aircraft over HTTP: Prometheus metrics, JSON
// snapshots, failure and control injection and a websocket snapshot stream.
// It observes frames from the runner and mutates the aircraft through Do.
type Server struct {
	router   *gin.Engine
	plant    *aircraft.Aircraft
	registry *Registry
	upgrader websocket.Upgrader
	push     time.Duration
	logger   *slog.Logger

	mu   sync.RWMutex
	last sim.Frame
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithPushInterval sets the websocket snapshot period.
func WithPushInterval(d time.Duration) Option {
	return func(s *Server) { s.push = d }
}

func NewServer(plant *aircraft.Aircraft, registry *Registry, opts ...Option) *Server {
	s := &Server{
		router:   gin.New(),
		plant:    plant,
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		push:   200 * time.Millisecond,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.registry.Handler()))
	s.router.GET("/ws", s.handleWebSocket)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/snapshot", s.getSnapshot)

		v1.GET("/failures", s.getFailures)
		v1.POST("/failures", s.setFailure)

		v1.GET("/controls", s.getControls)
		v1.POST("/controls", s.setControls)
		v1.POST("/flight", s.setFlight)
		v1.POST("/engines/:number", s.setEngine)
	}
}

// OnFrame records the latest frame and forwards it to the registry.
func (s *Server) OnFrame(f sim.Frame) {
	s.mu.Lock()
	s.last = f
	s.mu.Unlock()
	s.registry.OnFrame(f)
}

func (s *Server) Snapshot() sim.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("telemetry server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("telemetry server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Handlers

type snapshotResponse struct {
	Index  int                `json:"index"`
	Time   float64            `json:"time"`
	Values map[string]float64 `json:"values"`
}

func newSnapshotResponse(f sim.Frame, prefix string) snapshotResponse {
	values := make(map[string]float64, len(f.Values))
	for name, v := range f.Values {
		if strings.HasPrefix(name, prefix) {
			values[name] = v
		}
	}
	return snapshotResponse{Index: f.Index, Time: f.Time, Values: values}
}

func (s *Server) healthCheck(c *gin.Context) {
	f := s.Snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "frame": f.Index, "time": f.Time})
}

func (s *Server) getSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, newSnapshotResponse(s.Snapshot(), strings.ToUpper(c.Query("prefix"))))
}

func (s *Server) activeFailures() []string {
	var out []string
	s.plant.Do(func(a *aircraft.Aircraft) {
		for _, f := range a.Failures().Active() {
			out = append(out, f.String())
		}
	})
	sort.Strings(out)
	return out
}

func (s *Server) getFailures(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active": s.activeFailures()})
}

type failureRequest struct {
	Failure string `json:"failure" binding:"required"`
	Active  bool   `json:"active"`
}

func (s *Server) setFailure(c *gin.Context) {
	var req failureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	f, err := hydraulic.ParseFailure(req.Failure)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.plant.Do(func(a *aircraft.Aircraft) { a.SetFailure(f, req.Active) })
	s.logger.Info("failure toggled", "failure", f.String(), "active", req.Active)
	c.JSON(http.StatusOK, gin.H{"active": s.activeFailures()})
}

type engineState struct {
	Number int     `json:"number"`
	Master bool    `json:"master"`
	Failed bool    `json:"failed"`
	N2     float64 `json:"n2"`
}

type controlsResponse struct {
	Panel   aircraft.Panel  `json:"panel"`
	Flight  aircraft.Flight `json:"flight"`
	Engines []engineState   `json:"engines"`
}

func (s *Server) controls() controlsResponse {
	var resp controlsResponse
	s.plant.Do(func(a *aircraft.Aircraft) {
		resp.Panel = copyPanel(*a.Panel())
		resp.Flight = a.Flight()
		for _, e := range a.Engines() {
			resp.Engines = append(resp.Engines, engineState{
				Number: e.Number(),
				Master: e.IsMasterOn(),
				Failed: e.IsFailed(),
				N2:     e.N2(),
			})
		}
	})
	return resp
}

func copyPanel(p aircraft.Panel) aircraft.Panel {
	if p.LeakMeasurementOff != nil {
		m := make(map[hydraulic.Color]bool, len(p.LeakMeasurementOff))
		for k, v := range p.LeakMeasurementOff {
			m[k] = v
		}
		p.LeakMeasurementOff = m
	}
	return p
}

func (s *Server) getControls(c *gin.Context) {
	c.JSON(http.StatusOK, s.controls())
}

// setControls patches the panel: fields absent from the body keep their
// current value.
func (s *Server) setControls(c *gin.Context) {
	panel := s.controls().Panel
	if err := c.ShouldBindJSON(&panel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	s.plant.Do(func(a *aircraft.Aircraft) { *a.Panel() = panel })
	c.JSON(http.StatusOK, s.controls())
}

func (s *Server) setFlight(c *gin.Context) {
	flight := s.controls().Flight
	if err := c.ShouldBindJSON(&flight); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	s.plant.Do(func(a *aircraft.Aircraft) { a.SetFlight(flight) })
	c.JSON(http.StatusOK, s.controls())
}

type engineRequest struct {
	Master *bool    `json:"master"`
	Failed *bool    `json:"failed"`
	Thrust *float64 `json:"thrust"`
}

func (s *Server) setEngine(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid engine number"})
		return
	}

	var req engineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	s.plant.Do(func(a *aircraft.Aircraft) {
		var e *aircraft.Engine
		if e, err = a.Engine(number); err != nil {
			return
		}
		if req.Master != nil {
			e.SetMaster(*req.Master)
		}
		if req.Failed != nil {
			if *req.Failed {
				e.Fail()
			} else {
				e.Restore()
			}
		}
		if req.Thrust != nil {
			e.SetThrust(*req.Thrust)
		}
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.controls())
}

// handleWebSocket streams snapshots until the client goes away. Frames
// older than the last one sent are not repeated.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.registry.clients.Inc()
	defer s.registry.clients.Dec()

	// Reads only detect the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	prefix := strings.ToUpper(c.Query("prefix"))
	ticker := time.NewTicker(s.push)
	defer ticker.Stop()

	sent := -1
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		f := s.Snapshot()
		if f.Values == nil || f.Index == sent {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(newSnapshotResponse(f, prefix)); err != nil {
			s.logger.Debug("websocket client dropped", "error", err)
			return
		}
		sent = f.Index
	}
}

var _ sim.Observer = (*Server)(nil)
