package app

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/specialistvlad/metagrid/internal/coltype"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/engine"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// newServer wires the HTTP routes:
//
//	GET  /health        liveness probe
//	GET  /metafeatures  computable metafeature names
//	POST /compute       CSV body; query: target, metafeatures, timeout, seed
func (a *App) newServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = a.httpErrorHandler

	e.GET("/health", a.handleHealth)
	e.GET("/metafeatures", a.handleList)
	e.POST("/compute", a.handleCompute)
	return e
}

// Serve runs the HTTP server until ctx is done, then shuts it down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	e := a.newServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting.", "address", a.config.ListenAddr)
		if err := e.Start(a.config.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server...")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) handleHealth(c echo.Context) error {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", c.RealIP())
	return c.String(http.StatusOK, "OK\n")
}

func (a *App) handleList(c echo.Context) error {
	return writeJSON(c, http.StatusOK, a.engine.ListMetafeatures())
}

func (a *App) handleCompute(c echo.Context) error {
	var o Overrides
	if c.QueryParams().Has("target") {
		target := c.QueryParam("target")
		o.Target = &target
	}
	if ids := c.QueryParam("metafeatures"); ids != "" {
		o.Metafeatures = SplitNames(ids)
	}
	if raw := c.QueryParam("timeout"); raw != "" {
		d, err := ParseTimeout(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		o.Timeout = &d
	}
	if raw := c.QueryParam("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid seed: "+err.Error())
		}
		o.Seed = &seed
	}

	res, err := a.ComputeWith(c.Request().Context(), c.Request().Body, o)
	if err != nil {
		return err
	}
	return writeJSON(c, http.StatusOK, res)
}

// httpErrorHandler maps request validation errors to 400 and renders every
// error as {"error": "..."}.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := err.Error()

	var httpErr *echo.HTTPError
	var reqErr *engine.InvalidMetafeatureRequestError
	var typeErr *coltype.InvalidColumnTypeError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		msg = http.StatusText(status)
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
	case errors.As(err, &reqErr), errors.As(err, &typeErr), isBadInput(err):
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		a.logger.Error("Request failed.", "path", c.Path(), "error", err)
	}
	if werr := writeJSON(c, status, map[string]string{"error": msg}); werr != nil {
		a.logger.Error("Failed to write error response.", "error", werr)
	}
}

func isBadInput(err error) bool {
	for _, target := range []error{
		engine.ErrXNotTabular,
		engine.ErrYNotColumn,
		engine.ErrRegressionTarget,
		engine.ErrRowMismatch,
		engine.ErrNegativeTimeout,
		coltype.ErrColumnCountMismatch,
		coltype.ErrColumnCoverage,
		errDatasetLoad,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var incompatible *coltype.IncompatibleColumnTypeError
	return errors.As(err, &incompatible)
}

// maxTimeoutSeconds is the largest whole number of seconds a time.Duration
// holds.
const maxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// ParseTimeout accepts a Go duration ("1.5s") or plain seconds ("1.5").
func ParseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > float64(maxTimeoutSeconds) {
			return 0, errors.New("invalid timeout: " + raw + " is out of range")
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New("invalid timeout: " + raw)
	}
	return d, nil
}

// SplitNames splits a comma-separated name list, trimming spaces and
// dropping empty entries.
func SplitNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func writeJSON(c echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.JSONBlob(status, b)
}
