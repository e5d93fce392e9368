package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/atlas-foundry/mtlx-go-sdk/exporter"
	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scene-to-MaterialX export over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Serve.Addr = addr
			}
			e := newServer(a.cfg, a.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				a.log.Info("listening", "addr", a.cfg.Serve.Addr)
				errc <- e.Start(a.cfg.Serve.Addr)
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address; overrides [serve] addr")
	return cmd
}

// newServer wires the export API onto a fresh echo instance.
func newServer(cfg Config, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if cfg.Serve.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Serve.BodyLimit))
	}

	h := &exportHandler{cfg: cfg.Export, registry: exporter.DefaultRegistry, log: log}
	api := e.Group("/api")
	api.GET("/health", h.handleHealth)
	api.POST("/export", h.handleExport)
	api.GET("/formats", h.handleFormats)
	return e
}

type exportHandler struct {
	cfg      ExportConfig
	registry *exporter.Registry
	log      *slog.Logger
}

// apiError is the JSON body of every non-2xx response.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func badRequest(c echo.Context, code, message string, cause error) error {
	body := apiError{Code: code, Message: message}
	if cause != nil {
		body.Details = cause.Error()
	}
	return c.JSON(http.StatusBadRequest, body)
}

func (h *exportHandler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version,
	})
}

func (h *exportHandler) handleFormats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.List())
}

// handleExport converts the request body (a YAML or glTF scene) into the
// requested output. Query parameters:
//
//	input          yaml | gltf (default: from Content-Type, else yaml)
//	format         mtlx | dot | json | markdown | org | html (default mtlx)
//	only_selected  bool
//	select         comma-separated object names; implies only_selected
//	version        root version attribute
func (h *exportHandler) handleExport(c echo.Context) error {
	input := inputFormat(c)
	to := normalizeFormat(c.QueryParam("format"))

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "BAD_REQUEST", "failed to read body", err)
	}
	if len(body) == 0 {
		return badRequest(c, "BAD_REQUEST", "empty scene body", nil)
	}

	opts := map[string]any{
		"only_selected": h.cfg.OnlySelected,
		"version":       h.cfg.Version,
		"indent":        h.cfg.Indent,
		"header":        h.cfg.Header,
	}
	if v := c.QueryParam("only_selected"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "VALIDATION_ERROR", "only_selected must be a boolean", err)
		}
		opts["only_selected"] = b
	}
	if v := c.QueryParam("select"); v != "" {
		opts["select"] = splitList(v)
		opts["only_selected"] = true
	}
	if v := c.QueryParam("version"); v != "" {
		opts["version"] = v
	}

	chain := []string{input, exporter.FormatScene, exporter.FormatMTLX, to}
	out, err := h.registry.Chain(c.Request().Context(), chain, body, opts)
	if err != nil {
		if errors.Is(err, mtlx.ErrNotImplemented) {
			return badRequest(c, "UNSUPPORTED_FORMAT", fmt.Sprintf("cannot convert %s to %s", input, to), err)
		}
		return badRequest(c, "INVALID_SCENE", "scene could not be exported", err)
	}
	data, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("%s renderer returned %T", to, out)
	}
	h.log.Debug("export served", "input", input, "format", to, "bytes", len(data))
	return c.Blob(http.StatusOK, contentTypeFor(to), data)
}

func inputFormat(c echo.Context) string {
	if v := strings.ToLower(c.QueryParam("input")); v != "" {
		return v
	}
	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	switch mediaType {
	case "model/gltf+json", echo.MIMEApplicationJSON:
		return exporter.FormatGLTF
	default:
		return exporter.FormatYAML
	}
}

func contentTypeFor(format string) string {
	switch format {
	case exporter.FormatText:
		return echo.MIMEApplicationXMLCharsetUTF8
	case exporter.FormatJSON:
		return echo.MIMEApplicationJSONCharsetUTF8
	case exporter.FormatHTML:
		return echo.MIMETextHTMLCharsetUTF8
	case exporter.FormatMarkdown:
		return "text/markdown; charset=UTF-8"
	case exporter.FormatDOT:
		return "text/vnd.graphviz; charset=UTF-8"
	default:
		return echo.MIMETextPlainCharsetUTF8
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
