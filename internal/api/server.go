// Package api serves motion inspection and conversion over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/mtnkit/internal/convert"
	"github.com/samcharles93/mtnkit/internal/logger"
	"github.com/samcharles93/mtnkit/internal/report"
	"github.com/samcharles93/mtnkit/internal/version"
	"github.com/samcharles93/mtnkit/pkg/mtn"
)

// Response headers set on conversion output.
const (
	HeaderConversionID = "X-Conversion-Id"
	HeaderInputDigest  = "X-Input-Blake3"
	HeaderOutputDigest = "X-Output-Blake3"
)

// DefaultMaxBody bounds uploaded motion files.
const DefaultMaxBody = 16 << 20

var errBodyTooLarge = errors.New("request body too large")

type Server struct {
	conv    *convert.Converter
	store   *ConversionStore
	log     logger.Logger
	maxBody int64
	clock   func() time.Time
}

func NewServer(conv *convert.Converter, store *ConversionStore, log logger.Logger) *Server {
	if conv == nil {
		conv = convert.New()
	}
	if store == nil {
		store = NewConversionStore(0)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		conv:    conv,
		store:   store,
		log:     log,
		maxBody: DefaultMaxBody,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/version", s.handleVersion)
	e.GET("/v1/platforms", s.handlePlatforms)

	e.POST("/v1/inspect", s.handleInspect)
	e.POST("/v1/identify", s.handleIdentify)
	e.POST("/v1/capture", s.handleCapture)

	e.POST("/v1/convert", s.handleConvert)
	e.GET("/v1/conversions/:id", s.handleGetConversion)
	e.GET("/v1/conversions/:id/output", s.handleGetOutput)
	e.DELETE("/v1/conversions/:id", s.handleDeleteConversion)
}

func (s *Server) readBody(c *echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, s.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, s.maxBody)
	}
	if len(body) == 0 {
		return nil, newInvalidRequest("request body must be an MTN file")
	}
	return body, nil
}

func (s *Server) parse(c *echo.Context) (*mtn.Document, error) {
	body, err := s.readBody(c)
	if err != nil {
		return nil, err
	}
	return mtn.Parse(bytes.NewReader(body), s.conv.Decode)
}

func (s *Server) handleVersion(c *echo.Context) error {
	return c.JSON(http.StatusOK, version.Resolve())
}

type platformEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Server) handlePlatforms(c *echo.Context) error {
	plats := s.conv.PlatformTable()
	names := plats.PublicNames()
	out := make([]platformEntry, len(names))
	for i, n := range names {
		out[i] = platformEntry{Name: n, Code: plats.InternalCode(n)}
	}
	return c.JSON(http.StatusOK, map[string]any{"platforms": out})
}

func (s *Server) handleInspect(c *echo.Context) error {
	doc, err := s.parse(c)
	if doc == nil {
		return writeErr(c, err)
	}
	// A partially decoded motion is still reported, with the error inline.
	return c.JSON(http.StatusOK, report.Build(doc, err, s.conv.PlatformTable(), s.conv.Translator))
}

func (s *Server) handleIdentify(c *echo.Context) error {
	doc, err := s.parse(c)
	if err != nil {
		return writeErr(c, err)
	}
	id, err := s.conv.Identify(doc)
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, "identify_error", err.Error())
	}
	return c.JSON(http.StatusOK, id)
}

func (s *Server) handleCapture(c *echo.Context) error {
	doc, err := s.parse(c)
	if err != nil {
		return writeErr(c, err)
	}
	cat, err := s.conv.Capture(doc)
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, "capture_error", err.Error())
	}
	return c.JSON(http.StatusOK, cat)
}

// ConversionResponse is returned when a conversion fails part way. The output
// written so far remains available under /v1/conversions/:id/output.
type ConversionResponse struct {
	Result   *convert.Result `json:"result"`
	Warnings []string        `json:"warnings,omitempty"`
	Error    *ErrorDetail    `json:"error,omitempty"`
}

func (s *Server) handleConvert(c *echo.Context) error {
	target := c.QueryParam("target")
	if target == "" {
		return writeErr(c, newInvalidRequest("target query parameter is required"))
	}
	conv := *s.conv
	if v := c.QueryParam("header_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return writeErr(c, newInvalidRequest("header_only must be a boolean"))
		}
		conv.HeaderOnly = b
	}
	if err := conv.PlatformTable().Validate(target); err != nil {
		return writeErr(c, err)
	}
	body, err := s.readBody(c)
	if err != nil {
		return writeErr(c, err)
	}

	var out bytes.Buffer
	res, err := conv.Convert(bytes.NewReader(body), &out, target)
	if res == nil {
		return writeErr(c, err)
	}
	rec := &conversionRecord{Result: res, Output: out.Bytes(), CreatedAt: s.clock()}
	if err != nil {
		rec.Err = err.Error()
	}
	s.store.Put(res.ID, rec)
	s.log.Info("conversion", "id", res.ID, "source", res.SourcePublic, "target", target,
		"bytes", res.BytesWritten, "substitutions", len(res.Substitutions), "error", rec.Err)

	h := c.Response().Header()
	h.Set(HeaderConversionID, res.ID)
	h.Set(HeaderInputDigest, res.InputDigest)
	h.Set(HeaderOutputDigest, res.OutputDigest)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ConversionResponse{
			Result:   res,
			Warnings: res.WarningText(),
			Error:    &ErrorDetail{Message: err.Error(), Type: "partial_conversion"},
		})
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, rec.Output)
}

func (s *Server) handleGetConversion(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "conversion not found")
	}
	resp := ConversionResponse{Result: rec.Result, Warnings: rec.Result.WarningText()}
	if rec.Err != "" {
		resp.Error = &ErrorDetail{Message: rec.Err, Type: "partial_conversion"}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetOutput(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "conversion not found")
	}
	c.Response().Header().Set(HeaderOutputDigest, rec.Result.OutputDigest)
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, rec.Output)
}

func (s *Server) handleDeleteConversion(c *echo.Context) error {
	if !s.store.Delete(c.Param("id")) {
		return writeNotFound(c, "conversion not found")
	}
	return c.NoContent(http.StatusNoContent)
}
