// Package server exposes the disassembler over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/sarchlab/rvdis/config"
	"github.com/sarchlab/rvdis/disasm"
	"github.com/sarchlab/rvdis/loader"
	"github.com/sarchlab/rvdis/textcache"
)

// MaxWords bounds the number of words accepted by one range request.
const MaxWords = 1 << 16

// Word is an instruction word in JSON. It decodes from a number or a hex
// string and encodes as "0x%08x".
type Word uint32

// UnmarshalJSON accepts 123, "0x7b" or "7b".
func (w *Word) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := loader.ParseWord(s)
		if err != nil {
			return err
		}
		*w = Word(v)
		return nil
	}

	v, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid instruction word %s", data)
	}
	*w = Word(v)
	return nil
}

// MarshalJSON renders the word as a zero-padded hex string.
func (w Word) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%08x", uint32(w)))
}

// RangeRequest is the body of POST /disassemble.
type RangeRequest struct {
	Base  uint64 `json:"base"`
	Words []Word `json:"words"`
}

// LineResponse is one rendered instruction.
type LineResponse struct {
	Address uint64 `json:"address"`
	Word    Word   `json:"word"`
	Text    string `json:"text"`
}

// RangeResponse is the reply to POST /disassemble.
type RangeResponse struct {
	Lines []LineResponse `json:"lines"`
}

// Server is the HTTP host.
type Server struct {
	echo   *echo.Echo
	disasm *disasm.Disassembler
	cache  *textcache.Cache
}

// New builds a Server from cfg. Call cfg.Validate first.
func New(cfg *config.Config, verbose bool) *Server {
	d := cfg.NewDisassembler()

	s := &Server{
		echo:   echo.New(),
		disasm: d,
		cache: textcache.New(textcache.Config{
			NumSets: cfg.Cache.NumSets,
			NumWays: cfg.Cache.NumWays,
		}, d),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	if verbose {
		s.echo.Logger.SetLevel(log.DEBUG)
	} else {
		s.echo.Logger.SetLevel(log.INFO)
	}

	s.echo.Use(middleware.Recover())
	if verbose {
		s.echo.Use(middleware.Logger())
	}

	s.echo.GET("/healthz", s.health)
	s.echo.GET("/stats", s.stats)
	s.echo.GET("/disassemble/:word", s.disassembleWord)
	s.echo.POST("/disassemble", s.disassembleRange)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Cache returns the rendered-line cache.
func (s *Server) Cache() *textcache.Cache {
	return s.cache
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.echo.Logger.Infof("rvdis listening on %s (%s)", addr, s.disasm.ISA())
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"isa":    s.disasm.ISA().String(),
	})
}

func (s *Server) stats(c echo.Context) error {
	st := s.cache.Stats()
	return c.JSON(http.StatusOK, map[string]any{
		"reads":     st.Reads,
		"hits":      st.Hits,
		"misses":    st.Misses,
		"evictions": st.Evictions,
		"hit_rate":  st.HitRate(),
	})
}

func (s *Server) disassembleWord(c echo.Context) error {
	word, err := loader.ParseWord(c.Param("word"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	text := s.cache.Lookup(word)
	c.Logger().Debugf("disassemble 0x%08x: %s", word, text)

	return c.JSON(http.StatusOK, LineResponse{
		Word: Word(word),
		Text: text,
	})
}

func (s *Server) disassembleRange(c echo.Context) error {
	var req RangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request: "+err.Error())
	}
	if len(req.Words) > MaxWords {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("too many words: %d > %d", len(req.Words), MaxWords))
	}

	resp := RangeResponse{Lines: make([]LineResponse, len(req.Words))}
	for i, w := range req.Words {
		resp.Lines[i] = LineResponse{
			Address: req.Base + uint64(i)*4,
			Word:    w,
			Text:    s.cache.Lookup(uint32(w)),
		}
	}

	return c.JSON(http.StatusOK, resp)
}
