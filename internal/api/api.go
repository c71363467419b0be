package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/impostor/internal/game"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// RoomLookup is the read side of the game the HTTP API needs.
type RoomLookup interface {
	Summary(code string) (game.RoomSummary, error)
}

type handler struct {
	rooms     RoomLookup
	pool      game.Pool
	publicURL string
}

// Register mounts the JSON API on r.
func Register(r gin.IRouter, rooms RoomLookup, pool game.Pool, publicURL string) {
	h := &handler{rooms: rooms, pool: pool, publicURL: strings.TrimRight(publicURL, "/")}
	g := r.Group("/api")
	g.GET("/rooms/:code", h.room)
	g.GET("/rooms/:code/qr.png", h.qr)
	g.GET("/identities", h.identities)
}

func (h *handler) lookup(c *gin.Context) (game.RoomSummary, bool) {
	s, err := h.rooms.Summary(c.Param("code"))
	switch {
	case err == nil:
		return s, true
	case errors.Is(err, game.ErrInvalidCodeFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": game.ErrorCode(err)})
	case errors.Is(err, game.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrorCode(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
	return game.RoomSummary{}, false
}

func (h *handler) room(c *gin.Context) {
	if s, ok := h.lookup(c); ok {
		c.JSON(http.StatusOK, s)
	}
}

// qr renders a QR code pointing at the client's join page for the room.
func (h *handler) qr(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	link := h.publicURL + "/?room=" + url.QueryEscape(s.Code)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("code", s.Code).Msg("qr encode")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *handler) identities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"identities": h.pool})
}
