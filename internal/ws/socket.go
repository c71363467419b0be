package ws

import (
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/kiliankoe/impostor/internal/config"
	"github.com/kiliankoe/impostor/internal/game"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Commands understood on the default namespace.
const (
	cmdCreateRoom  = "createRoom"
	cmdJoinRoom    = "joinRoom"
	cmdStartGame   = "startGame"
	cmdSendMessage = "sendMessage"
	cmdVote        = "vote"
	cmdKickPlayer  = "kickPlayer"
	cmdPlayAgain   = "playAgain"
)

type Server struct {
	ctl    *game.Controller
	hub    *Hub
	config config.Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(ctl *game.Controller, hub *Hub, cfg config.Config) *Server {
	return &Server{ctl: ctl, hub: hub, config: cfg, limiters: make(map[string]*rate.Limiter)}
}

type joinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Nickname string `json:"nickname"`
}

type sendMessagePayload struct {
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}

type votePayload struct {
	RoomCode   string `json:"roomCode"`
	VotedForID string `json:"votedForId"`
}

type kickPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type playAgainPayload struct {
	RoomID string `json:"roomId"`
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", srv.onConnect)
	io.OnEvent("/", cmdCreateRoom, srv.onCreateRoom)
	io.OnEvent("/", cmdJoinRoom, srv.onJoinRoom)
	io.OnEvent("/", cmdStartGame, srv.onStartGame)
	io.OnEvent("/", cmdSendMessage, srv.onSendMessage)
	io.OnEvent("/", cmdVote, srv.onVote)
	io.OnEvent("/", cmdKickPlayer, srv.onKickPlayer)
	io.OnEvent("/", cmdPlayAgain, srv.onPlayAgain)
	io.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			log.Error().Err(e).Msg("socket error")
			return
		}
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", srv.onDisconnect)

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io serve")
		}
	}()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	return io
}

func (srv *Server) onConnect(s socketio.Conn) error {
	srv.hub.add(s)
	log.Info().Str("sid", s.ID()).Msg("socket connected")
	return nil
}

func (srv *Server) onDisconnect(s socketio.Conn, reason string) {
	srv.ctl.Disconnect(s.ID())
	srv.hub.remove(s.ID())
	srv.mu.Lock()
	delete(srv.limiters, s.ID())
	srv.mu.Unlock()
	log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
}

func (srv *Server) onCreateRoom(s socketio.Conn, nickname string) map[string]any {
	code, err := srv.ctl.CreateRoom(s.ID(), nickname)
	if err != nil {
		return srv.reply(s, cmdCreateRoom, err)
	}
	log.Info().Str("sid", s.ID()).Str("code", code).Msg(cmdCreateRoom)
	return map[string]any{"roomCode": code}
}

func (srv *Server) onJoinRoom(s socketio.Conn, payload joinRoomPayload) map[string]any {
	players, err := srv.ctl.JoinRoom(s.ID(), payload.RoomCode, payload.Nickname)
	if err != nil {
		return srv.reply(s, cmdJoinRoom, err)
	}
	log.Info().Str("sid", s.ID()).Str("code", payload.RoomCode).Msg(cmdJoinRoom)
	return map[string]any{"players": players}
}

func (srv *Server) onStartGame(s socketio.Conn, roomCode string) map[string]any {
	return srv.reply(s, cmdStartGame, srv.ctl.StartGame(s.ID(), roomCode))
}

func (srv *Server) onSendMessage(s socketio.Conn, payload sendMessagePayload) map[string]any {
	if !srv.limiter(s.ID()).Allow() {
		log.Debug().Str("sid", s.ID()).Msg("chat rate limited")
		return map[string]any{"ok": false}
	}
	return srv.reply(s, cmdSendMessage, srv.ctl.SendMessage(s.ID(), payload.RoomCode, payload.Message))
}

func (srv *Server) onVote(s socketio.Conn, payload votePayload) map[string]any {
	return srv.reply(s, cmdVote, srv.ctl.CastVote(s.ID(), payload.RoomCode, payload.VotedForID))
}

func (srv *Server) onKickPlayer(s socketio.Conn, payload kickPayload) map[string]any {
	return srv.reply(s, cmdKickPlayer, srv.ctl.Kick(s.ID(), payload.RoomID, payload.PlayerID))
}

func (srv *Server) onPlayAgain(s socketio.Conn, payload playAgainPayload) map[string]any {
	return srv.reply(s, cmdPlayAgain, srv.ctl.PlayAgain(s.ID(), payload.RoomID))
}

func (srv *Server) limiter(sid string) *rate.Limiter {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	l := srv.limiters[sid]
	if l == nil {
		l = rate.NewLimiter(rate.Limit(srv.config.ChatRate), srv.config.ChatBurst)
		srv.limiters[sid] = l
	}
	return l
}

// reply turns a controller result into an ack. Visible errors are also
// emitted as an error event carrying the bare message, so clients without
// ack handling see them. The ack names the command and error code.
func (srv *Server) reply(s socketio.Conn, cmd string, err error) map[string]any {
	if err == nil {
		return map[string]any{"ok": true}
	}
	if game.IsSilent(err) {
		log.Debug().Str("sid", s.ID()).Str("cmd", cmd).Err(err).Msg("ignored command")
		return map[string]any{"ok": false}
	}
	log.Warn().Str("sid", s.ID()).Str("cmd", cmd).Err(err).Msg("command rejected")
	s.Emit(game.EventError, err.Error())
	return map[string]any{"error": err.Error(), "code": game.ErrorCode(err), "command": cmd}
}
