package game

import "errors"

var (
	ErrRoomNotFound      = errors.New("Room not found")
	ErrRoomFull          = errors.New("Room is full")
	ErrGameInProgress    = errors.New("Game already in progress")
	ErrNotEnoughPlayers  = errors.New("Not enough players to start")
	ErrDuplicateNickname = errors.New("Nickname already taken in this room")
	ErrInvalidCodeFormat = errors.New("Room code must be 6 letters or digits")
	ErrNotAuthorized     = errors.New("Only the host can do that")
	ErrInvalidNickname   = errors.New("Nickname must be 1-20 characters")

	// Dropped without telling the client.
	ErrInvalidPhase  = errors.New("invalid phase for action")
	ErrNotMember     = errors.New("not a member of this room")
	ErrInvalidTarget = errors.New("invalid target")
	ErrEmptyMessage  = errors.New("empty message")
	ErrPoolTooSmall  = errors.New("identity pool needs at least two distinct identities")
)

var silent = []error{ErrInvalidPhase, ErrNotMember, ErrInvalidTarget, ErrEmptyMessage}

// IsSilent reports whether err is a lenient rejection that should be
// swallowed rather than shown to the player.
func IsSilent(err error) bool {
	for _, s := range silent {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// ErrorCode maps an error to the short code sent alongside the message.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrGameInProgress):
		return "game_in_progress"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, ErrDuplicateNickname):
		return "duplicate_nickname"
	case errors.Is(err, ErrInvalidCodeFormat):
		return "invalid_code_format"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, ErrInvalidNickname):
		return "invalid_nickname"
	default:
		return "bad_request"
	}
}
