package core

// Error codes
const (
	ErrGameNotFound      = "GAME_NOT_FOUND"
	ErrInvalidMove       = "INVALID_MOVE"
	ErrIllegalMove       = "ILLEGAL_MOVE"
	ErrSelfCheck         = "SELF_CHECK"
	ErrWrongTurn         = "WRONG_TURN"
	ErrNotHumanTurn      = "NOT_HUMAN_TURN"
	ErrGameOver          = "GAME_OVER"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrInvalidPosition   = "INVALID_POSITION"
	ErrSaveNotFound      = "SAVE_NOT_FOUND"
	ErrStorageDisabled   = "STORAGE_DISABLED"
	ErrInternalError     = "INTERNAL_ERROR"
)
