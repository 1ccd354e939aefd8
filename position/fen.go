package position

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("invalid fen")
	ErrUnknownMove = errors.New("unknown move")
)

// ValidateFEN checks fen with notnil/chess before a backend parses it; the
// dragontoothmg parser panics on malformed input.
func ValidateFEN(fen string) error {
	if strings.TrimSpace(fen) == "" {
		return fmt.Errorf("position: %w: empty", ErrInvalidFEN)
	}
	if _, err := chess.FEN(fen); err != nil {
		return fmt.Errorf("position: %w: %v", ErrInvalidFEN, err)
	}
	return nil
}

// SAN renders a coordinate move ("g1f3") in standard algebraic notation for the
// position given by fen.
func SAN(fen, uci string) (string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("position: %w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()
	mv, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return "", fmt.Errorf("position: %w %q: %v", ErrUnknownMove, uci, err)
	}
	return chess.AlgebraicNotation{}.Encode(pos, mv), nil
}

// Line renders a sequence of coordinate moves in SAN, each move applied to the
// position the previous one produced.
func Line(fen string, ucis []string) ([]string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("position: %w: %v", ErrInvalidFEN, err)
	}
	game := chess.NewGame(opt)
	out := make([]string, 0, len(ucis))
	for _, uci := range ucis {
		pos := game.Position()
		mv, err := chess.UCINotation{}.Decode(pos, uci)
		if err != nil {
			return out, fmt.Errorf("position: %w %q: %v", ErrUnknownMove, uci, err)
		}
		out = append(out, chess.AlgebraicNotation{}.Encode(pos, mv))
		if err := game.Move(mv); err != nil {
			return out, fmt.Errorf("position: play %q: %w", uci, err)
		}
	}
	return out, nil
}
