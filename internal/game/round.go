package game

// order returns the seat of player index i counted from the first player
// of the round.
func (s *State) order(i int) int {
	n := len(s.Players)
	return ((i-s.FirstInRound)%n + n) % n
}

// index returns the slice index of pl.
func (s *State) index(pl *Player) int {
	for i, p := range s.Players {
		if p.ID == pl.ID {
			return i
		}
	}
	return -1
}

// EnPassantOpen reports whether capturer may take pawn en passant now.
// The window covers the players seated after the pawn's owner in the round
// of the advance, and those seated before it in the following round, so
// every opponent gets exactly one chance before the owner moves again.
func (s *State) EnPassantOpen(pawn *Piece, capturer *Player) bool {
	if pawn.Kind != Pawn || pawn.AdvancedTwoRound == NeverAdvanced {
		return false
	}
	if pawn.Owner == nil || pawn.Owner.ID == capturer.ID {
		return false
	}
	owner, by := s.order(s.index(pawn.Owner)), s.order(s.index(capturer))
	switch s.Round {
	case pawn.AdvancedTwoRound:
		return by > owner
	case pawn.AdvancedTwoRound + 1:
		return by < owner
	}
	return false
}

// advance passes the turn to the next active player. Passing the end of
// the player list starts a new round. It returns true when a round began.
func (s *State) advance() bool {
	n := len(s.Players)
	if s.ActivePlayers() == 0 {
		return false
	}
	next := s.Turn
	for {
		next = (next + 1) % n
		if !s.Players[next].Eliminated {
			break
		}
	}
	wrapped := next <= s.Turn
	s.Turn = next
	if wrapped {
		s.Round++
		s.FirstInRound = next
	}
	return wrapped
}
