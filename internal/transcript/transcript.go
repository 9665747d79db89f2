package transcript

// Speaker identifies which side of the interview produced a turn.
type Speaker string

const (
	Candidate   Speaker = "Candidate"
	Interviewer Speaker = "Interviewer"
)

// Turn is a single utterance in the interview. Turns are immutable once
// appended; ordinals are strictly increasing within a store.
type Turn struct {
	ID      int
	Speaker Speaker
	Text    string
}

// Store is an ordered, append-only log of turns. Speaker alternation is not
// enforced: a retried call may legally append two Interviewer turns in a row.
// The log is unbounded; very long sessions grow memory accordingly.
type Store struct {
	turns []Turn
	next  int
}

func NewStore() *Store {
	return &Store{next: 1}
}

// Append adds a turn to the end of the log and assigns the next ordinal.
func (s *Store) Append(speaker Speaker, text string) Turn {
	turn := Turn{
		ID:      s.next,
		Speaker: speaker,
		Text:    text,
	}
	s.next++
	s.turns = append(s.turns, turn)

	return turn
}

// Recent returns the last n turns in order. It is used to bound prompt size.
func (s *Store) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	if n > len(s.turns) {
		n = len(s.turns)
	}

	recent := make([]Turn, n)
	copy(recent, s.turns[len(s.turns)-n:])

	return recent
}

// All returns the full ordered sequence of turns.
func (s *Store) All() []Turn {
	all := make([]Turn, len(s.turns))
	copy(all, s.turns)

	return all
}

func (s *Store) Len() int {
	return len(s.turns)
}
