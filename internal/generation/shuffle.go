package generation

import (
	"math/rand/v2"
	"sync"
)

// Shuffler reorders quiz answer choices so the correct answer's position is
// not predictable. It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a Shuffler drawing from src. A nil src uses a randomly
// seeded PCG source. Pass a fixed source for reproducible tests.
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Shuffler{rng: rand.New(src)}
}

// Shuffle permutes choices in place with Fisher–Yates: for j from the last
// index down to 1, swap element j with a uniformly drawn index in [0, j].
func (s *Shuffler) Shuffle(choices []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for j := len(choices) - 1; j > 0; j-- {
		r := s.rng.IntN(j + 1)
		choices[j], choices[r] = choices[r], choices[j]
	}
}

// ShuffleChoices shuffles each question's PossibleAnswers independently.
// CorrectAnswer is a value, not a position, so it stays valid.
func (s *Shuffler) ShuffleChoices(questions []QuestionDraft) {
	for i := range questions {
		s.Shuffle(questions[i].PossibleAnswers)
	}
}
