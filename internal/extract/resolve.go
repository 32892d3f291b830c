package extract

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// FallbackPolicy picks an option index for a question with no confirmed
// answer. A negative index leaves the question unresolved.
type FallbackPolicy interface {
	Choose(q Question) int
	Name() string
}

// FirstOption always picks the first option.
type FirstOption struct{}

func (FirstOption) Choose(q Question) int {
	if len(q.Options) == 0 {
		return -1
	}
	return 0
}
func (FirstOption) Name() string { return "first" }

// NoFallback never guesses.
type NoFallback struct{}

func (NoFallback) Choose(Question) int { return -1 }
func (NoFallback) Name() string        { return "none" }

// RandomOption picks uniformly at random.
type RandomOption struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomOption returns a seeded random policy; seed 0 uses a random seed.
func NewRandomOption(seed uint64) *RandomOption {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomOption{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *RandomOption) Choose(q Question) int {
	if len(q.Options) == 0 {
		return -1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.IntN(len(q.Options))
}
func (p *RandomOption) Name() string { return "random" }

// PolicyByName maps a config value to a policy.
func PolicyByName(name string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "random":
		return NewRandomOption(0), nil
	case "first":
		return FirstOption{}, nil
	case "none", "off":
		return NoFallback{}, nil
	default:
		return nil, fmt.Errorf("unknown fallback policy %q", name)
	}
}

// letterIndex maps A..D (any case) to 0..3.
func letterIndex(letter string) (int, bool) {
	l := strings.ToUpper(strings.TrimSpace(letter))
	if len(l) != 1 || l[0] < 'A' || l[0] > 'D' {
		return 0, false
	}
	return int(l[0] - 'A'), true
}

// Resolve sets each question's correct option. The ordinal used for key
// lookups is the 1-based position in qs. Priority: answer key, inline
// annotation, fallback policy; otherwise the question stays unresolved.
func Resolve(qs []Question, key AnswerKey, policy FallbackPolicy) []Question {
	if policy == nil {
		policy = NoFallback{}
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		r := q.Clone()
		r.Correct, r.Provenance = nil, ProvenanceUnresolved

		if idx, ok := keyIndex(key, i+1, len(r.Options)); ok {
			r.setCorrect(idx, ProvenanceConfirmed)
		} else if idx, ok := annotationIndex(r); ok {
			r.setCorrect(idx, ProvenanceConfirmed)
		} else if idx := policy.Choose(r); idx >= 0 && idx < len(r.Options) {
			r.setCorrect(idx, ProvenanceFallback)
		}
		out[i] = r
	}
	return out
}

func (q *Question) setCorrect(idx int, p Provenance) {
	c := q.Options[idx]
	q.Correct = &c
	q.Provenance = p
}

func keyIndex(key AnswerKey, ordinal, n int) (int, bool) {
	letter, ok := key[ordinal]
	if !ok {
		return 0, false
	}
	idx, ok := letterIndex(letter)
	if !ok || idx >= n {
		return 0, false
	}
	return idx, true
}

func annotationIndex(q Question) (int, bool) {
	texts := make([]string, len(q.RawLines))
	for i, rl := range q.RawLines {
		texts[i] = rl.Text
	}
	for _, m := range annotationRe.FindAllStringSubmatch(strings.Join(texts, " "), -1) {
		if idx, ok := letterIndex(m[1]); ok && idx < len(q.Options) {
			return idx, true
		}
	}
	return 0, false
}
