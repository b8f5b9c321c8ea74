package pipeline

import (
	"sort"

	"redbird/internal"
	"redbird/internal/config"
	"redbird/internal/util"
)

// Matcher pairs listed houses with pins from the map input so drift between
// the two files can be reported.
type Matcher struct {
	cfg   config.Config
	index *PinIndex
}

func NewMatcher(cfg config.Config, pins []internal.Pin) *Matcher {
	return &Matcher{cfg: cfg, index: BuildPinIndex(pins)}
}

func (m *Matcher) Match(house internal.House) internal.PinMatch {
	title := util.MatchKey(house.Title)

	exact := m.index.ByTitle[title]
	if len(exact) == 1 {
		return m.result(house, internal.MatchOK, 0.99, internal.ReasonTitle, exact[0], m.fixedCandidates(exact, 0.99))
	}
	if len(exact) > 1 {
		return m.result(house, internal.MatchReview, 0.80, internal.ReasonTitle, -1, m.fixedCandidates(exact, 0.80))
	}

	if addr := util.NormalizeAddress(house.Address); addr != "" {
		byAddr := m.index.ByAddress[addr]
		if len(byAddr) == 1 {
			return m.result(house, internal.MatchOK, 0.95, internal.ReasonAddress, byAddr[0], m.fixedCandidates(byAddr, 0.95))
		}
		if len(byAddr) > 1 {
			return m.result(house, internal.MatchReview, 0.78, internal.ReasonAddress, -1, m.fixedCandidates(byAddr, 0.78))
		}
	}

	candidates := m.rankCandidates(title)
	if len(candidates) == 0 {
		return m.result(house, internal.MatchNotFound, 0, internal.ReasonNone, -1, []internal.PinCandidate{})
	}

	top1 := candidates[0]
	gap := top1.Score
	if len(candidates) > 1 {
		gap = top1.Score - candidates[1].Score
	}

	switch {
	case top1.Score >= m.cfg.MatchOKThreshold && gap >= m.cfg.MatchGapThreshold:
		return m.result(house, internal.MatchOK, top1.Score, internal.ReasonFuzzy, top1.Index, candidates)
	case top1.Score >= m.cfg.MatchReviewThreshold:
		return m.result(house, internal.MatchReview, top1.Score, internal.ReasonFuzzy, top1.Index, candidates)
	default:
		return m.result(house, internal.MatchNotFound, top1.Score, internal.ReasonNone, -1, candidates)
	}
}

// Unmatched lists pins no house claimed with an OK match.
func (m *Matcher) Unmatched(matches []internal.PinMatch) []internal.Pin {
	claimed := map[int]struct{}{}
	for _, match := range matches {
		if match.Status != internal.MatchOK || len(match.Candidates) == 0 {
			continue
		}
		claimed[match.Candidates[0].Index] = struct{}{}
	}
	out := make([]internal.Pin, 0)
	for i, p := range m.index.Pins {
		if _, ok := claimed[i]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func (m *Matcher) result(house internal.House, status internal.MatchStatus, confidence float64, reason internal.MatchReason, pin int, candidates []internal.PinCandidate) internal.PinMatch {
	out := internal.PinMatch{
		House:      house,
		Status:     status,
		Confidence: confidence,
		Reason:     reason,
		Candidates: candidates,
	}
	if pin >= 0 {
		p := m.index.Pins[pin]
		out.Pin = &p
	}
	return out
}

func (m *Matcher) rankCandidates(query string) []internal.PinCandidate {
	queryTokens := util.Tokenize(query)
	ids := map[int]struct{}{}
	for _, token := range queryTokens {
		for id := range m.index.TokenToPins[token] {
			ids[id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		for id := range m.index.Pins {
			ids[id] = struct{}{}
		}
	}

	out := make([]internal.PinCandidate, 0, len(ids))
	for id := range ids {
		key := m.index.TitleKeyByPin[id]
		score := scoreTitle(query, key, queryTokens, util.Tokenize(key))
		out = append(out, internal.PinCandidate{Index: id, HouseName: m.index.Pins[id].HouseName, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Index < out[j].Index
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func scoreTitle(query, candidate string, queryTokens, candidateTokens []string) float64 {
	dice := util.DiceCoefficient(query, candidate)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return dice
	}

	set := map[string]struct{}{}
	for _, t := range candidateTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range queryTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	tokenScore := float64(overlap) / float64(len(queryTokens))
	return 0.65*dice + 0.35*tokenScore
}

func (m *Matcher) fixedCandidates(pins []int, score float64) []internal.PinCandidate {
	limit := len(pins)
	if limit > 5 {
		limit = 5
	}
	out := make([]internal.PinCandidate, 0, limit)
	for _, i := range pins[:limit] {
		out = append(out, internal.PinCandidate{Index: i, HouseName: m.index.Pins[i].HouseName, Score: score})
	}
	return out
}
