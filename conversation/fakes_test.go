package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var messiProfile = Profile{
	ID:          "messi",
	Name:        "Lionel Messi",
	Position:    "Right Winger / False 9",
	Era:         "2000s-2020s",
	Perspective: "Humble and team-focused.",
	Style:       "Speaks softly and thoughtfully.",
}

// fakeGenerator records every call and answers with fixed text.
type fakeGenerator struct {
	mu        sync.Mutex
	reply     string
	summary   string
	respErr   error
	sumErr    error
	responses []ResponseRequest
	summaries []SummaryRequest
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		reply:   "Work hard and enjoy every touch of the ball.",
		summary: "The fan asked about training and Messi shared advice.",
	}
}

func (g *fakeGenerator) GenerateResponse(_ context.Context, req ResponseRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses = append(g.responses, req)
	if g.respErr != nil {
		return "", g.respErr
	}
	return g.reply, nil
}

func (g *fakeGenerator) Summarize(_ context.Context, req SummaryRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.summaries = append(g.summaries, req)
	if g.sumErr != nil {
		return "", g.sumErr
	}
	return g.summary, nil
}

func (g *fakeGenerator) responseCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.responses)
}

func (g *fakeGenerator) summaryCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.summaries)
}

// fakeRetriever returns fixed snippets.
type fakeRetriever struct {
	mu       sync.Mutex
	snippets []string
	err      error
	queries  []string
}

func (r *fakeRetriever) RetrieveContext(_ context.Context, query string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, r.err
	}
	return r.snippets, nil
}

func (r *fakeRetriever) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

// fakeCatalog serves a fixed set of profiles.
type fakeCatalog map[string]Profile

func (c fakeCatalog) GetCharacter(_ context.Context, id string) (Profile, error) {
	p, ok := c[id]
	if !ok {
		return Profile{}, E(KindNotFound, "fakeCatalog", "legend "+id+" not found")
	}
	return p, nil
}

func (c fakeCatalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]Record
	usage   map[string]int64
	logs    []ChatLog
	loadErr error
	saveErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]Record{}, usage: map[string]int64{}}
}

func (r *fakeRepo) LoadState(_ context.Context, id string) ([]Message, string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, "", false, r.loadErr
	}
	rec, ok := r.records[id]
	if !ok || !rec.Active {
		return nil, "", false, nil
	}
	return append([]Message(nil), rec.Messages...), rec.Summary, true, nil
}

func (r *fakeRepo) SaveState(_ context.Context, id, characterID string, msgs []Message, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	rec, ok := r.records[id]
	if !ok {
		rec = Record{ID: id, CharacterID: characterID, Active: true, CreatedAt: time.Now()}
	}
	rec.Messages = append([]Message(nil), msgs...)
	rec.Summary = summary
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
	return nil
}

func (r *fakeRepo) IncrementUsage(_ context.Context, characterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[characterID]++
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, E(KindNotFound, "fakeRepo.Get", "conversation "+id+" not found")
	}
	return rec, nil
}

func (r *fakeRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || !rec.Active {
		return E(KindNotFound, "fakeRepo.Deactivate", "conversation "+id+" not found")
	}
	rec.Active = false
	r.records[id] = rec
	return nil
}

func (r *fakeRepo) Usage(_ context.Context, characterID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage[characterID], nil
}

func (r *fakeRepo) AppendChatLog(_ context.Context, log ChatLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

// history builds n alternating user/assistant messages.
func history(n int) []Message {
	msgs := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msgs = append(msgs, NewMessage(role, fmt.Sprintf("message %d", i)))
	}
	return msgs
}
