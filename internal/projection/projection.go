package projection

import (
	"fmt"
	"sort"
	"sync"

	"chatrag/internal/models"
)

// EventType discriminates change-feed events.
type EventType string

// Change-feed event types
const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is one change-feed entry for a message row.
type Event struct {
	Type    EventType
	Message models.Message
}

// Projection is an eventually-consistent in-memory read model of the
// messages table, kept in sync by applying change-feed events in arrival
// order. It lives entirely outside the retrieval core, which only ever reads
// the persisted store; this view exists for realtime consumers.
type Projection struct {
	mu       sync.RWMutex
	byID     map[string]models.Message
	applied  uint64
}

// New creates an empty projection
func New() *Projection {
	return &Projection{byID: make(map[string]models.Message)}
}

// Apply folds one event into the view. Inserts and updates both upsert:
// change feeds can replay and reorder, so an update arriving before its
// insert must still land. Deletes of unknown ids are ignored for the same
// reason.
func (p *Projection) Apply(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Type {
	case EventInsert, EventUpdate:
		if event.Message.ID == "" {
			return fmt.Errorf("%s event without message id", event.Type)
		}
		p.byID[event.Message.ID] = event.Message
	case EventDelete:
		if event.Message.ID == "" {
			return fmt.Errorf("delete event without message id")
		}
		delete(p.byID, event.Message.ID)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}

	p.applied++
	return nil
}

// Get returns one message from the view
func (p *Projection) Get(id string) (models.Message, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	msg, ok := p.byID[id]
	return msg, ok
}

// Channel returns the channel's messages ordered oldest first
func (p *Projection) Channel(channelID string) []models.Message {
	return p.collect(func(m models.Message) bool {
		return m.ChannelID == channelID && m.ParentID == nil
	})
}

// Thread returns a thread's replies ordered oldest first
func (p *Projection) Thread(parentID string) []models.Message {
	return p.collect(func(m models.Message) bool {
		return m.ParentID != nil && *m.ParentID == parentID
	})
}

// Len returns the number of live messages in the view
func (p *Projection) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

// Applied returns the number of events folded in so far
func (p *Projection) Applied() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.applied
}

func (p *Projection) collect(match func(models.Message) bool) []models.Message {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []models.Message
	for _, msg := range p.byID {
		if match(msg) {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InsertedAt.Equal(out[j].InsertedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].InsertedAt.Before(out[j].InsertedAt)
	})
	return out
}
