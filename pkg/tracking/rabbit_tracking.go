package tracking

import (
	"net/http"

	"github.com/matst80/slask-refine/pkg/messaging"
	"github.com/matst80/slask-refine/pkg/state"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	eventSession    uint16 = 0
	eventSearch     uint16 = 1
	eventRefinement uint16 = 6
)

type RabbitTracking struct {
	country    string
	connection *amqp.Connection
}

func NewRabbitTracking(url, country string) (*RabbitTracking, error) {
	ret := RabbitTracking{
		country: country,
	}
	if err := ret.connect(url); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	t.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return messaging.DefineTopic(ch, messaging.GlobalPrefix, messaging.Tracking)
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

func (t *RabbitTracking) send(data any) error {
	return messaging.SendChange(t.connection, messaging.GlobalPrefix, messaging.Tracking, data)
}

type BaseEvent struct {
	SessionId string `json:"session_id"`
	Country   string `json:"country,omitempty"`
	Context   string `json:"context,omitempty"`
	Event     uint16 `json:"event"`
}

func (t *RabbitTracking) base(sessionId string, event uint16) *BaseEvent {
	return &BaseEvent{Event: event, SessionId: sessionId, Country: t.country, Context: "b2c"}
}

type SessionEvent struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func newSessionEvent(base *BaseEvent, r *http.Request) *SessionEvent {
	return &SessionEvent{
		BaseEvent:    base,
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           clientIp(r),
		PragmaHeader: r.Header.Get("Pragma"),
	}
}

func (t *RabbitTracking) TrackSession(sessionId string, r *http.Request) error {
	return t.send(newSessionEvent(t.base(sessionId, eventSession), r))
}

type RefinementEventData struct {
	*BaseEvent
	RefinementEvent
}

func (t *RabbitTracking) TrackRefinement(sessionId string, event RefinementEvent) error {
	return t.send(&RefinementEventData{
		BaseEvent:       t.base(sessionId, eventRefinement),
		RefinementEvent: event,
	})
}

type SearchEventData struct {
	*BaseEvent
	NumberOfResults int      `json:"noi"`
	Query           string   `json:"query"`
	Page            int      `json:"page"`
	Refinements     []string `json:"refinements,omitempty"`
}

func newSearchEvent(base *BaseEvent, params *state.SearchParameters, nbHits int) *SearchEventData {
	return &SearchEventData{
		BaseEvent:       base,
		NumberOfResults: nbHits,
		Query:           params.Query,
		Page:            params.Page,
		Refinements:     params.Encode()["r"],
	}
}

func (t *RabbitTracking) TrackSearch(sessionId string, params *state.SearchParameters, nbHits int) error {
	return t.send(newSearchEvent(t.base(sessionId, eventSearch), params, nbHits))
}
