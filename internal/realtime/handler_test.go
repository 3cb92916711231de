package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/cardboard/internal/dependencies/clock"
	"github.com/mcoot/cardboard/internal/dependencies/random"
	"github.com/mcoot/cardboard/internal/dependencies/uuid"
	"github.com/mcoot/cardboard/internal/protocol"
	"github.com/mcoot/cardboard/internal/services/engine"
	"github.com/mcoot/cardboard/internal/services/policy"
	"github.com/mcoot/cardboard/internal/services/registry"
	"github.com/mcoot/cardboard/internal/services/turn"
	"github.com/mcoot/cardboard/internal/storage/memory"
	"github.com/mcoot/cardboard/internal/testutil"
)

// frame is a decoded server frame with the payload left raw
type frame struct {
	Type    string          `json:"t"`
	ReqID   string          `json:"reqId"`
	Payload json.RawMessage `json:"p"`
}

type HandlerSuite struct {
	suite.Suite
	server *httptest.Server
	cancel context.CancelFunc
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.startServer(DefaultConfig())
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
	s.cancel()
	s.server = nil
}

func (s *HandlerSuite) startServer(cfg Config) {
	if s.server != nil {
		s.server.Close()
		s.cancel()
	}

	logger := testutil.NopLogger()
	store := memory.New()
	hubs := NewHubManager(nil, logger)
	e := engine.New(engine.Deps{
		Registry:  registry.NewController(store, clock.New(), random.New(), "", logger),
		Turns:     turn.NewController(clock.New(), logger),
		Policy:    policy.New(policy.Config{BcryptCost: bcrypt.MinCost}),
		Archive:   store,
		Publisher: hubs,
		Clock:     clock.New(),
		Logger:    logger,
	})

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go e.Run(ctx)

	s.server = httptest.NewServer(NewHandler(e, hubs, uuid.New(), nil, cfg, logger))
}

// Helpers

func (s *HandlerSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *HandlerSuite) send(conn *websocket.Conn, msgType, reqID string, payload any) {
	s.Require().NoError(conn.WriteJSON(protocol.OutMsg{Type: msgType, ReqID: reqID, Payload: payload}))
}

func (s *HandlerSuite) read(conn *websocket.Conn) frame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var f frame
	s.Require().NoError(conn.ReadJSON(&f))
	return f
}

// request sends a message with a reqId and returns its ack
func (s *HandlerSuite) request(conn *websocket.Conn, msgType string, payload any, ack any) {
	reqID := msgType + "-req"
	s.send(conn, msgType, reqID, payload)
	f := s.read(conn)
	s.Require().Equal(protocol.TypeAck, f.Type, "expected ack, got %s: %s", f.Type, f.Payload)
	s.Require().Equal(reqID, f.ReqID)
	s.Require().NoError(json.Unmarshal(f.Payload, ack))
}

// barrier proves every earlier frame from conn has been handled and
// nothing else was sent back to it in the meantime
func (s *HandlerSuite) barrier(conn *websocket.Conn) {
	var ack protocol.SessionsAck
	s.request(conn, protocol.TypeGetSessions, nil, &ack)
}

func (s *HandlerSuite) joinAs(clientID, sessionID string) (*websocket.Conn, protocol.JoinAck) {
	conn := s.dial()
	s.send(conn, protocol.TypeClientInit, "", protocol.ClientInit{ClientID: clientID})
	var ack protocol.JoinAck
	s.request(conn, protocol.TypeJoinSession, protocol.JoinSession{SessionID: sessionID}, &ack)
	return conn, ack
}

func (s *HandlerSuite) createSession(name, password string) string {
	conn := s.dial()
	var ack protocol.NewSessionAck
	s.request(conn, protocol.TypeNewSession, protocol.NewSession{Name: name, HostPassword: password}, &ack)
	s.Require().Equal(protocol.StatusSessionCreated, ack.Status)
	s.Require().NotEmpty(ack.SessionID)
	return ack.SessionID
}

// Tests

func (s *HandlerSuite) TestJoinUnknownSessionAcksError() {
	conn, ack := s.joinAs("alice", "nonexistent-id")

	s.Equal(protocol.StatusError, ack.Status)
	s.Require().NotNil(ack.Session)
	s.Equal(string(registry.DefaultSessionID), ack.Session.ID)
	s.Contains(ack.Session.Participants, "alice")

	var retry protocol.JoinAck
	s.request(conn, protocol.TypeJoinSession, protocol.JoinSession{SessionID: "default"}, &retry)
	s.Equal(protocol.StatusJoined, retry.Status)
	s.Len(retry.Session.Participants, 1)
}

func (s *HandlerSuite) TestJoinBeforeClientInit() {
	conn := s.dial()

	var ack protocol.JoinAck
	s.request(conn, protocol.TypeJoinSession, protocol.JoinSession{SessionID: "default"}, &ack)

	s.Equal(protocol.StatusError, ack.Status)
	s.Nil(ack.Session)
}

func (s *HandlerSuite) TestSnapshotHidesPassword() {
	id := s.createSession("Retro", "secret")
	conn := s.dial()
	s.send(conn, protocol.TypeClientInit, "", protocol.ClientInit{ClientID: "alice"})
	s.send(conn, protocol.TypeJoinSession, "join", protocol.JoinSession{SessionID: id})

	f := s.read(conn)
	s.Equal(protocol.TypeAck, f.Type)
	s.NotContains(string(f.Payload), "secret")
	s.NotContains(string(f.Payload), "assword")
	s.Contains(string(f.Payload), `"status":"joined"`)
}

func (s *HandlerSuite) TestCardUpdateReachesOthersOnly() {
	id := s.createSession("Retro", "")
	alice, _ := s.joinAs("alice", id)
	bob, _ := s.joinAs("bob", id)

	// alice hears about bob joining
	joined := s.read(alice)
	s.Equal(protocol.TypeUpdateParticipant, joined.Type)

	s.send(alice, protocol.TypeUpdateCard, "", map[string]any{
		"id":   "c1",
		"card": map[string]any{"x": 10, "y": 20, "content": map[string]any{"title": "T"}},
	})

	f := s.read(bob)
	s.Equal(protocol.TypeUpdateCard, f.Type)
	s.JSONEq(`{"id":"c1","card":{"x":10,"y":20,"content":{"title":"T"}}}`, string(f.Payload))

	s.barrier(alice)
}

func (s *HandlerSuite) TestParticipantRenameBroadcast() {
	id := s.createSession("Retro", "")
	alice, _ := s.joinAs("alice", id)
	bob, _ := s.joinAs("bob", id)
	s.read(alice)

	s.send(bob, protocol.TypeUpdateParticipant, "", map[string]any{
		"participant": map[string]any{"name": "Bob"},
	})

	f := s.read(alice)
	s.Equal(protocol.TypeUpdateParticipant, f.Type)
	s.JSONEq(`{"id":"bob","participant":{"name":"Bob"}}`, string(f.Payload))
}

func (s *HandlerSuite) TestHostLoginAndStart() {
	id := s.createSession("Retro", "pw")
	alice, _ := s.joinAs("alice", id)
	bob, _ := s.joinAs("bob", id)
	s.read(alice)

	var login protocol.HostLoginAck
	s.request(bob, protocol.TypeHostLogin, protocol.HostLogin{Password: "wrong"}, &login)
	s.False(login.Matched)
	s.Empty(login.Error)

	s.request(alice, protocol.TypeHostLogin, protocol.HostLogin{Password: "pw"}, &login)
	s.True(login.Matched)
	hostFrame := s.read(bob)
	s.JSONEq(`{"id":"alice","participant":{"host":true}}`, string(hostFrame.Payload))

	var start protocol.StartAck
	s.request(alice, protocol.TypeStartSession, nil, &start)
	s.Empty(start.Error)
	s.NotNil(start.Timestamp)
	s.Equal([]string{"alice", "bob"}, start.TurnOrder)

	s.Equal(protocol.TypeUpdateTurns, s.read(bob).Type)
	s.Equal(protocol.TypeUpdateCurrentTurn, s.read(bob).Type)
	s.Equal(protocol.TypeUpdateSession, s.read(bob).Type)
}

func (s *HandlerSuite) TestNonHostStartAcksError() {
	id := s.createSession("Retro", "pw")
	alice, _ := s.joinAs("alice", id)

	var start protocol.StartAck
	s.request(alice, protocol.TypeStartSession, nil, &start)

	s.NotEmpty(start.Error)
	s.Nil(start.Timestamp)
}

func (s *HandlerSuite) TestUnauthorizedMutationIsSilent() {
	id := s.createSession("Retro", "pw")
	alice, _ := s.joinAs("alice", id)
	bob, _ := s.joinAs("bob", id)
	s.read(alice)

	var login protocol.HostLoginAck
	s.request(alice, protocol.TypeHostLogin, protocol.HostLogin{Password: "pw"}, &login)
	s.read(bob)
	var start protocol.StartAck
	s.request(alice, protocol.TypeStartSession, nil, &start)
	for range 3 {
		s.read(bob)
	}

	// alice holds the turn, so bob is refused
	s.send(bob, protocol.TypeUpdateCard, "", map[string]any{"id": "c1", "card": map[string]any{"x": 1}})

	s.barrier(bob)
	s.barrier(alice)
}

func (s *HandlerSuite) TestUnknownMessageType() {
	conn := s.dial()
	s.send(conn, "update_turns", "", map[string]any{"turnOrder": []string{"x"}})

	f := s.read(conn)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "unknown message type: update_turns")
}

func (s *HandlerSuite) TestInvalidJSON() {
	conn := s.dial()
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	f := s.read(conn)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "invalid json")
}

func (s *HandlerSuite) TestMalformedPayload() {
	conn := s.dial()
	s.send(conn, protocol.TypeClientInit, "", map[string]any{"clientId": 42})

	f := s.read(conn)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "invalid payload for client_init")
}

func (s *HandlerSuite) TestInvalidCardReported() {
	conn, _ := s.joinAs("alice", "default")
	s.send(conn, protocol.TypeUpdateCard, "", map[string]any{"id": "c1", "card": map[string]any{"x": "left"}})

	f := s.read(conn)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "update_card failed")
}

func (s *HandlerSuite) TestMissingCardFieldsKeepBoard() {
	alice, _ := s.joinAs("alice", "default")
	s.send(alice, protocol.TypeUpdateCard, "", map[string]any{"id": "c1", "card": map[string]any{"x": 1, "y": 2}})
	s.barrier(alice)

	s.send(alice, protocol.TypeUpdateCards, "", map[string]any{"cardz": map[string]any{"c2": map[string]any{"x": 3}}})
	f := s.read(alice)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "invalid payload for update_cards: missing field cards")

	s.send(alice, protocol.TypeUpdateCard, "", map[string]any{"id": "c1"})
	f = s.read(alice)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "invalid payload for update_card: missing field card")

	s.send(alice, protocol.TypeUpdateCards, "", nil)
	f = s.read(alice)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "missing field cards")

	_, ack := s.joinAs("bob", "default")
	s.Require().NotNil(ack.Session)
	s.Contains(ack.Session.Cards, "c1")
	s.NotContains(ack.Session.Cards, "c2")
}

func (s *HandlerSuite) TestExplicitNullDeletes() {
	alice, _ := s.joinAs("alice", "default")
	s.send(alice, protocol.TypeUpdateCard, "", map[string]any{"id": "c1", "card": map[string]any{"x": 1}})
	s.send(alice, protocol.TypeUpdateCard, "", map[string]any{"id": "c2", "card": map[string]any{"x": 2}})
	s.send(alice, protocol.TypeUpdateCard, "", map[string]any{"id": "c1", "card": nil})
	s.barrier(alice)

	_, ack := s.joinAs("bob", "default")
	s.Require().NotNil(ack.Session)
	s.NotContains(ack.Session.Cards, "c1")
	s.Contains(ack.Session.Cards, "c2")
	s.read(alice)

	s.send(alice, protocol.TypeUpdateCards, "", map[string]any{"cards": nil})
	s.barrier(alice)

	_, ack = s.joinAs("carol", "default")
	s.Require().NotNil(ack.Session)
	s.Empty(ack.Session.Cards)
}

func (s *HandlerSuite) TestTurnIndexRequiredAndAdvance() {
	id := s.createSession("Retro", "pw")
	alice, _ := s.joinAs("alice", id)
	bob, _ := s.joinAs("bob", id)
	s.read(alice)

	var login protocol.HostLoginAck
	s.request(alice, protocol.TypeHostLogin, protocol.HostLogin{Password: "pw"}, &login)
	s.Require().True(login.Matched)
	s.read(bob)
	var start protocol.StartAck
	s.request(alice, protocol.TypeStartSession, nil, &start)
	s.Require().Empty(start.Error)
	for range 3 {
		s.read(bob)
	}

	s.send(alice, protocol.TypeUpdateCurrentTurn, "", map[string]any{"idx": 1})
	f := s.read(alice)
	s.Equal(protocol.TypeServerMessage, f.Type)
	s.Contains(string(f.Payload), "invalid payload for update_current_turn: missing field index")
	s.barrier(bob)

	// the turn is still at 0, so advancing lands on 1
	var adv protocol.AdvanceTurnAck
	s.request(alice, protocol.TypeAdvanceTurn, nil, &adv)
	s.Empty(adv.Error)
	s.Require().NotNil(adv.Index)
	s.Equal(1, *adv.Index)

	f = s.read(bob)
	s.Equal(protocol.TypeUpdateCurrentTurn, f.Type)
	s.JSONEq(`{"index":1}`, string(f.Payload))
}

func (s *HandlerSuite) TestAdvanceTurnWithoutTurnOrder() {
	conn, _ := s.joinAs("alice", "default")

	var adv protocol.AdvanceTurnAck
	s.request(conn, protocol.TypeAdvanceTurn, nil, &adv)

	s.NotEmpty(adv.Error)
	s.Nil(adv.Index)
}

func (s *HandlerSuite) TestRateLimit() {
	cfg := DefaultConfig()
	cfg.MessageRate = 0.001
	cfg.MessageBurst = 1
	s.startServer(cfg)
	conn := s.dial()

	s.send(conn, "nope", "", nil)
	s.send(conn, "nope", "", nil)

	first := s.read(conn)
	s.Contains(string(first.Payload), "unknown message type")
	second := s.read(conn)
	s.Equal(protocol.TypeServerMessage, second.Type)
	s.Contains(string(second.Payload), "rate limit exceeded")
}

func (s *HandlerSuite) TestListSessions() {
	s.createSession("One", "")
	s.createSession("Two", "")
	conn := s.dial()

	var ack protocol.SessionsAck
	s.request(conn, protocol.TypeGetSessions, nil, &ack)

	s.Len(ack.Sessions, 2)
	names := []string{ack.Sessions[0].Name, ack.Sessions[1].Name}
	s.ElementsMatch([]string{"One", "Two"}, names)
}
