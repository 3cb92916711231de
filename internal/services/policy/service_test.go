package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/cardboard/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	session *model.Session
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(Config{BcryptCost: bcrypt.MinCost})

	hash, err := s.service.HashPassword("s3cret")
	s.Require().NoError(err)

	s.session = model.NewSession("abcd2345", "Retro", hash, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	for _, id := range []model.ParticipantID{"a", "b", "c"} {
		s.session.AddParticipant(&model.Participant{ID: id, Name: string(id)})
	}
}

func (s *ServiceSuite) startWithTurn(index int) {
	s.session.State = model.SessionStateActive
	s.session.TurnOrder = append([]model.ParticipantID{}, s.session.JoinOrder...)
	s.session.CurrentTurn = index
}

// Password tests

func (s *ServiceSuite) TestHashIsNotPlaintext() {
	s.NotEqual([]byte("s3cret"), s.session.HostPasswordHash)
	s.True(s.service.VerifyPassword(s.session.HostPasswordHash, "s3cret"))
	s.False(s.service.VerifyPassword(s.session.HostPasswordHash, "wrong"))
}

func (s *ServiceSuite) TestEmptyPasswordHash() {
	hash, err := s.service.HashPassword("")
	s.Require().NoError(err)

	s.Empty(hash)
	s.True(s.service.VerifyPassword(hash, ""))
	s.False(s.service.VerifyPassword(hash, "anything"))
}

func (s *ServiceSuite) TestLongPassword() {
	long := strings.Repeat("p", 80)
	hash, err := s.service.HashPassword(long)
	s.Require().NoError(err)

	s.True(s.service.VerifyPassword(hash, long))
	// differs only past byte 72
	s.False(s.service.VerifyPassword(hash, strings.Repeat("p", 79)+"q"))
	s.False(s.service.VerifyPassword(hash, long[:72]))
}

// Host tests

func (s *ServiceSuite) TestGrantHost() {
	s.Require().NoError(s.service.GrantHost(s.session, "a"))

	s.True(s.session.Participants["a"].Host)
	s.False(s.session.Participants["b"].Host)
}

func (s *ServiceSuite) TestGrantHostUnknownParticipant() {
	s.ErrorIs(s.service.GrantHost(s.session, "stranger"), model.ErrNotInSession)
}

// Card mutation tests

func (s *ServiceSuite) TestFreeForAllBeforeStart() {
	for _, id := range []model.ParticipantID{"a", "b", "c"} {
		s.NoError(s.service.CanMutateCards(s.session, id))
	}
}

func (s *ServiceSuite) TestOnlyTurnHolderMutatesWhenActive() {
	s.startWithTurn(1)

	s.NoError(s.service.CanMutateCards(s.session, "b"))
	s.ErrorIs(s.service.CanMutateCards(s.session, "a"), model.ErrNotYourTurn)
	s.ErrorIs(s.service.CanMutateCards(s.session, "c"), model.ErrNotYourTurn)
}

func (s *ServiceSuite) TestHostMutatesOutOfTurn() {
	s.startWithTurn(1)
	s.session.Participants["c"].Host = true

	s.NoError(s.service.CanMutateCards(s.session, "c"))
}

func (s *ServiceSuite) TestStoppedSessionOnlyHostMutates() {
	s.startWithTurn(0)
	s.session.State = model.SessionStateStopped
	s.session.Participants["c"].Host = true

	s.ErrorIs(s.service.CanMutateCards(s.session, "a"), model.ErrNotYourTurn)
	s.NoError(s.service.CanMutateCards(s.session, "c"))
}

func (s *ServiceSuite) TestUnknownParticipantCannotMutate() {
	s.ErrorIs(s.service.CanMutateCards(s.session, "stranger"), model.ErrNotInSession)
}

// Session control tests

func (s *ServiceSuite) TestControlRequiresHost() {
	s.ErrorIs(s.service.CanControlSession(s.session, "a"), model.ErrNotHost)

	s.session.Participants["a"].Host = true
	s.NoError(s.service.CanControlSession(s.session, "a"))
}

func (s *ServiceSuite) TestAdvanceTurn() {
	s.startWithTurn(0)
	s.session.Participants["c"].Host = true

	s.NoError(s.service.CanAdvanceTurn(s.session, "a"))
	s.NoError(s.service.CanAdvanceTurn(s.session, "c"))
	s.ErrorIs(s.service.CanAdvanceTurn(s.session, "b"), model.ErrNotYourTurn)
	s.ErrorIs(s.service.CanAdvanceTurn(s.session, "stranger"), model.ErrNotInSession)
}
