package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/email"
	emailmocks "github.com/yigit/careernest/internal/pkg/email/mocks"
	"github.com/yigit/careernest/internal/pkg/metrics"
)

type TokenServiceSuite struct {
	suite.Suite
	ctx    context.Context
	db     *memDB
	clock  *fixedClock
	sender *emailmocks.MockSender
	svc    *TokenService
	userID uuid.UUID
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

func (s *TokenServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.db = newMemDB()
	s.clock = &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s.sender = emailmocks.NewMockSender(ctrl)
	s.userID = s.db.addProfile(models.RoleStudent, models.StatusPendingVerification, "Asha Verma")

	s.svc = NewTokenService(fakeTokens{s.db}, fakeProfiles{s.db}, fakeColleges{s.db}, s.db, s.sender,
		TokenConfig{AppURL: "https://careernest.test/", AppName: "CareerNest"},
		s.clock.Now, metrics.Nop{}, zerolog.Nop())
}

func (s *TokenServiceSuite) issue() models.VerificationToken {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	s.Require().NoError(s.svc.Issue(s.ctx, s.userID, "asha@dcrustm.org"))
	tokens := s.db.tokensFor(s.userID)
	s.Require().Len(tokens, 1)
	return tokens[0]
}

func (s *TokenServiceSuite) TestIssue_StoresTokenThenEmailsLink() {
	var sent email.Message
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg email.Message) error {
		// the row must exist before the send is attempted
		s.Len(s.db.tokensFor(s.userID), 1)
		sent = msg
		return nil
	})

	s.Require().NoError(s.svc.Issue(s.ctx, s.userID, " Asha@DCRUSTM.org "))

	tokens := s.db.tokensFor(s.userID)
	s.Require().Len(tokens, 1)
	tok := tokens[0]
	s.Equal("asha@dcrustm.org", tok.OfficialEmail)
	s.Equal(s.clock.now.Add(time.Hour), tok.ExpiresAt)
	_, err := uuid.Parse(tok.Token)
	s.NoError(err)

	s.Equal("asha@dcrustm.org", sent.To)
	s.Equal(email.KindCollegeVerification, sent.Kind)
	s.Contains(sent.HTML, "https://careernest.test/auth/verify-college-email?token="+tok.Token)
}

func (s *TokenServiceSuite) TestIssue_ReplacesPreviousToken() {
	first := s.issue()
	s.clock.Advance(time.Minute)
	second := s.issue()

	s.NotEqual(first.Token, second.Token)
	_, stillThere := s.db.tokens[first.Token]
	s.False(stillThere)
}

func (s *TokenServiceSuite) TestIssue_SendFailureKeepsRow() {
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp: 421 service unavailable"))

	err := s.svc.Issue(s.ctx, s.userID, "asha@dcrustm.org")
	s.ErrorIs(err, apperrors.ErrEmailDelivery)
	s.Len(s.db.tokensFor(s.userID), 1)
}

func (s *TokenServiceSuite) TestIssue_MissingFields() {
	s.ErrorIs(s.svc.Issue(s.ctx, uuid.Nil, "asha@dcrustm.org"), apperrors.ErrMissingVerificationFields)
	s.ErrorIs(s.svc.Issue(s.ctx, s.userID, "  "), apperrors.ErrMissingVerificationFields)
	s.ErrorIs(s.svc.Issue(s.ctx, s.userID, "not-an-email"), apperrors.ErrValidationFailed)
	s.Empty(s.db.tokens)
}

func (s *TokenServiceSuite) TestIssue_RejectsProfilesNotAwaitingEmailVerification() {
	cases := []struct {
		name   string
		role   models.Role
		status models.ProfileStatus
	}{
		{"faculty awaiting admin review", models.RoleFaculty, models.StatusPendingAdminApproval},
		{"faculty not yet submitted", models.RoleFaculty, models.StatusPendingVerification},
		{"alumni rejected", models.RoleAlumni, models.StatusRejected},
		{"student already approved", models.RoleStudent, models.StatusApproved},
		{"student awaiting admin review", models.RoleStudent, models.StatusPendingAdminApproval},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			userID := s.db.addProfile(tc.role, tc.status, "Meera Rao")

			err := s.svc.Issue(s.ctx, userID, "meera@dcrustm.org")
			s.ErrorIs(err, apperrors.ErrVerificationNotAllowed)
			s.Empty(s.db.tokensFor(userID))
			s.Equal(tc.status, s.db.profiles[userID].Status)
		})
	}
}

func (s *TokenServiceSuite) TestIssue_UnknownProfile() {
	s.ErrorIs(s.svc.Issue(s.ctx, uuid.New(), "asha@dcrustm.org"), apperrors.ErrProfileNotFound)
	s.Empty(s.db.tokens)
}

func (s *TokenServiceSuite) TestIssue_EnforcesCollegeDomain() {
	s.db.addCollege(1, "DCRUST Murthal", "dcrustm.org")
	collegeID := int64(1)
	p := s.db.profiles[s.userID]
	p.CollegeID = &collegeID
	s.db.profiles[s.userID] = p

	err := s.svc.Issue(s.ctx, s.userID, "asha@gmail.com")
	s.ErrorIs(err, apperrors.ErrEmailDomainMismatch)
	s.Empty(s.db.tokens)

	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	s.NoError(s.svc.Issue(s.ctx, s.userID, "asha@cse.dcrustm.org"))
	s.Len(s.db.tokensFor(s.userID), 1)
}

func (s *TokenServiceSuite) TestIssue_CollegeWithoutDomainAcceptsAnyAddress() {
	s.db.addCollege(2, "Open University", "")
	collegeID := int64(2)
	p := s.db.profiles[s.userID]
	p.CollegeID = &collegeID
	s.db.profiles[s.userID] = p

	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	s.NoError(s.svc.Issue(s.ctx, s.userID, "asha@gmail.com"))
}

func (s *TokenServiceSuite) TestRedeem_ApprovesProfileOnce() {
	tok := s.issue()
	s.clock.Advance(30 * time.Minute)

	outcome, err := s.svc.Redeem(s.ctx, tok.Token)
	s.Require().NoError(err)
	s.Equal(RedeemApproved, outcome)
	s.Equal("/home", outcome.Redirect())

	p := s.db.profiles[s.userID]
	s.Equal(models.StatusApproved, p.Status)
	s.Require().NotNil(p.OfficialEmail)
	s.Equal("asha@dcrustm.org", *p.OfficialEmail)
	s.Empty(s.db.tokens)

	outcome, err = s.svc.Redeem(s.ctx, tok.Token)
	s.ErrorIs(err, apperrors.ErrTokenNotFound)
	s.Equal(RedeemNotFound, outcome)
	s.Equal("/login?error=Invalid+or+expired+token.", outcome.Redirect())
}

func (s *TokenServiceSuite) TestRedeem_ExpiredTokenIsRemoved() {
	tok := s.issue()
	s.clock.Advance(time.Hour)

	outcome, err := s.svc.Redeem(s.ctx, tok.Token)
	s.ErrorIs(err, apperrors.ErrTokenExpired)
	s.Equal(RedeemExpired, outcome)
	s.True(strings.Contains(outcome.Redirect(), "expired"))

	s.Equal(models.StatusPendingVerification, s.db.profiles[s.userID].Status)
	s.Empty(s.db.tokens)

	outcome, _ = s.svc.Redeem(s.ctx, tok.Token)
	s.Equal(RedeemNotFound, outcome)
}

func (s *TokenServiceSuite) TestRedeem_ProfileUpdateFailureRollsBack() {
	tok := s.issue()
	s.db.failUpdate = errors.New("connection reset")

	outcome, err := s.svc.Redeem(s.ctx, tok.Token)
	s.Error(err)
	s.Equal(RedeemUpdateFailed, outcome)
	s.Equal("/login?error=Failed+to+update+your+profile.", outcome.Redirect())
	s.Equal(models.StatusPendingVerification, s.db.profiles[s.userID].Status)
	s.Contains(s.db.tokens, tok.Token)

	// the link still works once the database recovers
	outcome, err = s.svc.Redeem(s.ctx, tok.Token)
	s.NoError(err)
	s.Equal(RedeemApproved, outcome)
}

func (s *TokenServiceSuite) TestRedeem_ProfileMovedOnDoesNotApprove() {
	tok := s.issue()
	p := s.db.profiles[s.userID]
	p.Status = models.StatusPendingAdminApproval
	s.db.profiles[s.userID] = p

	outcome, err := s.svc.Redeem(s.ctx, tok.Token)
	s.ErrorIs(err, apperrors.ErrInvalidStatusTransition)
	s.Equal(RedeemUpdateFailed, outcome)
	s.Equal(models.StatusPendingAdminApproval, s.db.profiles[s.userID].Status)
	s.Nil(s.db.profiles[s.userID].OfficialEmail)
	s.Contains(s.db.tokens, tok.Token)
}

func (s *TokenServiceSuite) TestRedeem_EmptyToken() {
	outcome, err := s.svc.Redeem(s.ctx, "  ")
	s.ErrorIs(err, apperrors.ErrVerificationLinkInvalid)
	s.Equal("/login?error=Invalid+verification+link.", outcome.Redirect())
}

func (s *TokenServiceSuite) TestPurgeExpired() {
	s.issue()
	other := s.db.addProfile(models.RoleStudent, models.StatusPendingVerification, "Ravi Kumar")
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	s.clock.Advance(30 * time.Minute)
	s.Require().NoError(s.svc.Issue(s.ctx, other, "ravi@dcrustm.org"))

	s.clock.Advance(40 * time.Minute)
	n, err := s.svc.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Len(s.db.tokensFor(other), 1)
}
