package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yigit/careernest/internal/app/controllers"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/app/services"
	"github.com/yigit/careernest/internal/middleware"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/auth"
)

// --- stubs ---

type stubAuth struct {
	jwt        *auth.JWTService
	accounts   map[string]*models.Account
	codes      map[string]uuid.UUID
	signups    int
	passwordOf map[uuid.UUID]string
}

func (s *stubAuth) signIn(a *models.Account, next string) (*services.AuthResult, error) {
	session, err := s.jwt.IssueSession(a)
	if err != nil {
		return nil, err
	}
	return &services.AuthResult{Account: a, Session: session, Next: next}, nil
}

func (s *stubAuth) Signup(_ context.Context, in services.SignupInput) (*services.AuthResult, error) {
	s.signups++
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("role", "invalid role")
	}
	a := &models.Account{ID: uuid.New(), Email: in.Email, Role: role, FullName: in.FullName}
	s.accounts[in.Email] = a
	return s.signIn(a, services.PathIDVerification)
}

func (s *stubAuth) Login(_ context.Context, email, password string) (*services.AuthResult, error) {
	a, ok := s.accounts[email]
	if !ok || password != "secret123" {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.signIn(a, services.PathHome)
}

func (s *stubAuth) ForgotPassword(context.Context, string, string) error {
	return nil
}

func (s *stubAuth) ExchangeCode(_ context.Context, code string) (*services.AuthResult, error) {
	id, ok := s.codes[code]
	if !ok {
		return nil, apperrors.ErrInvalidAuthCode
	}
	delete(s.codes, code)
	for _, a := range s.accounts {
		if a.ID == id {
			return s.signIn(a, services.PathHome)
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *stubAuth) UpdatePassword(_ context.Context, userID uuid.UUID, password, _ string) error {
	s.passwordOf[userID] = password
	return nil
}

type stubTokens struct {
	issued   map[uuid.UUID]string
	issueErr error
	outcome  services.RedeemOutcome
}

func (s *stubTokens) Issue(_ context.Context, userID uuid.UUID, officialEmail string) error {
	if s.issueErr != nil {
		return s.issueErr
	}
	s.issued[userID] = officialEmail
	return nil
}

func (s *stubTokens) Redeem(_ context.Context, token string) (services.RedeemOutcome, error) {
	if token == "" {
		return services.RedeemInvalidLink, apperrors.ErrVerificationLinkInvalid
	}
	return s.outcome, nil
}

type stubSubmitter struct {
	last    services.Submission
	docName string
	docBody string
	err     error
}

func (s *stubSubmitter) Submit(_ context.Context, _ uuid.UUID, role models.Role, sub services.Submission) (*services.SubmitResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.last = sub
	var doc *services.Document
	switch v := sub.(type) {
	case services.FacultySubmission:
		doc = v.IDProof
	case services.AlumniSubmission:
		doc = v.IDProof
	}
	if doc != nil {
		s.docName = doc.Filename
		body, _ := io.ReadAll(doc.Body)
		s.docBody = string(body)
	}
	if services.RequiresDocument(role) {
		return &services.SubmitResult{Status: models.StatusPendingAdminApproval}, nil
	}
	return &services.SubmitResult{Status: models.StatusPendingVerification, EmailSent: true}, nil
}

// stubGate decides like the real gate over an in-memory profile table
type stubGate struct {
	profiles map[uuid.UUID]*models.Profile
}

func (g *stubGate) Check(_ context.Context, userID uuid.UUID) services.GateDecision {
	if userID == uuid.Nil {
		return services.GateDecision{Redirect: services.PathLogin}
	}
	p, ok := g.profiles[userID]
	if !ok {
		return services.DecideGate(nil, apperrors.ErrProfileNotFound)
	}
	return services.DecideGate(p, nil)
}

type stubPages struct {
	gate *stubGate
}

func (s *stubPages) Home(viewer *models.Profile, tab string) *dto.HomeResponse {
	return &dto.HomeResponse{Viewer: dto.ViewerSummary{ID: viewer.ID, FullName: viewer.FullName}, SelectedTab: tab}
}

func (s *stubPages) Network(context.Context, uuid.UUID, string) (*dto.NetworkResponse, error) {
	return &dto.NetworkResponse{}, nil
}

func (s *stubPages) Messages() *dto.MessagesResponse {
	return &dto.MessagesResponse{}
}

func (s *stubPages) Own(_ context.Context, id uuid.UUID) (*dto.ProfileResponse, error) {
	return s.ByID(context.Background(), id)
}

func (s *stubPages) ByID(_ context.Context, id uuid.UUID) (*dto.ProfileResponse, error) {
	p, ok := s.gate.profiles[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Profile not found")
	}
	return &dto.ProfileResponse{Profile: &models.ProfileView{Profile: *p}}, nil
}

type stubLookups struct {
	onboarding []*models.CollegeOnboardingRequest
}

func (s *stubLookups) Colleges(context.Context, string) ([]models.College, error) {
	return []models.College{{ID: 1, Name: "DCRUST Murthal"}}, nil
}

func (s *stubLookups) Departments(_ context.Context, collegeID *int64) ([]models.Department, error) {
	return []models.Department{{ID: 10, Name: "Computer Science", CollegeID: collegeID}}, nil
}

func (s *stubLookups) RequestOnboarding(_ context.Context, req *models.CollegeOnboardingRequest) error {
	req.ID = int64(len(s.onboarding) + 1)
	s.onboarding = append(s.onboarding, req)
	return nil
}

type stubReviewer struct {
	gate *stubGate
}

func (s *stubReviewer) ListPending(context.Context, int, int) (*dto.PendingProfilesResponse, error) {
	return &dto.PendingProfilesResponse{Profiles: []models.ProfileView{}}, nil
}

func (s *stubReviewer) Approve(_ context.Context, id uuid.UUID) error {
	return s.transition(id, models.StatusApproved)
}

func (s *stubReviewer) Reject(_ context.Context, id uuid.UUID) error {
	return s.transition(id, models.StatusRejected)
}

func (s *stubReviewer) transition(id uuid.UUID, to models.ProfileStatus) error {
	p, ok := s.gate.profiles[id]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	if p.Status != models.StatusPendingAdminApproval {
		return apperrors.ErrInvalidStatusTransition
	}
	p.Status = to
	return nil
}

// --- suite ---

type RouterSuite struct {
	suite.Suite
	router  *gin.Engine
	jwt     *auth.JWTService
	limiter *middleware.RateLimiter

	auth      *stubAuth
	tokens    *stubTokens
	submitter *stubSubmitter
	gate      *stubGate
	lookups   *stubLookups
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.jwt = auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "0123456789abcdef0123456789abcdef",
		SessionDuration: time.Hour,
		TokenIssuer:     "careernest.test",
	})
	s.auth = &stubAuth{
		jwt:        s.jwt,
		accounts:   map[string]*models.Account{},
		codes:      map[string]uuid.UUID{},
		passwordOf: map[uuid.UUID]string{},
	}
	s.tokens = &stubTokens{issued: map[uuid.UUID]string{}, outcome: services.RedeemApproved}
	s.submitter = &stubSubmitter{}
	s.gate = &stubGate{profiles: map[uuid.UUID]*models.Profile{}}
	s.lookups = &stubLookups{}
	s.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{RequestsPerMinute: 60, Burst: 3})

	session := middleware.NewSessionAuth(s.jwt, middleware.CookieConfig{})
	nop := zerolog.Nop()

	s.router = gin.New()
	SetupRouter(s.router, Controllers{
		Auth:         controllers.NewAuthController(s.auth, session, nop),
		Verification: controllers.NewVerificationController(s.submitter, s.tokens, s.gate, s.lookups, 1<<10, nop),
		Function:     controllers.NewFunctionController(s.tokens, nop),
		Pages:        controllers.NewPageController(&stubPages{gate: s.gate}, nop),
		Lookup:       controllers.NewLookupController(s.lookups, nop),
		Admin:        controllers.NewAdminController(&stubReviewer{gate: s.gate}, nop),
	}, Middleware{
		Session:     session,
		Gate:        s.gate,
		RateLimiter: s.limiter,
	})
}

func (s *RouterSuite) TearDownTest() {
	s.limiter.Stop()
}

// user creates an account with a profile in status and returns its bearer token
func (s *RouterSuite) user(role models.Role, status models.ProfileStatus, admin bool) (uuid.UUID, string) {
	a := &models.Account{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Role: role, IsAdmin: admin, FullName: "Asha Verma"}
	s.auth.accounts[a.Email] = a
	s.gate.profiles[a.ID] = &models.Profile{ID: a.ID, FullName: a.FullName, Role: role, Status: status}

	session, err := s.jwt.IssueSession(a)
	s.Require().NoError(err)
	return a.ID, session.Token
}

func (s *RouterSuite) do(method, target string, body io.Reader, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func (s *RouterSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

// --- auth ---

func (s *RouterSuite) TestSignup_SetsSessionAndPointsToVerification() {
	rec := s.do(http.MethodPost, "/auth/signup", jsonBody(map[string]interface{}{
		"full_name":        "Asha Verma",
		"role":             "Student",
		"email":            "asha@gmail.com",
		"password":         "secret123",
		"confirm_password": "secret123",
	}), "")

	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Contains(rec.Body.String(), `"next":"/id-verification"`)

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(middleware.DefaultSessionCookie, cookies[0].Name)
	s.True(cookies[0].HttpOnly)
}

func (s *RouterSuite) TestSignup_PasswordMismatchHasNoSideEffect() {
	rec := s.do(http.MethodPost, "/auth/signup", jsonBody(map[string]interface{}{
		"full_name":        "Asha Verma",
		"role":             "Student",
		"email":            "asha@gmail.com",
		"password":         "secret123",
		"confirm_password": "secret124",
	}), "")

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(dto.ErrorCodeValidationFailed), s.errorCode(rec))
	s.Zero(s.auth.signups)
	s.Empty(rec.Result().Cookies())
}

func (s *RouterSuite) TestLogin_BadCredentials() {
	rec := s.do(http.MethodPost, "/auth/login", jsonBody(map[string]string{"email": "nobody@example.com", "password": "x"}), "")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(dto.ErrorCodeInvalidCredentials), s.errorCode(rec))
}

func (s *RouterSuite) TestLogin_RateLimited() {
	body := func() io.Reader {
		return jsonBody(map[string]string{"email": "nobody@example.com", "password": "x"})
	}
	for i := 0; i < 3; i++ {
		s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/auth/login", body(), "").Code)
	}

	rec := s.do(http.MethodPost, "/auth/login", body(), "")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal(string(dto.ErrorCodeRateLimited), s.errorCode(rec))
}

func (s *RouterSuite) TestForgotPassword_AlwaysOK() {
	rec := s.do(http.MethodPost, "/auth/forgot-password", jsonBody(map[string]string{"email": "unknown@example.com"}), "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestCallback() {
	id, _ := s.user(models.RoleStudent, models.StatusApproved, false)

	s.Run("bad code", func() {
		rec := s.do(http.MethodGet, "/auth/callback?code=nope", nil, "")
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/login?error=auth_failed", rec.Header().Get("Location"))
		s.Empty(rec.Result().Cookies())
	})

	s.Run("external next falls back to home", func() {
		s.auth.codes["c1"] = id
		rec := s.do(http.MethodGet, "/auth/callback?code=c1&next=https://evil.example.com", nil, "")
		s.Equal(http.StatusFound, rec.Code)
		s.Equal(services.PathHome, rec.Header().Get("Location"))
		s.Len(rec.Result().Cookies(), 1)
	})

	s.Run("local next is kept", func() {
		s.auth.codes["c2"] = id
		rec := s.do(http.MethodGet, "/auth/callback?code=c2&next=/update-password", nil, "")
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/update-password", rec.Header().Get("Location"))
	})

	s.Run("code is single use", func() {
		rec := s.do(http.MethodGet, "/auth/callback?code=c2", nil, "")
		s.Equal("/login?error=auth_failed", rec.Header().Get("Location"))
	})
}

func (s *RouterSuite) TestUpdatePassword_RequiresSession() {
	body := map[string]string{"password": "newpass123", "confirm_password": "newpass123"}

	rec := s.do(http.MethodPost, "/auth/update-password", jsonBody(body), "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	id, token := s.user(models.RoleStudent, models.StatusApproved, false)
	rec = s.do(http.MethodPost, "/auth/update-password", jsonBody(body), token)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("newpass123", s.auth.passwordOf[id])
}

func (s *RouterSuite) TestVerifyCollegeEmail_RedirectsByOutcome() {
	rec := s.do(http.MethodGet, "/auth/verify-college-email?token=abc", nil, "")
	s.Equal(http.StatusFound, rec.Code)
	s.Equal(services.PathHome, rec.Header().Get("Location"))

	s.tokens.outcome = services.RedeemExpired
	rec = s.do(http.MethodGet, "/auth/verify-college-email?token=abc", nil, "")
	s.Equal(services.LoginWithError("Verification link has expired."), rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/auth/verify-college-email", nil, "")
	s.Equal(services.LoginWithError("Invalid verification link."), rec.Header().Get("Location"))
}

// --- email function ---

func (s *RouterSuite) TestEmailFunction_Preflight() {
	rec := s.do(http.MethodOptions, "/functions/v1/student-verify-email", nil, "",
		"Origin", "https://careernest.example.com",
		"Access-Control-Request-Method", "POST",
		"Access-Control-Request-Headers", "authorization, content-type",
	)

	s.Less(rec.Code, 300)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	s.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")

	allowed := strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"authorization", "x-client-info", "apikey", "content-type"} {
		s.Contains(allowed, h)
	}
}

func (s *RouterSuite) TestEmailFunction() {
	id, token := s.user(models.RoleStudent, models.StatusPendingVerification, false)

	s.Run("requires a session", func() {
		rec := s.do(http.MethodPost, "/functions/v1/student-verify-email",
			jsonBody(map[string]string{"user_id": id.String(), "official_email": "asha@dcrustm.org"}), "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("user id must match the caller", func() {
		rec := s.do(http.MethodPost, "/functions/v1/student-verify-email",
			jsonBody(map[string]string{"user_id": uuid.NewString(), "official_email": "asha@dcrustm.org"}), token)
		s.Equal(http.StatusForbidden, rec.Code)
		s.Contains(rec.Body.String(), `"error"`)
		s.Empty(s.tokens.issued)
	})

	s.Run("missing fields", func() {
		rec := s.do(http.MethodPost, "/functions/v1/student-verify-email",
			jsonBody(map[string]string{"user_id": id.String()}), token)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.JSONEq(`{"error":"user_id and official_email are required"}`, rec.Body.String())
	})

	s.Run("success", func() {
		rec := s.do(http.MethodPost, "/functions/v1/student-verify-email",
			jsonBody(map[string]string{"user_id": id.String(), "official_email": "asha@dcrustm.org"}), token)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"success":true}`, rec.Body.String())
		s.Equal("asha@dcrustm.org", s.tokens.issued[id])
	})
}

func (s *RouterSuite) TestEmailFunction_DeliveryFailure() {
	id, token := s.user(models.RoleStudent, models.StatusPendingVerification, false)
	s.tokens.issueErr = fmt.Errorf("%w: %v", apperrors.ErrEmailDelivery, "smtp down")

	rec := s.do(http.MethodPost, "/functions/v1/student-verify-email",
		jsonBody(map[string]string{"user_id": id.String(), "official_email": "asha@dcrustm.org"}), token)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.JSONEq(`{"error":"Failed to send verification email"}`, rec.Body.String())
}

func (s *RouterSuite) TestEmailFunction_IneligibleProfile() {
	id, token := s.user(models.RoleFaculty, models.StatusPendingAdminApproval, false)
	s.tokens.issueErr = fmt.Errorf("%w: faculty profile is pending_admin_approval", apperrors.ErrVerificationNotAllowed)

	rec := s.do(http.MethodPost, "/functions/v1/student-verify-email",
		jsonBody(map[string]string{"user_id": id.String(), "official_email": "me@dcrustm.org"}), token)
	s.Equal(http.StatusConflict, rec.Code)
	s.JSONEq(`{"error":"Email verification is not available for this profile"}`, rec.Body.String())
	s.Empty(s.tokens.issued)
}

func (s *RouterSuite) TestEmailFunction_DomainMismatch() {
	id, token := s.user(models.RoleStudent, models.StatusPendingVerification, false)
	s.tokens.issueErr = apperrors.NewCustomError(apperrors.ErrEmailDomainMismatch, "Official email must belong to dcrustm.org")

	rec := s.do(http.MethodPost, "/functions/v1/student-verify-email",
		jsonBody(map[string]string{"user_id": id.String(), "official_email": "asha@gmail.com"}), token)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"error":"Official email must belong to dcrustm.org"}`, rec.Body.String())
	s.Empty(s.tokens.issued)
}

// --- gate and pages ---

func (s *RouterSuite) TestGate_RedirectsByStatus() {
	tests := []struct {
		status   models.ProfileStatus
		location string
	}{
		{models.StatusPendingVerification, services.PathIDVerification},
		{models.StatusPendingAdminApproval, services.PathPendingApproval},
		{models.StatusRejected, services.LoginWithError("Your account verification was not approved.")},
		{models.ProfileStatus("suspended"), services.LoginWithError("Your account is in an unknown state. Please contact support.")},
	}

	for _, tt := range tests {
		_, token := s.user(models.RoleStudent, tt.status, false)
		for _, path := range []string{"/home", "/network", "/messages", "/profile"} {
			rec := s.do(http.MethodGet, path, nil, token)
			s.Equal(http.StatusFound, rec.Code, "%s %s", tt.status, path)
			s.Equal(tt.location, rec.Header().Get("Location"), "%s %s", tt.status, path)
		}
	}
}

func (s *RouterSuite) TestGate_NoSessionGoesToLogin() {
	rec := s.do(http.MethodGet, "/home", nil, "")
	s.Equal(http.StatusFound, rec.Code)
	s.Equal(services.PathLogin, rec.Header().Get("Location"))
}

func (s *RouterSuite) TestGate_MissingProfileGoesToVerification() {
	a := &models.Account{ID: uuid.New(), Email: "ghost@example.com", Role: models.RoleStudent}
	session, err := s.jwt.IssueSession(a)
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, "/home", nil, session.Token)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal(services.PathIDVerification, rec.Header().Get("Location"))
}

func (s *RouterSuite) TestGate_ApprovedSeesHome() {
	_, token := s.user(models.RoleStudent, models.StatusApproved, false)

	rec := s.do(http.MethodGet, "/home?tab=jobs", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Asha Verma")
}

func (s *RouterSuite) TestProfileByID() {
	viewer, token := s.user(models.RoleStudent, models.StatusApproved, false)
	other, _ := s.user(models.RoleAlumni, models.StatusApproved, false)

	rec := s.do(http.MethodGet, "/profile/"+viewer.String(), nil, token)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal(services.PathProfile, rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/profile/not-a-uuid", nil, token)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(dto.ErrorCodeResourceNotFound), s.errorCode(rec))

	rec = s.do(http.MethodGet, "/profile/"+uuid.NewString(), nil, token)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/profile/"+other.String(), nil, token)
	s.Equal(http.StatusOK, rec.Code)
}

// --- verification pages ---

func (s *RouterSuite) TestVerificationForm() {
	rec := s.do(http.MethodGet, "/id-verification", nil, "")
	s.Equal(http.StatusFound, rec.Code)
	s.Equal(services.PathLogin, rec.Header().Get("Location"))

	_, approved := s.user(models.RoleStudent, models.StatusApproved, false)
	rec = s.do(http.MethodGet, "/id-verification", nil, approved)
	s.Equal(services.PathHome, rec.Header().Get("Location"))

	_, reviewing := s.user(models.RoleFaculty, models.StatusPendingAdminApproval, false)
	rec = s.do(http.MethodGet, "/id-verification", nil, reviewing)
	s.Equal(services.PathPendingApproval, rec.Header().Get("Location"))

	_, pending := s.user(models.RoleFaculty, models.StatusPendingVerification, false)
	rec = s.do(http.MethodGet, "/id-verification", nil, pending)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"requiresIdDocument":true`)
	s.Contains(rec.Body.String(), "DCRUST Murthal")
}

func (s *RouterSuite) TestPendingApproval() {
	_, reviewing := s.user(models.RoleAlumni, models.StatusPendingAdminApproval, false)
	rec := s.do(http.MethodGet, "/pending-approval", nil, reviewing)
	s.Equal(http.StatusOK, rec.Code)

	_, pending := s.user(models.RoleStudent, models.StatusPendingVerification, false)
	rec = s.do(http.MethodGet, "/pending-approval", nil, pending)
	s.Equal(http.StatusFound, rec.Code)
	s.Equal(services.PathIDVerification, rec.Header().Get("Location"))
}

func multipartForm(fields map[string]string, fileName, fileBody string) (io.Reader, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if fileName != "" {
		fw, _ := w.CreateFormFile("id_proof", fileName)
		_, _ = fw.Write([]byte(fileBody))
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func (s *RouterSuite) submit(token string, fields map[string]string, fileName, fileBody string) *httptest.ResponseRecorder {
	body, contentType := multipartForm(fields, fileName, fileBody)
	req := httptest.NewRequest(http.MethodPost, "/id-verification", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestSubmit_StudentUsesSessionRole() {
	_, token := s.user(models.RoleStudent, models.StatusPendingVerification, false)

	rec := s.submit(token, map[string]string{
		"college_id":      "1",
		"department_id":   "10",
		"graduation_year": "2026",
		"official_email":  "asha@dcrustm.org",
		"role":            "Faculty",
	}, "", "")

	s.Require().Equal(http.StatusOK, rec.Code)
	sub, ok := s.submitter.last.(services.StudentSubmission)
	s.Require().True(ok, "got %T", s.submitter.last)
	s.Equal(int64(1), sub.CollegeID)
	s.Equal(int64(10), sub.DepartmentID)
	s.Equal(2026, sub.GraduationYear)
	s.Equal("asha@dcrustm.org", sub.OfficialEmail)
	s.Contains(rec.Body.String(), `"status":"pending_verification"`)
}

func (s *RouterSuite) TestSubmit_FacultyUploadsDocument() {
	_, token := s.user(models.RoleFaculty, models.StatusPendingVerification, false)

	rec := s.submit(token, map[string]string{
		"department_id":  "10",
		"official_email": "dean@dcrustm.org",
	}, "proof.pdf", "%PDF-1.7")

	s.Require().Equal(http.StatusOK, rec.Code)
	_, ok := s.submitter.last.(services.FacultySubmission)
	s.True(ok)
	s.Equal("proof.pdf", s.submitter.docName)
	s.Equal("%PDF-1.7", s.submitter.docBody)
	s.Contains(rec.Body.String(), `"next":"/pending-approval"`)
}

func (s *RouterSuite) TestSubmit_OversizedBody() {
	_, token := s.user(models.RoleAlumni, models.StatusPendingVerification, false)

	rec := s.submit(token, map[string]string{"college_id": "1"}, "proof.pdf", strings.Repeat("x", 3<<20))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(dto.ErrorCodeDocumentInvalid), s.errorCode(rec))
	s.Nil(s.submitter.last)
}

func (s *RouterSuite) TestSubmit_DomainMismatch() {
	_, token := s.user(models.RoleStudent, models.StatusPendingVerification, false)
	s.submitter.err = apperrors.NewCustomError(apperrors.ErrEmailDomainMismatch, "Official email must belong to dcrustm.org")

	rec := s.submit(token, map[string]string{"official_email": "asha@gmail.com"}, "", "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(dto.ErrorCodeDomainMismatch), s.errorCode(rec))
}

// --- lookups and admin ---

func (s *RouterSuite) TestLookups() {
	rec := s.do(http.MethodGet, "/api/colleges?q=dcr", nil, "")
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/departments?college_id=abc", nil, "")
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/onboarding-requests", jsonBody(map[string]string{
		"college_name":  "NIT Kurukshetra",
		"contact_name":  "R. Sharma",
		"contact_email": "registrar@nitkkr.ac.in",
		"contact_role":  "Registrar",
	}), "")
	s.Equal(http.StatusCreated, rec.Code)
	s.Len(s.lookups.onboarding, 1)
}

func (s *RouterSuite) TestAdmin() {
	_, userToken := s.user(models.RoleStudent, models.StatusApproved, false)
	_, adminToken := s.user(models.RoleFaculty, models.StatusApproved, true)
	reviewing, _ := s.user(models.RoleAlumni, models.StatusPendingAdminApproval, false)
	pending, _ := s.user(models.RoleStudent, models.StatusPendingVerification, false)

	rec := s.do(http.MethodGet, "/admin/profiles/pending", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/admin/profiles/pending", nil, userToken)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/admin/profiles/pending", nil, adminToken)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/admin/profiles/"+reviewing.String()+"/approve", nil, adminToken)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(models.StatusApproved, s.gate.profiles[reviewing].Status)

	rec = s.do(http.MethodPost, "/admin/profiles/"+pending.String()+"/approve", nil, adminToken)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(string(dto.ErrorCodeInvalidTransition), s.errorCode(rec))
}

func TestFunctionCORS_SimpleRequestCarriesOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(FunctionCORS())
	r.POST("/fn", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/fn", nil)
	req.Header.Set("Origin", "https://careernest.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
